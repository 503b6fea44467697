package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/internal/availability"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// CreateOrderInput requests a hire of a listing for a window at a price.
type CreateOrderInput struct {
	RenterID   uuid.UUID
	ListingID  uuid.UUID
	Window     availability.Window
	TotalPrice int64
}

// CompleteInput says who drove completion. ActorID is required for manual completion.
type CompleteInput struct {
	Trigger enums.CompletionTrigger
	ActorID uuid.UUID
}

// Viewer is the caller of a read operation.
type Viewer struct {
	AccountID uuid.UUID
	IsAdmin   bool
}

type OrderDTO struct {
	ID          uuid.UUID                `json:"id"`
	RenterID    uuid.UUID                `json:"renter_id"`
	ListingID   uuid.UUID                `json:"listing_id"`
	WindowStart time.Time                `json:"window_start"`
	WindowEnd   time.Time                `json:"window_end"`
	TotalPrice  int64                    `json:"total_price"`
	Status      enums.OrderStatus        `json:"status"`
	CompletedBy *enums.CompletionTrigger `json:"completed_by,omitempty"`
	ConfirmedAt *time.Time               `json:"confirmed_at,omitempty"`
	ClosedAt    *time.Time               `json:"closed_at,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toDTO(o models.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID,
		RenterID:    o.RenterAccountID,
		ListingID:   o.ListingID,
		WindowStart: o.WindowStart,
		WindowEnd:   o.WindowEnd,
		TotalPrice:  o.TotalPrice,
		Status:      o.Status,
		CompletedBy: o.CompletedBy,
		ConfirmedAt: o.ConfirmedAt,
		ClosedAt:    o.ClosedAt,
		CreatedAt:   o.CreatedAt,
	}
}
