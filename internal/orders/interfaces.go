package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

// Repository persists orders and the hire linkage on listings. Status writes
// are compare-and-set against the expected current status.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	LockListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error)
	UpdateListing(ctx context.Context, listingID uuid.UUID, updates map[string]any) error
	LockLiveForListing(ctx context.Context, listingID uuid.UUID) ([]models.Order, error)
	ListForRenter(ctx context.Context, renterID uuid.UUID, statuses []enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, statuses []enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	ListConfirmedEndingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
}
