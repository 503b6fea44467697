package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// Order is one hire transaction. Window and TotalPrice never change after insert.
type Order struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	RenterAccountID uuid.UUID                `gorm:"column:renter_account_id;type:uuid;not null"`
	ListingID       uuid.UUID                `gorm:"column:listing_id;type:uuid;not null"`
	WindowStart     time.Time                `gorm:"column:window_start;not null"`
	WindowEnd       time.Time                `gorm:"column:window_end;not null"`
	TotalPrice      int64                    `gorm:"column:total_price;not null"`
	Status          enums.OrderStatus        `gorm:"column:status;type:order_status;not null"`
	CompletedBy     *enums.CompletionTrigger `gorm:"column:completed_by"`
	ConfirmedAt     *time.Time               `gorm:"column:confirmed_at"`
	ClosedAt        *time.Time               `gorm:"column:closed_at"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// DurationMinutes returns the whole minutes covered by the hire window.
func (o Order) DurationMinutes() int64 {
	return int64(o.WindowEnd.Sub(o.WindowStart) / time.Minute)
}
