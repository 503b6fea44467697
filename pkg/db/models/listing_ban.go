package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingBan audits an administrative ban and what the cascade refunded.
type ListingBan struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ListingID         uuid.UUID  `gorm:"column:listing_id;type:uuid;not null"`
	BannedByAccountID uuid.UUID  `gorm:"column:banned_by_account_id;type:uuid;not null"`
	Reason            string     `gorm:"column:reason;not null"`
	Description       *string    `gorm:"column:description"`
	CanceledOrders    int        `gorm:"column:canceled_orders;not null;default:0"`
	RefundedCoin      int64      `gorm:"column:refunded_coin;not null;default:0"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	LiftedAt          *time.Time `gorm:"column:lifted_at"`
	LiftedByAccountID *uuid.UUID `gorm:"column:lifted_by_account_id;type:uuid"`
}
