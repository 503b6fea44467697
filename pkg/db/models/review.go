package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ListingID       uuid.UUID `gorm:"column:listing_id;type:uuid;not null"`
	RenterAccountID uuid.UUID `gorm:"column:renter_account_id;type:uuid;not null"`
	Rating          int       `gorm:"column:rating;not null"`
	Comment         string    `gorm:"column:comment"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
