package models

import (
	"time"

	"github.com/google/uuid"
)

// RewardRecord is written once per milestone crossed by a listing.
type RewardRecord struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ListingID       uuid.UUID  `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:reward_records_listing_milestone_key"`
	MilestoneIndex  int        `gorm:"column:milestone_index;not null;uniqueIndex:reward_records_listing_milestone_key"`
	MinutesRequired int64      `gorm:"column:minutes_required;not null"`
	CoinAwarded     int64      `gorm:"column:coin_awarded;not null"`
	OrderID         *uuid.UUID `gorm:"column:order_id;type:uuid"`
	AwardedAt       time.Time  `gorm:"column:awarded_at;not null"`
}
