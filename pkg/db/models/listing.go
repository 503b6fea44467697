package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// Listing is a hireable game player profile owned by an account.
type Listing struct {
	ID                       uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerAccountID           uuid.UUID           `gorm:"column:owner_account_id;type:uuid;not null"`
	DisplayName              string              `gorm:"column:display_name;not null"`
	HourlyPrice              int64               `gorm:"column:hourly_price;not null;default:0"`
	Status                   enums.ListingStatus `gorm:"column:status;type:listing_status;not null"`
	CumulativeMinutesHired   int64               `gorm:"column:cumulative_minutes_hired;not null;default:0"`
	LastRewardMilestoneIndex int                 `gorm:"column:last_reward_milestone_index;not null;default:0"`
	HiredByAccountID         *uuid.UUID          `gorm:"column:hired_by_account_id;type:uuid"`
	HireStart                *time.Time          `gorm:"column:hire_start"`
	HireEnd                  *time.Time          `gorm:"column:hire_end"`
	HoursHired               *int                `gorm:"column:hours_hired"`
	CreatedAt                time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
