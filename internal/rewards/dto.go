package rewards

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
)

// AccrueInput adds the minutes of one completed hire to a listing.
type AccrueInput struct {
	ListingID uuid.UUID
	OrderID   uuid.UUID
	Minutes   int64
}

// AccrualResult reports the listing's new total and any milestones paid out.
type AccrualResult struct {
	TotalMinutes int64
	Granted      []models.RewardRecord
}

// Status is the read model behind getRewardStatus.
type Status struct {
	ListingID            uuid.UUID `json:"listing_id"`
	TotalMinutes         int64     `json:"total_minutes"`
	LastMilestone        int       `json:"last_milestone"`
	NextMilestoneMinutes *int64    `json:"next_milestone_minutes"`
	NextReward           *int64    `json:"next_reward"`
	Completed            bool      `json:"completed"`
}

type RecordDTO struct {
	MilestoneIndex  int        `json:"milestone_index"`
	MinutesRequired int64      `json:"minutes_required"`
	CoinAwarded     int64      `json:"coin_awarded"`
	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	AwardedAt       time.Time  `json:"awarded_at"`
}

func recordDTO(r models.RewardRecord) RecordDTO {
	return RecordDTO{
		MilestoneIndex:  r.MilestoneIndex,
		MinutesRequired: r.MinutesRequired,
		CoinAwarded:     r.CoinAwarded,
		OrderID:         r.OrderID,
		AwardedAt:       r.AwardedAt,
	}
}
