// Package payloads holds the JSON bodies carried inside outbox envelopes.
package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// OrderEvent is shared by every order lifecycle transition. Amount is the
// number of coins the transition moved for the headline party.
type OrderEvent struct {
	OrderID         uuid.UUID               `json:"order_id"`
	ListingID       uuid.UUID               `json:"listing_id"`
	RenterID        uuid.UUID               `json:"renter_id"`
	OwnerID         uuid.UUID               `json:"owner_id"`
	Status          enums.OrderStatus       `json:"status"`
	WindowStart     time.Time               `json:"window_start"`
	WindowEnd       time.Time               `json:"window_end"`
	TotalPrice      int64                   `json:"total_price"`
	Amount          int64                   `json:"amount"`
	PlatformFee     int64                   `json:"platform_fee,omitempty"`
	Trigger         enums.CompletionTrigger `json:"trigger,omitempty"`
	Reason          string                  `json:"reason,omitempty"`
	ReviewRequested bool                    `json:"review_requested,omitempty"`
}

// Reminder kinds.
const (
	ReminderUpcoming = "upcoming"
	ReminderEnding   = "ending"
)

// OrderReminderEvent nudges both parties shortly before a hire starts or ends.
type OrderReminderEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	ListingID uuid.UUID `json:"listing_id"`
	RenterID  uuid.UUID `json:"renter_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Kind      string    `json:"kind"`
	At        time.Time `json:"at"`
}

type ListingBannedEvent struct {
	ListingID      uuid.UUID   `json:"listing_id"`
	OwnerID        uuid.UUID   `json:"owner_id"`
	BanID          uuid.UUID   `json:"ban_id"`
	Reason         string      `json:"reason"`
	CanceledOrders []uuid.UUID `json:"canceled_orders"`
	RefundedCoin   int64       `json:"refunded_coin"`
}

type ListingUnbannedEvent struct {
	ListingID uuid.UUID `json:"listing_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

type ReviewSubmittedEvent struct {
	ReviewID  uuid.UUID `json:"review_id"`
	OrderID   uuid.UUID `json:"order_id"`
	ListingID uuid.UUID `json:"listing_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	RenterID  uuid.UUID `json:"renter_id"`
	Rating    int       `json:"rating"`
}

type RewardGrantedEvent struct {
	ListingID       uuid.UUID `json:"listing_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	OrderID         uuid.UUID `json:"order_id"`
	MilestoneIndex  int       `json:"milestone_index"`
	MinutesRequired int64     `json:"minutes_required"`
	CoinAwarded     int64     `json:"coin_awarded"`
	TotalMinutes    int64     `json:"total_minutes"`
}

// WalletEvent reports a gateway-backed balance change (top-up or withdrawal).
type WalletEvent struct {
	AccountID    uuid.UUID               `json:"account_id"`
	EntryID      uuid.UUID               `json:"entry_id"`
	Kind         enums.LedgerEntryKind   `json:"kind"`
	Status       enums.LedgerEntryStatus `json:"status"`
	Amount       int64                   `json:"amount"`
	BalanceAfter *int64                  `json:"balance_after,omitempty"`
}
