package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// DebitInput describes coins leaving an account.
type DebitInput struct {
	AccountID uuid.UUID
	Amount    int64
	Kind      enums.LedgerEntryKind
	OrderID   *uuid.UUID
	Metadata  map[string]any
}

// CreditInput describes coins entering an account.
type CreditInput struct {
	AccountID uuid.UUID
	Amount    int64
	Kind      enums.LedgerEntryKind
	OrderID   *uuid.UUID
	Metadata  map[string]any
}

// BalanceDTO is the wallet summary returned by the API.
type BalanceDTO struct {
	AccountID   uuid.UUID `json:"account_id"`
	CoinBalance int64     `json:"coin_balance"`
	Locked      bool      `json:"locked"`
}

// EntryDTO is one ledger row as exposed to the account holder.
type EntryDTO struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	Kind         string     `json:"kind"`
	Direction    string     `json:"direction"`
	Amount       int64      `json:"amount"`
	BalanceAfter *int64     `json:"balance_after,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HistoryPage is a cursor page of ledger entries, newest first.
type HistoryPage struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func entryDTO(e models.LedgerEntry) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		OrderID:      e.OrderID,
		Kind:         string(e.Kind),
		Direction:    string(e.Direction),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
	}
}
