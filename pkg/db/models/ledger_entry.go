package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// LedgerEntry is an append-only record of a single coin movement on one account.
type LedgerEntry struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	AccountID    uuid.UUID               `gorm:"column:account_id;type:uuid;not null"`
	OrderID      *uuid.UUID              `gorm:"column:order_id;type:uuid"`
	Kind         enums.LedgerEntryKind   `gorm:"column:kind;type:ledger_entry_kind;not null"`
	Direction    enums.LedgerDirection   `gorm:"column:direction;type:ledger_direction;not null"`
	Amount       int64                   `gorm:"column:amount;not null"`
	BalanceAfter *int64                  `gorm:"column:balance_after"`
	Status       enums.LedgerEntryStatus `gorm:"column:status;type:ledger_entry_status;not null"`
	GatewayRef   *string                 `gorm:"column:gateway_ref"`
	Metadata     json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	SettledAt    *time.Time              `gorm:"column:settled_at"`
}
