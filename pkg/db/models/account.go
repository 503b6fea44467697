package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// Account is a wallet-bearing identity. CoinBalance only changes through the wallet ledger.
type Account struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Username    string            `gorm:"column:username;not null;uniqueIndex"`
	Role        enums.AccountRole `gorm:"column:role;type:account_role;not null"`
	CoinBalance int64             `gorm:"column:coin_balance;not null;default:0"`
	Locked      bool              `gorm:"column:locked;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
