package wallet

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

// Repository persists account balances and their ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	LockAccounts(ctx context.Context, ids []uuid.UUID) ([]models.Account, error)
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64, allowNegative bool) (bool, error)
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error)
	FindEntryByGatewayRef(ctx context.Context, ref string) (*models.LedgerEntry, error)
	SettleEntry(ctx context.Context, id uuid.UUID, status enums.LedgerEntryStatus, balanceAfter *int64, settledAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the wallet repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var acct models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// LockAccounts takes row locks in ascending id order. Duplicate ids are locked once.
func (r *repository) LockAccounts(ctx context.Context, ids []uuid.UUID) ([]models.Account, error) {
	ordered := sortedUnique(ids)
	accounts := make([]models.Account, 0, len(ordered))
	for _, id := range ordered {
		var acct models.Account
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&acct).Error
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// AdjustBalance applies delta atomically. It reports false when the guard
// against a negative balance rejected the update.
func (r *repository) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64, allowNegative bool) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id)
	if delta < 0 && !allowNegative {
		q = q.Where("coin_balance >= ?", -delta)
	}
	res := q.Updates(map[string]any{
		"coin_balance": gorm.Expr("coin_balance + ?", delta),
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	var entries []models.LedgerEntry
	if err := pagination.Apply(q, "", cursor, limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindEntryByGatewayRef(ctx context.Context, ref string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_ref = ?", ref).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SettleEntry moves a PENDING entry to its final status. It reports false when
// the entry was no longer pending.
func (r *repository) SettleEntry(ctx context.Context, id uuid.UUID, status enums.LedgerEntryStatus, balanceAfter *int64, settledAt time.Time) (bool, error) {
	updates := map[string]any{
		"status":     status,
		"settled_at": settledAt.UTC(),
	}
	if balanceAfter != nil {
		updates["balance_after"] = *balanceAfter
	}
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ? AND status = ?", id, enums.LedgerStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// IsNotFound reports whether err came from a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
