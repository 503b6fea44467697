package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

// Service moves coins between accounts. Debit, Credit and LockAccounts only
// ever run inside the caller's transaction.
type Service interface {
	PlatformAccountID() uuid.UUID
	LockAccounts(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error
	Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*models.LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.LedgerEntry, error)
	SettleCredit(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	Balance(ctx context.Context, accountID uuid.UUID) (*BalanceDTO, error)
	History(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*HistoryPage, error)
}

type service struct {
	repo       Repository
	platformID uuid.UUID
	metrics    *metrics.EscrowMetrics
	now        func() time.Time
}

// NewService wires the wallet ledger. metrics may be nil.
func NewService(repo Repository, platformID uuid.UUID, m *metrics.EscrowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if platformID == uuid.Nil {
		return nil, fmt.Errorf("platform account id required")
	}
	return &service{
		repo:       repo,
		platformID: platformID,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) PlatformAccountID() uuid.UUID {
	return s.platformID
}

func (s *service) LockAccounts(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error {
	want := sortedUnique(ids)
	accounts, err := s.repo.WithTx(tx).LockAccounts(ctx, want)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock accounts")
	}
	if len(accounts) != len(want) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*models.LedgerEntry, error) {
	if err := validateMovement(input.AccountID, input.Amount, input.Kind); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	acct, err := s.lockOne(ctx, repo, input.AccountID)
	if err != nil {
		return nil, err
	}
	overdraft := acct.Role == enums.AccountRoleSystem
	if !overdraft && acct.CoinBalance < input.Amount {
		return nil, insufficient(acct.CoinBalance, input.Amount)
	}
	ok, err := repo.AdjustBalance(ctx, acct.ID, -input.Amount, overdraft)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit account")
	}
	if !ok {
		return nil, insufficient(acct.CoinBalance, input.Amount)
	}
	entry, err := s.appendEntry(ctx, repo, acct.ID, input.OrderID, input.Kind, enums.LedgerDebit, input.Amount, acct.CoinBalance-input.Amount, input.Metadata)
	if err != nil {
		return nil, err
	}
	s.metrics.AddCoins(string(input.Kind), input.Amount)
	return entry, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.LedgerEntry, error) {
	if err := validateMovement(input.AccountID, input.Amount, input.Kind); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	balance, err := s.applyCredit(ctx, repo, input.AccountID, input.Amount)
	if err != nil {
		return nil, err
	}
	entry, err := s.appendEntry(ctx, repo, input.AccountID, input.OrderID, input.Kind, enums.LedgerCredit, input.Amount, balance, input.Metadata)
	if err != nil {
		return nil, err
	}
	s.metrics.AddCoins(string(input.Kind), input.Amount)
	return entry, nil
}

// SettleCredit completes a PENDING credit entry recorded before the coins
// arrived (gateway top-ups) and applies its amount to the account.
func (s *service) SettleCredit(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger entry is required")
	}
	if err := validateMovement(entry.AccountID, entry.Amount, entry.Kind); err != nil {
		return nil, err
	}
	if entry.Direction != enums.LedgerCredit || entry.Status != enums.LedgerStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "entry is a %s %s entry, not a pending credit", entry.Status, entry.Direction)
	}
	repo := s.repo.WithTx(tx)
	balance, err := s.applyCredit(ctx, repo, entry.AccountID, entry.Amount)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ok, err := repo.SettleEntry(ctx, entry.ID, enums.LedgerStatusCompleted, &balance, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle ledger entry")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ledger entry already settled")
	}
	settled := *entry
	settled.Status = enums.LedgerStatusCompleted
	settled.BalanceAfter = &balance
	settled.SettledAt = &now
	s.metrics.AddCoins(string(entry.Kind), entry.Amount)
	return &settled, nil
}

// applyCredit locks the account and adds amount, returning the new balance.
func (s *service) applyCredit(ctx context.Context, repo Repository, accountID uuid.UUID, amount int64) (int64, error) {
	acct, err := s.lockOne(ctx, repo, accountID)
	if err != nil {
		return 0, err
	}
	ok, err := repo.AdjustBalance(ctx, acct.ID, amount, true)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit account")
	}
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return acct.CoinBalance + amount, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (*BalanceDTO, error) {
	acct, err := s.repo.FindAccount(ctx, accountID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return &BalanceDTO{AccountID: acct.ID, CoinBalance: acct.CoinBalance, Locked: acct.Locked}, nil
}

func (s *service) History(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEntries(ctx, accountID, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(e models.LedgerEntry) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	})
	page := &HistoryPage{Entries: make([]EntryDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		page.Entries = append(page.Entries, entryDTO(row))
	}
	return page, nil
}

func (s *service) lockOne(ctx context.Context, repo Repository, id uuid.UUID) (*models.Account, error) {
	accounts, err := repo.LockAccounts(ctx, []uuid.UUID{id})
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock account")
	}
	if len(accounts) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return &accounts[0], nil
}

func (s *service) appendEntry(ctx context.Context, repo Repository, accountID uuid.UUID, orderID *uuid.UUID, kind enums.LedgerEntryKind, dir enums.LedgerDirection, amount, balanceAfter int64, meta map[string]any) (*models.LedgerEntry, error) {
	var raw json.RawMessage
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ledger metadata")
		}
		raw = b
	}
	now := s.now()
	entry := &models.LedgerEntry{
		AccountID:    accountID,
		OrderID:      orderID,
		Kind:         kind,
		Direction:    dir,
		Amount:       amount,
		BalanceAfter: &balanceAfter,
		Status:       enums.LedgerStatusCompleted,
		Metadata:     raw,
		SettledAt:    &now,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return entry, nil
}

func validateMovement(accountID uuid.UUID, amount int64, kind enums.LedgerEntryKind) error {
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !kind.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid ledger entry kind %q", kind)
	}
	return nil
}

func insufficient(balance, required int64) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient coin balance").
		WithDetails(map[string]int64{"balance": balance, "required": required})
}
