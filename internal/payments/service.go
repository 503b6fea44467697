// Package payments moves coins between the wallet ledger and the outside
// world: gateway top-ups in, bank withdrawals out.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type walletLedger interface {
	Debit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) (*models.LedgerEntry, error)
	SettleCredit(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (*models.LedgerEntry, error)
}

// maxTopupAmount caps one top-up in currency units; the gateway amount is
// sent in hundredths.
const maxTopupAmount int64 = 1_000_000_000_000

// TopupInput asks for a gateway payment of Amount currency units.
type TopupInput struct {
	AccountID uuid.UUID
	Amount    int64
	ClientIP  string
}

type TopupIntent struct {
	EntryID    uuid.UUID `json:"entry_id"`
	TxnRef     string    `json:"txn_ref"`
	Coins      int64     `json:"coins"`
	PaymentURL string    `json:"payment_url"`
}

// Settlement is the outcome of a gateway callback.
type Settlement struct {
	TxnRef         string                  `json:"txn_ref"`
	Status         enums.LedgerEntryStatus `json:"status"`
	Coins          int64                   `json:"coins"`
	AlreadySettled bool                    `json:"already_settled"`
}

// WithdrawInput moves coins out to a bank account.
type WithdrawInput struct {
	AccountID     uuid.UUID
	Amount        int64
	BankName      string
	AccountNumber string
	AccountHolder string
}

type Service interface {
	InitiateTopup(ctx context.Context, input TopupInput) (*TopupIntent, error)
	SettleTopup(ctx context.Context, params url.Values) (*Settlement, error)
	Withdraw(ctx context.Context, input WithdrawInput) (*wallet.EntryDTO, error)
}

type service struct {
	repo   wallet.Repository
	ledger walletLedger
	tx     txRunner
	outbox outboxPublisher
	signer Signer
	cfg    config.GatewayConfig
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo wallet.Repository, ledger walletLedger, tx txRunner, outbox outboxPublisher, cfg config.GatewayConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.CoinsPerUnit <= 0 {
		cfg.CoinsPerUnit = 1
	}
	if cfg.SuccessCode == "" {
		cfg.SuccessCode = "00"
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		outbox: outbox,
		signer: NewSigner(cfg.TopupSecret),
		cfg:    cfg,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// InitiateTopup records a PENDING top-up and returns the signed gateway URL.
// No coins move until the gateway calls back.
func (s *service) InitiateTopup(ctx context.Context, input TopupInput) (*TopupIntent, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if input.Amount <= 0 || input.Amount < s.cfg.MinTopupAmount {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "top-up amount must be at least %d", s.cfg.MinTopupAmount)
	}
	if input.Amount > maxTopupAmount || input.Amount > math.MaxInt64/s.cfg.CoinsPerUnit {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "top-up amount must be at most %d", min(maxTopupAmount, math.MaxInt64/s.cfg.CoinsPerUnit))
	}
	acct, err := s.repo.FindAccount(ctx, input.AccountID)
	if err != nil {
		return nil, notFound(err, "account not found")
	}
	if acct.Locked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is locked")
	}

	ref := strings.ReplaceAll(uuid.NewString(), "-", "")
	coins := input.Amount * s.cfg.CoinsPerUnit
	meta, err := json.Marshal(map[string]any{"currency_amount": input.Amount})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode top-up metadata")
	}
	entry := &models.LedgerEntry{
		AccountID:  input.AccountID,
		Kind:       enums.LedgerKindTopup,
		Direction:  enums.LedgerCredit,
		Amount:     coins,
		Status:     enums.LedgerStatusPending,
		GatewayRef: &ref,
		Metadata:   meta,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending top-up")
	}

	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", s.cfg.MerchantCode)
	params.Set(ParamAmount, strconv.FormatInt(input.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set(ParamTxnRef, ref)
	params.Set("vnp_OrderInfo", "Top up "+input.AccountID.String())
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_ReturnUrl", s.cfg.ReturnURL)
	params.Set("vnp_IpAddr", input.ClientIP)
	params.Set("vnp_CreateDate", s.now().Format("20060102150405"))
	params.Set(ParamSecureHash, s.signer.Sign(params))

	ctx = s.logg.WithUserID(ctx, input.AccountID.String())
	s.logg.Info(s.logg.WithField(ctx, "txn_ref", ref), "top-up initiated")

	return &TopupIntent{
		EntryID:    entry.ID,
		TxnRef:     ref,
		Coins:      coins,
		PaymentURL: s.cfg.PayURL + "?" + params.Encode(),
	}, nil
}

// SettleTopup applies a verified gateway callback. Replayed callbacks for a
// settled reference are reported as already settled and move nothing.
func (s *service) SettleTopup(ctx context.Context, params url.Values) (*Settlement, error) {
	if !s.signer.Verify(params) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid gateway signature")
	}
	ref := params.Get(ParamTxnRef)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing transaction reference")
	}
	paid, err := strconv.ParseInt(params.Get(ParamAmount), 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid amount")
	}
	success := params.Get(ParamResponseCode) == s.cfg.SuccessCode

	var out Settlement
	err = s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := repo.FindEntryByGatewayRef(ctx, ref)
		if err != nil {
			return notFound(err, "top-up not found")
		}
		out = Settlement{TxnRef: ref, Status: entry.Status, Coins: entry.Amount}
		if entry.Status != enums.LedgerStatusPending {
			out.AlreadySettled = true
			return nil
		}
		if paid != entry.Amount/s.cfg.CoinsPerUnit*100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the pending top-up").
				WithDetails(map[string]int64{"paid": paid})
		}

		if !success {
			now := s.now()
			ok, err := repo.SettleEntry(ctx, entry.ID, enums.LedgerStatusCanceled, nil, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel top-up")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "top-up already settled")
			}
			out.Status = enums.LedgerStatusCanceled
			return nil
		}

		settled, err := s.ledger.SettleCredit(ctx, tx, entry)
		if err != nil {
			return err
		}
		balance := *settled.BalanceAfter
		out.Status = enums.LedgerStatusCompleted

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletTopupSettled,
			AggregateType: enums.AggregateAccount,
			AggregateID:   entry.AccountID,
			Data: payloads.WalletEvent{
				AccountID:    entry.AccountID,
				EntryID:      entry.ID,
				Kind:         enums.LedgerKindTopup,
				Status:       enums.LedgerStatusCompleted,
				Amount:       entry.Amount,
				BalanceAfter: &balance,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"txn_ref":         ref,
		"status":          out.Status,
		"already_settled": out.AlreadySettled,
	})
	s.logg.Info(ctx, "top-up callback handled")
	return &out, nil
}

func (s *service) Withdraw(ctx context.Context, input WithdrawInput) (*wallet.EntryDTO, error) {
	if input.AccountID == uuid.Nil || input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account and positive amount are required")
	}
	bank := map[string]any{
		"bank_name":      strings.TrimSpace(input.BankName),
		"account_number": strings.TrimSpace(input.AccountNumber),
		"account_holder": strings.TrimSpace(input.AccountHolder),
	}
	for field, v := range bank {
		if v == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", field)
		}
	}

	var dto wallet.EntryDTO
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		acct, err := s.repo.WithTx(tx).FindAccount(ctx, input.AccountID)
		if err != nil {
			return notFound(err, "account not found")
		}
		if acct.Role != enums.AccountRolePlayer {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only players can withdraw")
		}
		if acct.Locked {
			return pkgerrors.New(pkgerrors.CodeForbidden, "account is locked")
		}
		entry, err := s.ledger.Debit(ctx, tx, wallet.DebitInput{
			AccountID: input.AccountID,
			Amount:    input.Amount,
			Kind:      enums.LedgerKindWithdraw,
			Metadata:  bank,
		})
		if err != nil {
			return err
		}
		dto = wallet.EntryDTO{
			ID:           entry.ID,
			Kind:         string(entry.Kind),
			Direction:    string(entry.Direction),
			Amount:       entry.Amount,
			BalanceAfter: entry.BalanceAfter,
			Status:       string(entry.Status),
			CreatedAt:    entry.CreatedAt,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletWithdrawn,
			AggregateType: enums.AggregateAccount,
			AggregateID:   input.AccountID,
			Actor:         outbox.Actor(input.AccountID, string(enums.AccountRolePlayer)),
			Data: payloads.WalletEvent{
				AccountID:    input.AccountID,
				EntryID:      entry.ID,
				Kind:         enums.LedgerKindWithdraw,
				Status:       entry.Status,
				Amount:       entry.Amount,
				BalanceAfter: entry.BalanceAfter,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, input.AccountID.String())
	s.logg.Info(s.logg.WithField(ctx, "amount", input.Amount), "withdrawal recorded")
	return &dto, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
