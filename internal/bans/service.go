// Package bans takes a listing off the market and unwinds its open hires.
package bans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

const cancelReasonBan = "listing_banned"

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type walletLedger interface {
	LockAccounts(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error
	Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) (*models.LedgerEntry, error)
}

// BanInput is an administrator's request to ban a listing.
type BanInput struct {
	ListingID   uuid.UUID
	AdminID     uuid.UUID
	Reason      string
	Description string
}

// BanResult summarises what the cascade unwound.
type BanResult struct {
	BanID          uuid.UUID   `json:"ban_id"`
	ListingID      uuid.UUID   `json:"listing_id"`
	CanceledOrders []uuid.UUID `json:"canceled_orders"`
	RefundedCoin   int64       `json:"refunded_coin"`
}

type Service interface {
	BanListing(ctx context.Context, input BanInput) (*BanResult, error)
	UnbanListing(ctx context.Context, listingID, adminID uuid.UUID) error
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	wallet  walletLedger
	outbox  outboxPublisher
	metrics *metrics.EscrowMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, orderRepo orders.Repository, tx txRunner, ledger walletLedger, outbox outboxPublisher, m *metrics.EscrowMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bans repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		orders:  orderRepo,
		tx:      tx,
		wallet:  ledger,
		outbox:  outbox,
		metrics: m,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// BanListing refunds every PENDING or CONFIRMED order on the listing in full,
// cancels them, bans the listing and locks the owner account. Coins already
// released to the owner on confirmation stay with the owner.
func (s *service) BanListing(ctx context.Context, input BanInput) (*BanResult, error) {
	reason := strings.TrimSpace(input.Reason)
	if input.ListingID == uuid.Nil || reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing and reason are required")
	}
	if err := s.requireAdmin(ctx, input.AdminID); err != nil {
		return nil, err
	}

	var result BanResult
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		result = BanResult{ListingID: input.ListingID}
		orderRepo := s.orders.WithTx(tx)
		listing, err := orderRepo.LockListing(ctx, input.ListingID)
		if err != nil {
			return notFound(err, "listing not found")
		}
		if listing.Status == enums.ListingStatusBanned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is already banned")
		}

		live, err := orderRepo.LockLiveForListing(ctx, listing.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open orders")
		}
		renters := make([]uuid.UUID, 0, len(live))
		for _, o := range live {
			renters = append(renters, o.RenterAccountID)
		}
		if err := s.wallet.LockAccounts(ctx, tx, renters...); err != nil {
			return err
		}

		now := s.now()
		for i := range live {
			order := live[i]
			from := order.Status
			if _, err := s.wallet.Credit(ctx, tx, wallet.CreditInput{
				AccountID: order.RenterAccountID,
				Amount:    order.TotalPrice,
				Kind:      enums.LedgerKindRefund,
				OrderID:   &order.ID,
				Metadata:  map[string]any{"reason": cancelReasonBan},
			}); err != nil {
				return err
			}
			ok, err := orderRepo.TransitionStatus(ctx, order.ID, from, enums.OrderStatusCanceled, map[string]any{"closed_at": now})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
			}
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %s changed during ban", order.ID)
			}
			order.Status = enums.OrderStatusCanceled
			result.CanceledOrders = append(result.CanceledOrders, order.ID)
			result.RefundedCoin += order.TotalPrice

			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCanceled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         outbox.Actor(input.AdminID, string(enums.AccountRoleAdmin)),
				Data: payloads.OrderEvent{
					OrderID:     order.ID,
					ListingID:   listing.ID,
					RenterID:    order.RenterAccountID,
					OwnerID:     listing.OwnerAccountID,
					Status:      order.Status,
					WindowStart: order.WindowStart,
					WindowEnd:   order.WindowEnd,
					TotalPrice:  order.TotalPrice,
					Amount:      order.TotalPrice,
					Trigger:     enums.TriggerBan,
					Reason:      cancelReasonBan,
				},
			}); err != nil {
				return err
			}
		}

		if err := orderRepo.UpdateListing(ctx, listing.ID, map[string]any{
			"status":              enums.ListingStatusBanned,
			"hired_by_account_id": nil,
			"hire_start":          nil,
			"hire_end":            nil,
			"hours_hired":         nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ban listing")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.SetAccountLocked(ctx, listing.OwnerAccountID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock owner account")
		}

		ban := models.ListingBan{
			ID:                uuid.New(),
			ListingID:         listing.ID,
			BannedByAccountID: input.AdminID,
			Reason:            reason,
			CanceledOrders:    len(result.CanceledOrders),
			RefundedCoin:      result.RefundedCoin,
		}
		if desc := strings.TrimSpace(input.Description); desc != "" {
			ban.Description = &desc
		}
		if err := repo.Create(ctx, &ban); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ban")
		}
		result.BanID = ban.ID

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventListingBanned,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Actor:         outbox.Actor(input.AdminID, string(enums.AccountRoleAdmin)),
			Data: payloads.ListingBannedEvent{
				ListingID:      listing.ID,
				OwnerID:        listing.OwnerAccountID,
				BanID:          ban.ID,
				Reason:         reason,
				CanceledOrders: result.CanceledOrders,
				RefundedCoin:   result.RefundedCoin,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	for range result.CanceledOrders {
		s.metrics.IncTransition(string(enums.OrderStatusCanceled), string(enums.TriggerBan))
	}
	ctx = s.logg.WithListingID(ctx, input.ListingID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"ban_id":          result.BanID,
		"canceled_orders": len(result.CanceledOrders),
		"refunded_coin":   result.RefundedCoin,
	})
	s.logg.Info(ctx, "listing banned")
	return &result, nil
}

func (s *service) UnbanListing(ctx context.Context, listingID, adminID uuid.UUID) error {
	if listingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		listing, err := orderRepo.LockListing(ctx, listingID)
		if err != nil {
			return notFound(err, "listing not found")
		}
		if listing.Status != enums.ListingStatusBanned {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "listing is %s, not banned", listing.Status)
		}
		if err := orderRepo.UpdateListing(ctx, listing.ID, map[string]any{"status": enums.ListingStatusAvailable}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unban listing")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.SetAccountLocked(ctx, listing.OwnerAccountID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlock owner account")
		}
		ban, err := repo.FindActive(ctx, listing.ID)
		switch {
		case err == nil:
			if err := repo.Lift(ctx, ban.ID, adminID, s.now()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lift ban")
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ban")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventListingUnbanned,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Actor:         outbox.Actor(adminID, string(enums.AccountRoleAdmin)),
			Data: payloads.ListingUnbannedEvent{
				ListingID: listing.ID,
				OwnerID:   listing.OwnerAccountID,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithListingID(ctx, listingID.String()), "listing unbanned")
	return nil
}

func (s *service) requireAdmin(ctx context.Context, adminID uuid.UUID) error {
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin privileges required")
	}
	acct, err := s.repo.FindAccount(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin privileges required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin account")
	}
	if acct.Role != enums.AccountRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin privileges required")
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
