package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

type walletLedger interface {
	PlatformAccountID() uuid.UUID
	LockAccounts(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error
	Debit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) (*models.LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) (*models.LedgerEntry, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type Service interface {
	Accrue(ctx context.Context, tx *gorm.DB, input AccrueInput) (*AccrualResult, error)
	GetRewardStatus(ctx context.Context, listingID uuid.UUID) (*Status, error)
	History(ctx context.Context, listingID uuid.UUID) ([]RecordDTO, error)
}

type service struct {
	repo   Repository
	wallet walletLedger
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, ledger walletLedger, outbox outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
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
		repo:   repo,
		wallet: ledger,
		outbox: outbox,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Accrue must run inside the transaction that completed the order. Each
// milestone is paid at most once: the index on the listing skips known rungs
// and the unique (listing, milestone) record catches anything that slips past.
func (s *service) Accrue(ctx context.Context, tx *gorm.DB, input AccrueInput) (*AccrualResult, error) {
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	repo := s.repo.WithTx(tx)
	listing, err := repo.LockListing(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock listing")
	}
	result := &AccrualResult{TotalMinutes: listing.CumulativeMinutesHired}
	if input.Minutes <= 0 {
		return result, nil
	}

	total := listing.CumulativeMinutesHired + input.Minutes
	lastIndex := listing.LastRewardMilestoneIndex
	pending := due(lastIndex, total)
	if len(pending) > 0 {
		if err := s.wallet.LockAccounts(ctx, tx, listing.OwnerAccountID, s.wallet.PlatformAccountID()); err != nil {
			return nil, err
		}
	}

	for _, m := range pending {
		granted, err := s.grant(ctx, tx, repo, listing, input.OrderID, m, total)
		if err != nil {
			return nil, err
		}
		if granted != nil {
			result.Granted = append(result.Granted, *granted)
		}
		lastIndex = m.Index
	}

	if err := repo.UpdateProgress(ctx, listing.ID, total, lastIndex); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reward progress")
	}
	result.TotalMinutes = total
	return result, nil
}

func (s *service) grant(ctx context.Context, tx *gorm.DB, repo Repository, listing *models.Listing, orderID uuid.UUID, m Milestone, total int64) (*models.RewardRecord, error) {
	record := &models.RewardRecord{
		ListingID:       listing.ID,
		MilestoneIndex:  m.Index,
		MinutesRequired: m.Minutes,
		CoinAwarded:     m.Reward,
		AwardedAt:       s.now(),
	}
	if orderID != uuid.Nil {
		record.OrderID = &orderID
	}
	inserted, err := repo.InsertRecord(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert reward record")
	}
	if !inserted {
		logCtx := s.logg.WithFields(s.logg.WithListingID(ctx, listing.ID.String()), map[string]any{"milestone": m.Index})
		s.logg.Warn(logCtx, "reward milestone already recorded, skipping payout")
		return nil, nil
	}

	var orderRef *uuid.UUID
	if orderID != uuid.Nil {
		orderRef = &orderID
	}
	meta := map[string]any{"listing_id": listing.ID.String(), "milestone_index": m.Index}
	if _, err := s.wallet.Credit(ctx, tx, wallet.CreditInput{
		AccountID: listing.OwnerAccountID,
		Amount:    m.Reward,
		Kind:      enums.LedgerKindReward,
		OrderID:   orderRef,
		Metadata:  meta,
	}); err != nil {
		return nil, err
	}
	if _, err := s.wallet.Debit(ctx, tx, wallet.DebitInput{
		AccountID: s.wallet.PlatformAccountID(),
		Amount:    m.Reward,
		Kind:      enums.LedgerKindReward,
		OrderID:   orderRef,
		Metadata:  meta,
	}); err != nil {
		return nil, err
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRewardGranted,
		AggregateType: enums.AggregateListing,
		AggregateID:   listing.ID,
		Data: payloads.RewardGrantedEvent{
			ListingID:       listing.ID,
			OwnerID:         listing.OwnerAccountID,
			OrderID:         orderID,
			MilestoneIndex:  m.Index,
			MinutesRequired: m.Minutes,
			CoinAwarded:     m.Reward,
			TotalMinutes:    total,
		},
	}); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithListingID(ctx, listing.ID.String()), map[string]any{
		"milestone":    m.Index,
		"coin_awarded": m.Reward,
		"total_min":    total,
	})
	s.logg.Info(logCtx, "reward milestone granted")
	return record, nil
}

func (s *service) GetRewardStatus(ctx context.Context, listingID uuid.UUID) (*Status, error) {
	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	status := &Status{
		ListingID:     listing.ID,
		TotalMinutes:  listing.CumulativeMinutesHired,
		LastMilestone: listing.LastRewardMilestoneIndex,
	}
	if m, ok := next(listing.LastRewardMilestoneIndex); ok {
		minutes, reward := m.Minutes, m.Reward
		status.NextMilestoneMinutes = &minutes
		status.NextReward = &reward
	} else {
		status.Completed = true
	}
	return status, nil
}

func (s *service) History(ctx context.Context, listingID uuid.UUID) ([]RecordDTO, error) {
	records, err := s.repo.ListRecords(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reward records")
	}
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, recordDTO(r))
	}
	return out, nil
}
