package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/internal/availability"
	"github.com/angelmondragon/playerhire-backend/internal/escrow"
	"github.com/angelmondragon/playerhire-backend/internal/rewards"
	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	dbpkg "github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

const (
	constraintNoOverlap        = "orders_no_overlap"
	constraintOneConfirmedHire = "idx_orders_one_confirmed_per_listing"
)

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type walletLedger interface {
	PlatformAccountID() uuid.UUID
	LockAccounts(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error
	Debit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) (*models.LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) (*models.LedgerEntry, error)
}

type overlapChecker interface {
	HasConflict(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, window availability.Window) (bool, error)
}

type rewardAccruer interface {
	Accrue(ctx context.Context, tx *gorm.DB, input rewards.AccrueInput) (*rewards.AccrualResult, error)
}

type reviewLookup interface {
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
}

// Service drives the hire lifecycle. Every mutation moves coins, the order and
// the listing in one serializable transaction.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Confirm(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error)
	Reject(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error)
	Complete(ctx context.Context, orderID uuid.UUID, input CompleteInput) (*OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error)
	ListForRenter(ctx context.Context, renterID uuid.UUID, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, viewer Viewer, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
}

// ServiceParams wires the collaborators of the order service.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Wallet       walletLedger
	Availability overlapChecker
	Rewards      rewardAccruer
	Reviews      reviewLookup
	Outbox       outboxPublisher
	Rules        availability.Rules
	Metrics      *metrics.EscrowMetrics
	Logger       *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	wallet  walletLedger
	avail   overlapChecker
	rewards rewardAccruer
	reviews reviewLookup
	outbox  outboxPublisher
	rules   availability.Rules
	metrics *metrics.EscrowMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Wallet == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if p.Availability == nil {
		return nil, fmt.Errorf("availability checker required")
	}
	if p.Rewards == nil {
		return nil, fmt.Errorf("reward accruer required")
	}
	if p.Reviews == nil {
		return nil, fmt.Errorf("review lookup required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	rules := p.Rules
	if rules == (availability.Rules{}) {
		rules = availability.DefaultRules
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    p.Repo,
		tx:      p.Tx,
		wallet:  p.Wallet,
		avail:   p.Availability,
		rewards: p.Rewards,
		reviews: p.Reviews,
		outbox:  p.Outbox,
		rules:   rules,
		metrics: p.Metrics,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.RenterID == uuid.Nil || input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renter and listing are required")
	}
	if input.TotalPrice <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price must be positive")
	}
	window := input.Window.UTC()
	if err := window.Validate(s.now(), s.rules); err != nil {
		return nil, err
	}

	var created models.Order
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := lockListing(ctx, repo, input.ListingID)
		if err != nil {
			return err
		}
		if listing.Status == enums.ListingStatusBanned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is banned")
		}
		if listing.OwnerAccountID == input.RenterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cannot hire your own listing")
		}

		conflict, err := s.avail.HasConflict(ctx, tx, listing.ID, window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check availability")
		}
		if conflict {
			return pkgerrors.New(pkgerrors.CodeOverlapConflict, "listing is already booked for that window").
				WithDetails(map[string]any{"window_start": window.Start, "window_end": window.End})
		}

		created = models.Order{
			ID:              uuid.New(),
			RenterAccountID: input.RenterID,
			ListingID:       listing.ID,
			WindowStart:     window.Start,
			WindowEnd:       window.End,
			TotalPrice:      input.TotalPrice,
			Status:          enums.OrderStatusPending,
		}
		if err := repo.Create(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.wallet.LockAccounts(ctx, tx, input.RenterID); err != nil {
			return err
		}
		if _, err := s.wallet.Debit(ctx, tx, wallet.DebitInput{
			AccountID: input.RenterID,
			Amount:    input.TotalPrice,
			Kind:      enums.LedgerKindReserve,
			OrderID:   &created.ID,
		}); err != nil {
			return err
		}

		return s.emit(ctx, tx, enums.EventOrderCreated, input.RenterID, enums.AccountRoleRenter, s.orderEvent(created, listing, input.TotalPrice))
	})
	if err != nil {
		return nil, mapConstraintError(err)
	}

	s.logTransition(ctx, created, "", "created")
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Confirm(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error) {
	var confirmed models.Order
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, listing, err := s.lockForTransition(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if listing.OwnerAccountID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner can confirm")
		}
		if err := requireStatus(order, enums.OrderStatusPending); err != nil {
			return err
		}
		switch listing.Status {
		case enums.ListingStatusBanned:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is banned")
		case enums.ListingStatusHired:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing already has an active hire")
		}

		split, err := escrow.Compute(order.TotalPrice)
		if err != nil {
			return err
		}
		if err := s.wallet.LockAccounts(ctx, tx, listing.OwnerAccountID); err != nil {
			return err
		}
		if err := s.credit(ctx, tx, listing.OwnerAccountID, split.Release50, enums.LedgerKindRelease50, order.ID); err != nil {
			return err
		}

		now := s.now()
		if err := transition(ctx, repo, order, enums.OrderStatusConfirmed, map[string]any{"confirmed_at": now}); err != nil {
			return err
		}
		order.ConfirmedAt = &now

		hours := hoursHired(order)
		if err := repo.UpdateListing(ctx, listing.ID, map[string]any{
			"status":              enums.ListingStatusHired,
			"hired_by_account_id": order.RenterAccountID,
			"hire_start":          order.WindowStart,
			"hire_end":            order.WindowEnd,
			"hours_hired":         hours,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing hired")
		}

		confirmed = *order
		return s.emit(ctx, tx, enums.EventOrderConfirmed, actorID, enums.AccountRolePlayer, s.orderEvent(confirmed, listing, split.Release50))
	})
	if err != nil {
		return nil, mapConstraintError(err)
	}

	s.logTransition(ctx, confirmed, "", "confirmed")
	dto := toDTO(confirmed)
	return &dto, nil
}

func (s *service) Reject(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error) {
	var rejected models.Order
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, listing, err := s.lockForTransition(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if listing.OwnerAccountID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner can reject")
		}
		if err := requireStatus(order, enums.OrderStatusPending); err != nil {
			return err
		}
		if err := s.refund(ctx, tx, repo, order, enums.OrderStatusRejected); err != nil {
			return err
		}
		rejected = *order
		return s.emit(ctx, tx, enums.EventOrderRejected, actorID, enums.AccountRolePlayer, s.orderEvent(rejected, listing, order.TotalPrice))
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(ctx, rejected, "", "rejected")
	dto := toDTO(rejected)
	return &dto, nil
}

func (s *service) Cancel(ctx context.Context, orderID, actorID uuid.UUID) (*OrderDTO, error) {
	var canceled models.Order
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, listing, err := s.lockForTransition(ctx, repo, orderID)
		if err != nil {
			return err
		}
		role, ok := partyRole(order, listing, actorID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the renter or the listing owner can cancel")
		}
		if err := requireStatus(order, enums.OrderStatusPending); err != nil {
			return err
		}
		if err := s.refund(ctx, tx, repo, order, enums.OrderStatusCanceled); err != nil {
			return err
		}
		canceled = *order
		return s.emit(ctx, tx, enums.EventOrderCanceled, actorID, role, s.orderEvent(canceled, listing, order.TotalPrice))
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(ctx, canceled, "", "canceled")
	dto := toDTO(canceled)
	return &dto, nil
}

// Complete pays out the remaining 40% and the platform fee, frees the listing
// and accrues the session toward reward milestones. A second call on the same
// order fails with a state conflict.
func (s *service) Complete(ctx context.Context, orderID uuid.UUID, input CompleteInput) (*OrderDTO, error) {
	if !input.Trigger.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid completion trigger %q", input.Trigger)
	}
	if input.Trigger == enums.TriggerManual && input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required for manual completion")
	}

	var completed models.Order
	var granted int
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, listing, err := s.lockForTransition(ctx, repo, orderID)
		if err != nil {
			return err
		}
		actorRole := enums.AccountRoleSystem
		if input.Trigger == enums.TriggerManual {
			role, ok := partyRole(order, listing, input.ActorID)
			if !ok {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the renter or the listing owner can complete")
			}
			actorRole = role
		}
		if err := requireStatus(order, enums.OrderStatusConfirmed); err != nil {
			return err
		}

		split, err := escrow.Compute(order.TotalPrice)
		if err != nil {
			return err
		}
		platformID := s.wallet.PlatformAccountID()
		if err := s.wallet.LockAccounts(ctx, tx, listing.OwnerAccountID, platformID); err != nil {
			return err
		}
		if err := s.credit(ctx, tx, listing.OwnerAccountID, split.Release40, enums.LedgerKindRelease40, order.ID); err != nil {
			return err
		}
		if err := s.credit(ctx, tx, platformID, split.PlatformFee, enums.LedgerKindPlatformFee, order.ID); err != nil {
			return err
		}

		now := s.now()
		trigger := input.Trigger
		if err := transition(ctx, repo, order, enums.OrderStatusCompleted, map[string]any{
			"completed_by": trigger,
			"closed_at":    now,
		}); err != nil {
			return err
		}
		order.CompletedBy = &trigger
		order.ClosedAt = &now

		if listing.Status != enums.ListingStatusBanned {
			if err := repo.UpdateListing(ctx, listing.ID, releasedListing()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release listing")
			}
		}

		accrual, err := s.rewards.Accrue(ctx, tx, rewards.AccrueInput{
			ListingID: listing.ID,
			OrderID:   order.ID,
			Minutes:   order.DurationMinutes(),
		})
		if err != nil {
			return err
		}
		granted = len(accrual.Granted)

		reviewed, err := s.reviews.ExistsForOrder(ctx, tx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup review")
		}

		completed = *order
		event := s.orderEvent(completed, listing, split.Release40)
		event.PlatformFee = split.PlatformFee
		event.Trigger = trigger
		event.ReviewRequested = !reviewed
		actorID := input.ActorID
		if trigger == enums.TriggerScheduler {
			actorID = uuid.Nil
		}
		return s.emit(ctx, tx, enums.EventOrderCompleted, actorID, actorRole, event)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithField(ctx, "milestones_granted", granted)
	s.logTransition(ctx, completed, string(input.Trigger), "completed")
	dto := toDTO(completed)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	if !viewer.IsAdmin && order.RenterAccountID != viewer.AccountID {
		listing, err := s.repo.FindListing(ctx, order.ListingID)
		if err != nil {
			return nil, notFound(err, "listing not found")
		}
		if listing.OwnerAccountID != viewer.AccountID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
		}
	}
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) ListForRenter(ctx context.Context, renterID uuid.UUID, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if renterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renter id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListForRenter(ctx, renterID, statuses, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page(rows, limit), nil
}

func (s *service) ListForListing(ctx context.Context, listingID uuid.UUID, viewer Viewer, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		return nil, notFound(err, "listing not found")
	}
	if !viewer.IsAdmin && listing.OwnerAccountID != viewer.AccountID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another account")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListForListing(ctx, listingID, statuses, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page(rows, limit), nil
}

// lockForTransition takes the listing lock before the order lock so every
// mutating path acquires rows in the same order.
func (s *service) lockForTransition(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, *models.Listing, error) {
	if orderID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	peek, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, notFound(err, "order not found")
	}
	listing, err := lockListing(ctx, repo, peek.ListingID)
	if err != nil {
		return nil, nil, err
	}
	order, err := repo.LockByID(ctx, orderID)
	if err != nil {
		return nil, nil, notFound(err, "order not found")
	}
	return order, listing, nil
}

func (s *service) refund(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, to enums.OrderStatus) error {
	if err := s.wallet.LockAccounts(ctx, tx, order.RenterAccountID); err != nil {
		return err
	}
	if err := s.credit(ctx, tx, order.RenterAccountID, order.TotalPrice, enums.LedgerKindRefund, order.ID); err != nil {
		return err
	}
	now := s.now()
	if err := transition(ctx, repo, order, to, map[string]any{"closed_at": now}); err != nil {
		return err
	}
	order.ClosedAt = &now
	return nil
}

func (s *service) credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, kind enums.LedgerEntryKind, orderID uuid.UUID) error {
	if amount == 0 {
		return nil
	}
	_, err := s.wallet.Credit(ctx, tx, wallet.CreditInput{
		AccountID: accountID,
		Amount:    amount,
		Kind:      kind,
		OrderID:   &orderID,
	})
	return err
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, actorID uuid.UUID, role enums.AccountRole, data payloads.OrderEvent) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   data.OrderID,
		Actor:         outbox.Actor(actorID, string(role)),
		Data:          data,
	})
}

func (s *service) orderEvent(order models.Order, listing *models.Listing, amount int64) payloads.OrderEvent {
	return payloads.OrderEvent{
		OrderID:     order.ID,
		ListingID:   order.ListingID,
		RenterID:    order.RenterAccountID,
		OwnerID:     listing.OwnerAccountID,
		Status:      order.Status,
		WindowStart: order.WindowStart,
		WindowEnd:   order.WindowEnd,
		TotalPrice:  order.TotalPrice,
		Amount:      amount,
	}
}

func (s *service) logTransition(ctx context.Context, order models.Order, trigger, action string) {
	s.metrics.IncTransition(string(order.Status), trigger)
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	ctx = s.logg.WithListingID(ctx, order.ListingID.String())
	fields := map[string]any{
		"status":      order.Status,
		"total_price": order.TotalPrice,
	}
	if trigger != "" {
		fields["trigger"] = trigger
	}
	ctx = s.logg.WithFields(ctx, fields)
	s.logg.Info(ctx, "order "+action)
}

func lockListing(ctx context.Context, repo Repository, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := repo.LockListing(ctx, listingID)
	if err != nil {
		return nil, notFound(err, "listing not found")
	}
	return listing, nil
}

func transition(ctx context.Context, repo Repository, order *models.Order, to enums.OrderStatus, updates map[string]any) error {
	if !order.Status.CanTransitionTo(to) {
		return stateConflict(order, to)
	}
	ok, err := repo.TransitionStatus(ctx, order.ID, order.Status, to, updates)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, constraintOneConfirmedHire) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing already has an active hire")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return stateConflict(order, to)
	}
	order.Status = to
	return nil
}

func requireStatus(order *models.Order, want enums.OrderStatus) error {
	if order.Status != want {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s, expected %s", order.Status, want).
			WithDetails(map[string]any{"current_status": order.Status})
	}
	return nil
}

func stateConflict(order *models.Order, to enums.OrderStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, to).
		WithDetails(map[string]any{"current_status": order.Status})
}

func partyRole(order *models.Order, listing *models.Listing, actorID uuid.UUID) (enums.AccountRole, bool) {
	switch actorID {
	case order.RenterAccountID:
		return enums.AccountRoleRenter, true
	case listing.OwnerAccountID:
		return enums.AccountRolePlayer, true
	}
	return "", false
}

// hoursHired rounds the hire window up to whole hours.
func hoursHired(order *models.Order) int {
	minutes := order.DurationMinutes()
	return int((minutes + 59) / 60)
}

func releasedListing() map[string]any {
	return map[string]any{
		"status":              enums.ListingStatusAvailable,
		"hired_by_account_id": nil,
		"hire_start":          nil,
		"hire_end":            nil,
		"hours_hired":         nil,
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

// mapConstraintError translates database guards that back up the in-code
// overlap and single-hire checks.
func mapConstraintError(err error) error {
	switch {
	case dbpkg.IsExclusionViolation(err, constraintNoOverlap):
		return pkgerrors.New(pkgerrors.CodeOverlapConflict, "listing is already booked for that window")
	case dbpkg.IsUniqueViolation(err, constraintOneConfirmedHire):
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing already has an active hire")
	}
	return err
}

func page(rows []models.Order, limit int) *OrderList {
	trimmed, next := pagination.Trim(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := make([]OrderDTO, 0, len(trimmed))
	for _, o := range trimmed {
		out = append(out, toDTO(o))
	}
	return &OrderList{Orders: out, NextCursor: next}
}
