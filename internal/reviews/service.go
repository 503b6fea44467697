// Package reviews lets renters rate a completed hire once.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SubmitInput is a renter's rating for one completed order.
type SubmitInput struct {
	OrderID  uuid.UUID
	RenterID uuid.UUID
	Rating   int
	Comment  string
}

type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ListingID uuid.UUID `json:"listing_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
}

type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*ReviewDTO, error)
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, limit int) ([]ReviewDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*ReviewDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.RenterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var out *ReviewDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.RenterAccountID != input.RenterID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the renter can review this order")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed orders can be reviewed")
		}
		exists, err := repo.ExistsForOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}
		listing, err := repo.FindListing(ctx, order.ListingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}

		review := &models.Review{
			OrderID:         order.ID,
			ListingID:       order.ListingID,
			RenterAccountID: input.RenterID,
			Rating:          input.Rating,
			Comment:         strings.TrimSpace(input.Comment),
		}
		if err := repo.Create(ctx, review); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewSubmitted,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Actor:         outbox.Actor(input.RenterID, string(enums.AccountRoleRenter)),
			Data: payloads.ReviewSubmittedEvent{
				ReviewID:  review.ID,
				OrderID:   order.ID,
				ListingID: order.ListingID,
				OwnerID:   listing.OwnerAccountID,
				RenterID:  input.RenterID,
				Rating:    review.Rating,
			},
		}); err != nil {
			return err
		}
		dto := toDTO(*review)
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsForOrder reads through tx when given so callers inside a transaction see their own writes.
func (s *service) ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	exists, err := s.repo.WithTx(tx).ExistsForOrder(ctx, orderID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check review")
	}
	return exists, nil
}

func (s *service) ListForListing(ctx context.Context, listingID uuid.UUID, limit int) ([]ReviewDTO, error) {
	rows, err := s.repo.ListForListing(ctx, listingID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDTO(r))
	}
	return out, nil
}

func toDTO(r models.Review) ReviewDTO {
	return ReviewDTO{ID: r.ID, OrderID: r.OrderID, ListingID: r.ListingID, Rating: r.Rating, Comment: r.Comment}
}
