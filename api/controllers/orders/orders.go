package orders

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/api/middleware"
	"github.com/angelmondragon/playerhire-backend/api/responses"
	"github.com/angelmondragon/playerhire-backend/api/validators"
	"github.com/angelmondragon/playerhire-backend/internal/availability"
	internalorders "github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/internal/reviews"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

type transitionFunc func(ctx context.Context, orderID, actorID uuid.UUID) (*internalorders.OrderDTO, error)

type createOrderRequest struct {
	ListingID  string    `json:"listing_id" validate:"required,uuid"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required"`
	TotalPrice int64     `json:"total_price" validate:"required,gt=0"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Create books a listing window and holds the renter's coins in escrow.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := uuid.Parse(body.ListingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			RenterID:   middleware.AccountIDFromContext(r.Context()),
			ListingID:  listingID,
			Window:     availability.Window{Start: body.StartTime.UTC(), End: body.EndTime.UTC()},
			TotalPrice: body.TotalPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID, viewer(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// List pages the caller's own hires, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := validators.ParseOrderStatuses(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListForRenter(r.Context(), middleware.AccountIDFromContext(r.Context()), statuses, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListForListing pages the orders placed on a listing; owner or admin only.
func ListForListing(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statuses, err := validators.ParseOrderStatuses(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListForListing(r.Context(), listingID, viewer(r), statuses, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Confirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(logg, svc.Confirm)
}

func Reject(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(logg, svc.Reject)
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(logg, svc.Cancel)
}

// Complete releases escrow early on behalf of either party.
func Complete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(logg, func(ctx context.Context, orderID, actorID uuid.UUID) (*internalorders.OrderDTO, error) {
		return svc.Complete(ctx, orderID, internalorders.CompleteInput{Trigger: enums.TriggerManual, ActorID: actorID})
	})
}

// Review records the renter's rating for a completed order.
func Review(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body reviewRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.Submit(r.Context(), reviews.SubmitInput{
			OrderID:  orderID,
			RenterID: middleware.AccountIDFromContext(r.Context()),
			Rating:   body.Rating,
			Comment:  validators.SanitizeString(body.Comment, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

func transition(logg *logger.Logger, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fn == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}
		order, err := fn(ctx, orderID, middleware.AccountIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func viewer(r *http.Request) internalorders.Viewer {
	return internalorders.Viewer{
		AccountID: middleware.AccountIDFromContext(r.Context()),
		IsAdmin:   middleware.RoleFromContext(r.Context()) == enums.AccountRoleAdmin,
	}
}
