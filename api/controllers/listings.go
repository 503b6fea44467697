package controllers

import (
	"net/http"

	"github.com/angelmondragon/playerhire-backend/api/middleware"
	"github.com/angelmondragon/playerhire-backend/api/responses"
	"github.com/angelmondragon/playerhire-backend/api/validators"
	"github.com/angelmondragon/playerhire-backend/internal/bans"
	"github.com/angelmondragon/playerhire-backend/internal/reviews"
	"github.com/angelmondragon/playerhire-backend/internal/rewards"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

const listingReviewLimit = 20

type rewardView struct {
	Status  *rewards.Status     `json:"status"`
	History []rewards.RecordDTO `json:"history"`
}

type banRequest struct {
	Reason      string `json:"reason" validate:"required,max=64"`
	Description string `json:"description" validate:"max=2000"`
}

// ListingRewards reports milestone progress and past payouts for a listing.
func ListingRewards(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.GetRewardStatus(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := svc.History(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rewardView{Status: status, History: history})
	}
}

func ListingReviews(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", listingReviewLimit, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListForListing(r.Context(), listingID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// BanListing takes a listing down and unwinds its open orders.
func BanListing(svc bans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body banRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithListingID(ctx, listingID.String())
		}
		result, err := svc.BanListing(ctx, bans.BanInput{
			ListingID:   listingID,
			AdminID:     middleware.AccountIDFromContext(ctx),
			Reason:      validators.SanitizeString(body.Reason, 64),
			Description: validators.SanitizeString(body.Description, 2000),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UnbanListing(svc bans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UnbanListing(r.Context(), listingID, middleware.AccountIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"listing_id": listingID, "banned": false})
	}
}
