package controllers

import (
	"net/http"

	"github.com/angelmondragon/playerhire-backend/api/middleware"
	"github.com/angelmondragon/playerhire-backend/api/responses"
	"github.com/angelmondragon/playerhire-backend/api/validators"
	"github.com/angelmondragon/playerhire-backend/internal/payments"
	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

type walletView struct {
	Balance *wallet.BalanceDTO  `json:"balance"`
	History *wallet.HistoryPage `json:"history"`
}

type topupRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type withdrawRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	BankName      string `json:"bank_name" validate:"required,max=128"`
	AccountNumber string `json:"account_number" validate:"required,max=64"`
	AccountHolder string `json:"account_holder" validate:"required,max=128"`
}

// Wallet returns the caller's balance with the first page of ledger history.
func Wallet(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID := middleware.AccountIDFromContext(r.Context())

		balance, err := svc.Balance(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := svc.History(r.Context(), accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, walletView{Balance: balance, History: history})
	}
}

func Topup(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body topupRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := svc.InitiateTopup(r.Context(), payments.TopupInput{
			AccountID: middleware.AccountIDFromContext(r.Context()),
			Amount:    body.Amount,
			ClientIP:  middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

func Withdraw(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body withdrawRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.Withdraw(r.Context(), payments.WithdrawInput{
			AccountID:     middleware.AccountIDFromContext(r.Context()),
			Amount:        body.Amount,
			BankName:      validators.SanitizeString(body.BankName, 128),
			AccountNumber: validators.SanitizeString(body.AccountNumber, 64),
			AccountHolder: validators.SanitizeString(body.AccountHolder, 128),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
