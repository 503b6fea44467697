package webhooks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/playerhire-backend/api/responses"
	"github.com/angelmondragon/playerhire-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

type topupSettler interface {
	SettleTopup(ctx context.Context, params url.Values) (*payments.Settlement, error)
}

// TopupCallback settles a pending top-up from the gateway's signed callback.
// The gateway may send the fields as a query string or as a form body.
func TopupCallback(svc topupSettler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		if err := r.ParseForm(); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid callback payload"))
			return
		}
		params := r.Form
		if len(params) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "empty callback payload"))
			return
		}

		settlement, err := svc.SettleTopup(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logCtx := logg.WithFields(ctx, map[string]any{
				"txn_ref":         settlement.TxnRef,
				"status":          string(settlement.Status),
				"already_settled": settlement.AlreadySettled,
			})
			logg.Info(logCtx, "topup.callback.settled")
		}
		responses.WriteSuccess(w, settlement)
	}
}
