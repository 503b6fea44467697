package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/internal/payments"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

type signedSettler struct {
	signer payments.Signer
	seen   url.Values
}

func (s *signedSettler) SettleTopup(_ context.Context, params url.Values) (*payments.Settlement, error) {
	s.seen = params
	if !s.signer.Verify(params) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid gateway signature")
	}
	return &payments.Settlement{TxnRef: params.Get(payments.ParamTxnRef), Status: enums.LedgerStatusCompleted, Coins: 100}, nil
}

func signedParams(signer payments.Signer) url.Values {
	params := url.Values{}
	params.Set(payments.ParamTxnRef, "ref-42")
	params.Set(payments.ParamAmount, "10000")
	params.Set(payments.ParamResponseCode, "00")
	params.Set(payments.ParamSecureHash, signer.Sign(params))
	return params
}

func TestTopupCallbackAcceptsQueryString(t *testing.T) {
	settler := &signedSettler{signer: payments.NewSigner("s3cret")}
	params := signedParams(settler.signer)

	resp := httptest.NewRecorder()
	TopupCallback(settler, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/webhooks/topup?"+params.Encode(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ref-42", settler.seen.Get(payments.ParamTxnRef))
	assert.Contains(t, resp.Body.String(), `"txn_ref":"ref-42"`)
}

func TestTopupCallbackAcceptsFormBody(t *testing.T) {
	settler := &signedSettler{signer: payments.NewSigner("s3cret")}
	params := signedParams(settler.signer)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/topup", strings.NewReader(params.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	TopupCallback(settler, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestTopupCallbackRejectsTamperedPayload(t *testing.T) {
	settler := &signedSettler{signer: payments.NewSigner("s3cret")}
	params := signedParams(settler.signer)
	params.Set(payments.ParamAmount, "99999999")

	resp := httptest.NewRecorder()
	TopupCallback(settler, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/webhooks/topup?"+params.Encode(), nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	TopupCallback(settler, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/webhooks/topup", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
