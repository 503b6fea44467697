package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

type reviewBody struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=10"`
}

func decode(t *testing.T, body string) (reviewBody, error) {
	t.Helper()
	var dest reviewBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	return dest, err
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	got, err := decode(t, `{"rating":4,"comment":"fun"}`)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)

	_, err = decode(t, `{"rating":9}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"rating": "must be at most 5"}, typed.Details())

	_, err = decode(t, `{"rating":3,"comment":"this is far too long"}`)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"comment": "must be at most 10 characters"}, pkgerrors.As(err).Details())
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    ``,
		"unknown":  `{"rating":3,"tip":1}`,
		"trailing": `{"rating":3}{"rating":4}`,
		"oversize": `{"comment":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
	} {
		_, err := decode(t, body)
		require.Error(t, err, name)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), name)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \x00 ", 0))
	assert.Equal(t, "line\nnext", SanitizeString("line\nnext", 0))
	assert.Equal(t, "héll", SanitizeString("héllo", 4))
}

func TestParseOrderStatusesAndPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?status=pending,confirmed&limit=5", nil)
	statuses, err := ParseOrderStatuses(req)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	bad := httptest.NewRequest(http.MethodGet, "/?status=lost", nil)
	_, err = ParseOrderStatuses(bad)
	assert.Error(t, err)
}

func TestParseUUIDParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	_, err := ParseUUIDParam(req, "orderId")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
