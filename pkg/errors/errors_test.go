package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeConflict, status: http.StatusConflict},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeOverlapConflict, status: http.StatusConflict, detailsOK: true},
		{code: CodeInsufficientBalance, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeConcurrency, status: http.StatusServiceUnavailable, retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
			assert.NotEmpty(t, meta.PublicMessage)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	require.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	require.Equal(t, CodeValidation, base.Code())
	require.Equal(t, "missing foo", base.Message())
	require.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	require.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, CodeConflict, wrapped.Code())
	require.Contains(t, wrapped.Error(), "boom")

	formatted := Newf(CodeNotFound, "order %d missing", 7)
	require.Equal(t, "order 7 missing", formatted.Message())
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInsufficientBalance, "short"))
	require.NotNil(t, As(err))
	require.Equal(t, CodeInsufficientBalance, CodeOf(err))
	require.True(t, IsCode(err, CodeInsufficientBalance))
	require.False(t, IsCode(err, CodeNotFound))
	require.Equal(t, CodeInternal, CodeOf(stdErrors.New("plain")))
	require.Nil(t, As(nil))
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("socket closed"), "publish failed")
	d := Dump(err)
	require.Equal(t, CodeDependency, d.Code)
	require.Len(t, d.Chain, 2)
	require.Empty(t, d.PGCode)
}

func TestDumpFieldsOmitEmptyPostgresValues(t *testing.T) {
	fields := Dump(Wrap(CodeConcurrency, stdErrors.New("could not serialize access"), "confirm order")).Fields()
	require.Equal(t, CodeConcurrency, fields["error_code"])
	require.Equal(t, true, fields["retryable"])
	require.NotContains(t, fields, "pg_code")
}
