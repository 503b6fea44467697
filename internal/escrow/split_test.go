package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

func TestComputeExamples(t *testing.T) {
	cases := []struct {
		total                int64
		release50, release40 int64
		fee                  int64
	}{
		{total: 1000, release50: 500, release40: 400, fee: 100},
		{total: 0, release50: 0, release40: 0, fee: 0},
		{total: 1, release50: 1, release40: 0, fee: 0},
		{total: 5, release50: 3, release40: 1, fee: 1},
		{total: 15, release50: 8, release40: 5, fee: 2},
		{total: 999, release50: 500, release40: 399, fee: 100},
		{total: 1005, release50: 503, release40: 401, fee: 101},
	}
	for _, tc := range cases {
		s, err := Compute(tc.total)
		require.NoError(t, err)
		assert.Equal(t, tc.release50, s.Release50, "release50 for %d", tc.total)
		assert.Equal(t, tc.fee, s.PlatformFee, "fee for %d", tc.total)
		assert.Equal(t, tc.release40, s.Release40, "release40 for %d", tc.total)
	}
}

func TestComputeAlwaysReconstitutesTotal(t *testing.T) {
	for total := int64(0); total <= 5000; total++ {
		s, err := Compute(total)
		require.NoError(t, err)
		require.Equal(t, total, s.Sum(), "total %d", total)
		require.GreaterOrEqual(t, s.Release40, int64(0), "total %d", total)
	}
}

func TestComputeLargeTotals(t *testing.T) {
	s, err := Compute(9_000_000_000_000_001)
	require.NoError(t, err)
	require.Equal(t, int64(9_000_000_000_000_001), s.Sum())
}

func TestComputeRejectsNegative(t *testing.T) {
	_, err := Compute(-1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
