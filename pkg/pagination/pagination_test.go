package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 123, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(c.Encode())
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, c.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, c.ID, parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	c, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestParseCursorInvalid(t *testing.T) {
	_, err := ParseCursor("%%%")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
	assert.Equal(t, 7, NormalizeLimit(7))
}

func TestTrim(t *testing.T) {
	now := time.Now().UTC()
	rows := []Cursor{{CreatedAt: now, ID: uuid.New()}, {CreatedAt: now, ID: uuid.New()}, {CreatedAt: now, ID: uuid.New()}}
	page, next := Trim(rows, 2, func(c Cursor) Cursor { return c })
	assert.Len(t, page, 2)
	assert.Equal(t, rows[1].Encode(), next)

	page, next = Trim(rows[:1], 2, func(c Cursor) Cursor { return c })
	assert.Len(t, page, 1)
	assert.Empty(t, next)
}
