package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

func TestWindowOverlaps(t *testing.T) {
	base := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	w := Window{Start: base, End: base.Add(2 * time.Hour)}

	cases := []struct {
		name  string
		other Window
		want  bool
	}{
		{"identical", w, true},
		{"inside", Window{base.Add(30 * time.Minute), base.Add(time.Hour)}, true},
		{"straddles start", Window{base.Add(-time.Hour), base.Add(time.Minute)}, true},
		{"straddles end", Window{base.Add(119 * time.Minute), base.Add(3 * time.Hour)}, true},
		{"touches end", Window{base.Add(2 * time.Hour), base.Add(3 * time.Hour)}, false},
		{"touches start", Window{base.Add(-time.Hour), base}, false},
		{"far away", Window{base.Add(5 * time.Hour), base.Add(6 * time.Hour)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(w))
		})
	}
}

func TestWindowValidate(t *testing.T) {
	now := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	valid := Window{Start: now.Add(15 * time.Minute), End: now.Add(75 * time.Minute)}
	assert.NoError(t, valid.Validate(now, DefaultRules))

	cases := map[string]Window{
		"zero":        {},
		"end before":  {Start: now.Add(3 * time.Hour), End: now.Add(2 * time.Hour)},
		"empty":       {Start: now.Add(time.Hour), End: now.Add(time.Hour)},
		"too soon":    {Start: now.Add(14 * time.Minute), End: now.Add(2 * time.Hour)},
		"too short":   {Start: now.Add(time.Hour), End: now.Add(119 * time.Minute)},
		"in the past": {Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour)},
	}
	for name, w := range cases {
		err := w.Validate(now, DefaultRules)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}
}

func TestWindowMinutes(t *testing.T) {
	start := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(90), Window{Start: start, End: start.Add(90 * time.Minute)}.Minutes())
}
