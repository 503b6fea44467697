// Package availability decides whether a hire window fits a listing's calendar.
package availability

import (
	"time"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Rules bound how soon and how short a hire may be.
type Rules struct {
	MinLead     time.Duration
	MinDuration time.Duration
}

// DefaultRules are the marketplace defaults: 15 minutes lead, one hour minimum.
var DefaultRules = Rules{MinLead: 15 * time.Minute, MinDuration: time.Hour}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Minutes returns the whole minutes the window covers.
func (w Window) Minutes() int64 {
	return int64(w.Duration() / time.Minute)
}

// Overlaps reports whether the two windows share any instant. Touching
// endpoints do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Validate checks the window against rules relative to now.
func (w Window) Validate(now time.Time, rules Rules) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if !w.Start.Before(w.End) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start must be before end")
	}
	if w.Start.Before(now.Add(rules.MinLead)) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "start must be at least %s from now", rules.MinLead)
	}
	if w.Duration() < rules.MinDuration {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "hire must last at least %s", rules.MinDuration)
	}
	return nil
}

// UTC normalizes both endpoints.
func (w Window) UTC() Window {
	return Window{Start: w.Start.UTC(), End: w.End.UTC()}
}
