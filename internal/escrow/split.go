// Package escrow computes the staged disbursement of an order's total price.
package escrow

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
)

var (
	confirmShare  = decimal.RequireFromString("0.5")
	platformShare = decimal.RequireFromString("0.1")
)

// Split is the 50/40/10 breakdown of a total price.
type Split struct {
	Total       int64 `json:"total"`
	Release50   int64 `json:"release_50"`
	Release40   int64 `json:"release_40"`
	PlatformFee int64 `json:"platform_fee"`
}

// Sum reconstitutes the total from its parts.
func (s Split) Sum() int64 {
	return s.Release50 + s.Release40 + s.PlatformFee
}

// Compute splits total into the confirm tranche, the completion tranche and the
// platform fee. Release50 and PlatformFee are rounded half-up; Release40 takes
// whatever remains so the parts always add back to total.
func Compute(total int64) (Split, error) {
	if total < 0 {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "total price must not be negative")
	}
	t := decimal.NewFromInt(total)
	release50 := roundHalfUp(t.Mul(confirmShare))
	fee := roundHalfUp(t.Mul(platformShare))
	return Split{
		Total:       total,
		Release50:   release50,
		Release40:   total - release50 - fee,
		PlatformFee: fee,
	}, nil
}

// roundHalfUp rounds a non-negative amount to whole coins, ties away from zero.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
