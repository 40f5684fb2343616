// Package installments splits a document total into percentage shares that
// reconcile exactly to the full amount.
package installments

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// Share is one installment's slice of the document total.
type Share struct {
	Percentage string
	Amount     document.AmountBreakdown
}

// Allocate splits the total into one share per percentage, in order. Every
// share except the last is total*pct/100 rounded to cents; the last share is
// total minus everything already allocated, so the rounding remainder is
// absorbed entirely by the final installment and the shares always sum back
// to the exact total.
//
// Percentages must each be in (0, 100] and sum to exactly 100.00; any
// mismatch is a validation error, never silently corrected.
func Allocate(total document.AmountBreakdown, percentages []string) ([]Share, error) {
	if err := validatePercentages(percentages); err != nil {
		return nil, err
	}

	shares := make([]Share, len(percentages))
	for i, pct := range percentages {
		normalized, err := money.Normalize(pct, money.ScaleAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: percentage: %v", shared.ErrValidation, err)
		}
		shares[i] = Share{Percentage: normalized}
	}

	for _, component := range []struct {
		total  string
		assign func(i int, v string)
	}{
		{total.Net, func(i int, v string) { shares[i].Amount.Net = v }},
		{total.Tax, func(i int, v string) { shares[i].Amount.Tax = v }},
		{total.Gross, func(i int, v string) { shares[i].Amount.Gross = v }},
	} {
		allocated := money.Zero(money.ScaleAmount)
		for i := range shares {
			var (
				share string
				err   error
			)
			if i == len(shares)-1 {
				share, err = money.Sub(component.total, allocated, money.ScaleAmount)
			} else {
				share, err = money.Percentage(component.total, shares[i].Percentage, money.ScaleAmount)
			}
			if err != nil {
				return nil, err
			}
			if allocated, err = money.Add(allocated, share, money.ScaleAmount); err != nil {
				return nil, err
			}
			component.assign(i, share)
		}
	}

	return shares, nil
}

var oneHundred = decimal.NewFromInt(100)

func validatePercentages(percentages []string) error {
	if len(percentages) == 0 {
		return fmt.Errorf("%w: at least one installment required", shared.ErrValidation)
	}
	sum := decimal.Zero
	for i, pct := range percentages {
		d, err := decimal.NewFromString(pct)
		if err != nil {
			return fmt.Errorf("%w: installment %d: invalid percentage %q", shared.ErrValidation, i, pct)
		}
		if !d.IsPositive() || d.GreaterThan(oneHundred) {
			return fmt.Errorf("%w: installment %d: percentage %s out of range", shared.ErrValidation, i, d.StringFixed(2))
		}
		sum = sum.Add(d)
	}
	if !sum.Equal(oneHundred) {
		return fmt.Errorf("%w: percentages sum to %s, expected 100.00", shared.ErrValidation, sum.StringFixed(2))
	}
	return nil
}
