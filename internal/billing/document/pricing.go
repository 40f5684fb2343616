package document

import (
	"fmt"
	"strings"

	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// LineInput is the pre-validated input for pricing a single line. Quantity
// is a scale-3 decimal string, Rate a scale-2 decimal string. ID is zero for
// new lines and carries the stable identity on updates.
type LineInput struct {
	ID          int64
	Description string
	Quantity    string
	RateUnit    RateUnit
	Rate        string
}

// PriceLine computes a line's net/tax/gross from quantity, unit rate and the
// document VAT rate: net = quantity*rate, tax = net*vatRate/100, gross =
// net+tax, amounts rounded to 2 decimals. The quantity keeps its 3-decimal
// scale.
func PriceLine(input LineInput, vatRate string, position int) (Line, error) {
	if strings.TrimSpace(input.Description) == "" {
		return Line{}, fmt.Errorf("%w: line description required", shared.ErrValidation)
	}
	if !input.RateUnit.Valid() {
		return Line{}, fmt.Errorf("%w: unknown rate unit %q", shared.ErrValidation, input.RateUnit)
	}
	if position < 0 {
		return Line{}, fmt.Errorf("%w: negative line position", shared.ErrValidation)
	}

	quantity, err := money.Normalize(input.Quantity, money.ScaleQuantity)
	if err != nil {
		return Line{}, fmt.Errorf("%w: quantity: %v", shared.ErrValidation, err)
	}
	if positive, _ := money.IsPositive(quantity); !positive {
		return Line{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}

	rate, err := money.Normalize(input.Rate, money.ScaleAmount)
	if err != nil {
		return Line{}, fmt.Errorf("%w: rate: %v", shared.ErrValidation, err)
	}
	if negative, _ := money.IsNegative(rate); negative {
		return Line{}, fmt.Errorf("%w: rate must not be negative", shared.ErrValidation)
	}

	net, err := money.Mul(quantity, rate, money.ScaleAmount)
	if err != nil {
		return Line{}, err
	}
	tax, err := money.Percentage(net, vatRate, money.ScaleAmount)
	if err != nil {
		return Line{}, fmt.Errorf("%w: vat rate: %v", shared.ErrValidation, err)
	}
	gross, err := money.Add(net, tax, money.ScaleAmount)
	if err != nil {
		return Line{}, err
	}

	return Line{
		ID:          input.ID,
		Description: input.Description,
		Quantity:    quantity,
		RateUnit:    input.RateUnit,
		Rate:        rate,
		Amount:      AmountBreakdown{Net: net, Tax: tax, Gross: gross},
		Position:    position,
	}, nil
}

// PriceLines prices a batch of inputs in order, assigning positions 0..n-1.
func PriceLines(inputs []LineInput, vatRate string) ([]Line, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: document requires at least one line", shared.ErrValidation)
	}
	lines := make([]Line, 0, len(inputs))
	for i, input := range inputs {
		line, err := PriceLine(input, vatRate, i)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// AggregateTotals sums already-priced lines into a document-level breakdown.
// Net and tax are summed independently and gross is derived from their sum,
// never summed from line grosses, so the breakdown identity survives
// per-line rounding.
func AggregateTotals(lines []Line) (AmountBreakdown, error) {
	if len(lines) == 0 {
		return AmountBreakdown{}, fmt.Errorf("%w: document requires at least one line", shared.ErrValidation)
	}
	net := money.Zero(money.ScaleAmount)
	tax := money.Zero(money.ScaleAmount)
	var err error
	for _, line := range lines {
		if net, err = money.Add(net, line.Amount.Net, money.ScaleAmount); err != nil {
			return AmountBreakdown{}, err
		}
		if tax, err = money.Add(tax, line.Amount.Tax, money.ScaleAmount); err != nil {
			return AmountBreakdown{}, err
		}
	}
	gross, err := money.Add(net, tax, money.ScaleAmount)
	if err != nil {
		return AmountBreakdown{}, err
	}
	return AmountBreakdown{Net: net, Tax: tax, Gross: gross}, nil
}

// Reprice recomputes the document's lines and total from the given inputs
// and VAT rate, returning the priced lines and aggregate.
func Reprice(inputs []LineInput, vatRate string) ([]Line, AmountBreakdown, error) {
	lines, err := PriceLines(inputs, vatRate)
	if err != nil {
		return nil, AmountBreakdown{}, err
	}
	total, err := AggregateTotals(lines)
	if err != nil {
		return nil, AmountBreakdown{}, err
	}
	return lines, total, nil
}

// LineInputsFromLines converts persisted lines back into pricing inputs,
// used when deriving a new document from a seed.
func LineInputsFromLines(lines []Line) []LineInput {
	inputs := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, LineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			RateUnit:    line.RateUnit,
			Rate:        line.Rate,
		})
	}
	return inputs
}
