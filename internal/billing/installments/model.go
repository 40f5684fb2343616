package installments

import (
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
)

// Installment is one scheduled partial-payment slice of an invoice total.
type Installment struct {
	Position   int                      `json:"position"`
	Percentage string                   `json:"percentage"`
	Amount     document.AmountBreakdown `json:"amount"`
	DueDate    *time.Time               `json:"due_date,omitempty"`
	Generated  bool                     `json:"generated"`
}

// Plan is an ordered list of installments whose percentages sum to exactly
// 100.00 and whose amounts reconcile to the invoice total.
type Plan struct {
	Installments []Installment `json:"installments"`
}

// NewPlan allocates the total over the given percentages and due dates.
// dueDates may be nil or shorter than percentages; missing entries leave the
// installment without a due date.
func NewPlan(total document.AmountBreakdown, percentages []string, dueDates []*time.Time) (*Plan, error) {
	shares, err := Allocate(total, percentages)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Installments: make([]Installment, len(shares))}
	for i, share := range shares {
		inst := Installment{
			Position:   i,
			Percentage: share.Percentage,
			Amount:     share.Amount,
		}
		if i < len(dueDates) {
			inst.DueDate = dueDates[i]
		}
		plan.Installments[i] = inst
	}
	return plan, nil
}

// NextPending returns the lowest-position installment that has not generated
// an invoice yet, or nil when the plan is exhausted.
func (p *Plan) NextPending() *Installment {
	if p == nil {
		return nil
	}
	for i := range p.Installments {
		if !p.Installments[i].Generated {
			return &p.Installments[i]
		}
	}
	return nil
}

// MarkGenerated flags the installment at the given position as consumed.
func (p *Plan) MarkGenerated(position int) bool {
	for i := range p.Installments {
		if p.Installments[i].Position == position {
			p.Installments[i].Generated = true
			return true
		}
	}
	return false
}

// Exhausted reports whether every installment has generated an invoice.
func (p *Plan) Exhausted() bool {
	return p.NextPending() == nil
}
