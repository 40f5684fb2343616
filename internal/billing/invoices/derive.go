package invoices

import (
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/billing/installments"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// DeriveFromRecurrence builds the next occurrence of a recurring seed as a
// new draft invoice. The seed's lines are re-priced against its current VAT
// rate, so rate or VAT edits made on the seed since the last run are
// honored. The seed's recurrence is NOT advanced here; the caller advances
// it only after the derived invoice is saved.
func DeriveFromRecurrence(seed *Invoice, now time.Time, allowBeforeNextRun bool) (*Invoice, error) {
	if seed.Recurrence == nil {
		return nil, fmt.Errorf("%w: invoice %d has no recurrence attached", shared.ErrRuleViolation, seed.ID)
	}
	if !seed.Recurrence.IsRunnable(now, allowBeforeNextRun) {
		return nil, fmt.Errorf("%w: recurrence on invoice %d is not runnable (exhausted or not due)", shared.ErrRuleViolation, seed.ID)
	}

	lines, total, err := document.Reprice(document.LineInputsFromLines(seed.Lines), seed.VATRate)
	if err != nil {
		return nil, fmt.Errorf("reprice seed lines: %w", err)
	}

	seedID := seed.ID
	return &Invoice{
		CompanyID:  seed.CompanyID,
		CustomerID: seed.CustomerID,
		Document: document.Document{
			Title:    seed.Title,
			Subtitle: seed.Subtitle,
			Currency: seed.Currency,
			VATRate:  seed.VATRate,
			Total:    total,
			Lines:    lines,
			Customer: seed.Customer,
			Company:  seed.Company,
		},
		Status:           StatusDraft,
		RecurrenceSeedID: &seedID,
	}, nil
}

// DeriveFromInstallment builds an invoice for the seed's next pending
// installment. The derived invoice's total is the installment's allocated
// share of the seed total, not the full amount; its single line carries the
// share verbatim. The returned installment is the plan slot to mark
// generated once the invoice is saved.
func DeriveFromInstallment(seed *Invoice) (*Invoice, *installments.Installment, error) {
	if seed.InstallmentPlan == nil {
		return nil, nil, fmt.Errorf("%w: invoice %d has no installment plan attached", shared.ErrRuleViolation, seed.ID)
	}
	pending := seed.InstallmentPlan.NextPending()
	if pending == nil {
		return nil, nil, fmt.Errorf("%w: installment plan on invoice %d is exhausted", shared.ErrRuleViolation, seed.ID)
	}

	rateUnit := document.RateUnitHourly
	if len(seed.Lines) > 0 {
		rateUnit = seed.Lines[0].RateUnit
	}

	seedID := seed.ID
	invoice := &Invoice{
		CompanyID:  seed.CompanyID,
		CustomerID: seed.CustomerID,
		Document: document.Document{
			Title:    seed.Title,
			Subtitle: fmt.Sprintf("Installment %d of %d (%s%%)", pending.Position+1, len(seed.InstallmentPlan.Installments), pending.Percentage),
			Currency: seed.Currency,
			VATRate:  seed.VATRate,
			Total:    pending.Amount,
			Lines: []document.Line{{
				Description: fmt.Sprintf("Installment %d of %d: %s", pending.Position+1, len(seed.InstallmentPlan.Installments), seed.Title),
				Quantity:    "1.000",
				RateUnit:    rateUnit,
				Rate:        pending.Amount.Net,
				Amount:      pending.Amount,
				Position:    0,
			}},
			Customer: seed.Customer,
			Company:  seed.Company,
		},
		Status:            StatusDraft,
		InstallmentSeedID: &seedID,
		DueDate:           pending.DueDate,
	}
	return invoice, pending, nil
}
