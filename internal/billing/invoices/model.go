package invoices

import (
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/billing/installments"
	"github.com/quillbooks/quillbooks/internal/billing/schedule"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// Status enumerates persisted invoice lifecycle states. OVERDUE is not
// persisted: it is derived at read time from the due date, see
// EffectiveStatus.
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusIssued  Status = "ISSUED"
	StatusOverdue Status = "OVERDUE"
	StatusPaid    Status = "PAID"
	StatusVoided  Status = "VOIDED"
)

// Invoice is a billable document. Transitions are enforced by the aggregate:
// DRAFT -> ISSUED -> PAID, with VOIDED reachable from DRAFT and ISSUED.
// A recurrence or an installment plan (never both) may be attached to make
// the invoice a seed for derived invoices.
type Invoice struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	CompanyID  int64  `json:"company_id"`
	CustomerID int64  `json:"customer_id"`

	document.Document

	Status   Status     `json:"status"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`

	Recurrence      *schedule.Recurrence `json:"recurrence,omitempty"`
	InstallmentPlan *installments.Plan   `json:"installment_plan,omitempty"`

	RecurrenceSeedID  *int64 `json:"recurrence_seed_id,omitempty"`
	InstallmentSeedID *int64 `json:"installment_seed_id,omitempty"`
	QuoteID           *int64 `json:"quote_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Issue moves a draft invoice to ISSUED, stamping the issue time and due
// date.
func (inv *Invoice) Issue(now time.Time, dueDate time.Time) error {
	if inv.Status != StatusDraft {
		return shared.TransitionErrorf("invoice", "issue", string(inv.Status))
	}
	if dueDate.IsZero() {
		return fmt.Errorf("%w: due date required", shared.ErrValidation)
	}
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	inv.DueDate = &dueDate
	return nil
}

// MarkPaid settles an issued (or overdue) invoice.
func (inv *Invoice) MarkPaid(now time.Time) error {
	if inv.Status != StatusIssued {
		return shared.TransitionErrorf("invoice", "pay", string(inv.Status))
	}
	inv.Status = StatusPaid
	inv.PaidAt = &now
	return nil
}

// Void cancels a draft or issued invoice. Paid invoices cannot be voided.
func (inv *Invoice) Void() error {
	if inv.Status != StatusDraft && inv.Status != StatusIssued {
		return shared.TransitionErrorf("invoice", "void", string(inv.Status))
	}
	inv.Status = StatusVoided
	return nil
}

// Terminal reports whether the invoice has reached a final state.
func (inv *Invoice) Terminal() bool {
	return inv.Status == StatusPaid || inv.Status == StatusVoided
}

// EffectiveStatus classifies an issued invoice past its due date as
// OVERDUE. The persisted status stays ISSUED; overdue is an observation,
// not a transition.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	if inv.Status == StatusIssued && inv.DueDate != nil && inv.DueDate.Before(now) {
		return StatusOverdue
	}
	return inv.Status
}

// IsGenerated reports whether this invoice was derived from a seed.
// Generated invoices can never become seeds themselves.
func (inv *Invoice) IsGenerated() bool {
	return inv.RecurrenceSeedID != nil || inv.InstallmentSeedID != nil
}

// AttachRecurrence makes the invoice a recurring seed. A recurrence and an
// installment plan are mutually exclusive.
func (inv *Invoice) AttachRecurrence(rec *schedule.Recurrence) error {
	if err := inv.attachGuard("recurrence"); err != nil {
		return err
	}
	if inv.InstallmentPlan != nil {
		return fmt.Errorf("%w: invoice %d already has an installment plan", shared.ErrRuleViolation, inv.ID)
	}
	if inv.Recurrence != nil {
		return fmt.Errorf("%w: invoice %d already has a recurrence", shared.ErrRuleViolation, inv.ID)
	}
	inv.Recurrence = rec
	return nil
}

// AttachInstallmentPlan makes the invoice an installment seed.
func (inv *Invoice) AttachInstallmentPlan(plan *installments.Plan) error {
	if err := inv.attachGuard("installment plan"); err != nil {
		return err
	}
	if inv.Recurrence != nil {
		return fmt.Errorf("%w: invoice %d already has a recurrence", shared.ErrRuleViolation, inv.ID)
	}
	if inv.InstallmentPlan != nil {
		return fmt.Errorf("%w: invoice %d already has an installment plan", shared.ErrRuleViolation, inv.ID)
	}
	inv.InstallmentPlan = plan
	return nil
}

func (inv *Invoice) attachGuard(kind string) error {
	if inv.IsGenerated() {
		return fmt.Errorf("%w: invoice %d was generated from a seed and cannot carry a %s", shared.ErrRuleViolation, inv.ID, kind)
	}
	if inv.Terminal() {
		return fmt.Errorf("%w: invoice %d is %s", shared.ErrRuleViolation, inv.ID, inv.Status)
	}
	return nil
}

// DetachSchedule removes whichever schedule is attached. Allowed in any
// non-terminal status; already-generated invoices are unaffected.
func (inv *Invoice) DetachSchedule() error {
	if inv.Terminal() {
		return fmt.Errorf("%w: invoice %d is %s", shared.ErrRuleViolation, inv.ID, inv.Status)
	}
	if inv.Recurrence == nil && inv.InstallmentPlan == nil {
		return fmt.Errorf("%w: invoice %d has no schedule attached", shared.ErrRuleViolation, inv.ID)
	}
	inv.Recurrence = nil
	inv.InstallmentPlan = nil
	return nil
}

// Apply replaces the invoice's commercial content. Only drafts are editable.
func (inv *Invoice) Apply(doc document.Document) error {
	if inv.Status != StatusDraft {
		return fmt.Errorf("%w: invoice %d is %s, only drafts can be edited", shared.ErrRuleViolation, inv.ID, inv.Status)
	}
	inv.Document = doc
	return nil
}
