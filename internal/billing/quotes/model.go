package quotes

import (
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// Status enumerates quote lifecycle states.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Quote is a priced offer to a customer. Transitions are enforced by the
// aggregate itself; DRAFT -> SENT -> ACCEPTED|REJECTED, with ACCEPTED and
// REJECTED terminal.
type Quote struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	CompanyID  int64  `json:"company_id"`
	CustomerID int64  `json:"customer_id"`

	document.Document

	Status             Status     `json:"status"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	ConvertedInvoiceID *int64     `json:"converted_invoice_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Send moves a draft quote to SENT and stamps the send time.
func (q *Quote) Send(now time.Time) error {
	if q.Status != StatusDraft {
		return shared.TransitionErrorf("quote", "send", string(q.Status))
	}
	q.Status = StatusSent
	q.SentAt = &now
	return nil
}

// MarkAccepted moves a sent quote to ACCEPTED. Any rejection timestamp is
// cleared so the terminal state is unambiguous.
func (q *Quote) MarkAccepted(now time.Time) error {
	if q.Status != StatusSent {
		return shared.TransitionErrorf("quote", "accept", string(q.Status))
	}
	q.Status = StatusAccepted
	q.AcceptedAt = &now
	q.RejectedAt = nil
	return nil
}

// MarkRejected moves a sent quote to REJECTED, clearing any acceptance
// timestamp.
func (q *Quote) MarkRejected(now time.Time) error {
	if q.Status != StatusSent {
		return shared.TransitionErrorf("quote", "reject", string(q.Status))
	}
	q.Status = StatusRejected
	q.RejectedAt = &now
	q.AcceptedAt = nil
	return nil
}

// CanConvert reports whether the quote may produce an invoice. Only
// accepted quotes convert, and only once.
func (q *Quote) CanConvert() error {
	if q.Status != StatusAccepted {
		return shared.TransitionErrorf("quote", "convert", string(q.Status))
	}
	if q.ConvertedInvoiceID != nil {
		return fmt.Errorf("%w: quote %d already converted to invoice %d", shared.ErrRuleViolation, q.ID, *q.ConvertedInvoiceID)
	}
	return nil
}

// LinkConvertedInvoice records the invoice produced from an accepted quote.
func (q *Quote) LinkConvertedInvoice(invoiceID int64) error {
	if err := q.CanConvert(); err != nil {
		return err
	}
	q.ConvertedInvoiceID = &invoiceID
	return nil
}

// Apply replaces the quote's commercial content. Only drafts are editable.
func (q *Quote) Apply(doc document.Document) error {
	if q.Status != StatusDraft {
		return fmt.Errorf("%w: quote %d is %s, only drafts can be edited", shared.ErrRuleViolation, q.ID, q.Status)
	}
	q.Document = doc
	return nil
}
