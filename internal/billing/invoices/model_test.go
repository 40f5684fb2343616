package invoices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/billing/installments"
	"github.com/quillbooks/quillbooks/internal/billing/schedule"
	"github.com/quillbooks/quillbooks/internal/shared"
)

func testRecurrence(t *testing.T) *schedule.Recurrence {
	t.Helper()
	rec, err := schedule.New(
		schedule.FrequencyMonthly, 1,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		schedule.EndNever, nil, 0,
	)
	require.NoError(t, err)
	return rec
}

func testPlan(t *testing.T) *installments.Plan {
	t.Helper()
	plan, err := installments.NewPlan(
		document.AmountBreakdown{Net: "1000.00", Tax: "190.00", Gross: "1190.00"},
		[]string{"50.00", "50.00"}, nil,
	)
	require.NoError(t, err)
	return plan
}

func TestInvoiceLifecycle(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 14)
	inv := &Invoice{ID: 1, Status: StatusDraft}

	require.NoError(t, inv.Issue(now, due))
	require.Equal(t, StatusIssued, inv.Status)
	require.Equal(t, due, *inv.DueDate)
	require.Equal(t, now, *inv.IssuedAt)

	require.ErrorIs(t, inv.Issue(now, due), shared.ErrInvalidTransition)

	require.NoError(t, inv.MarkPaid(now))
	require.Equal(t, StatusPaid, inv.Status)
	require.True(t, inv.Terminal())

	require.ErrorIs(t, inv.MarkPaid(now), shared.ErrInvalidTransition)
	require.ErrorIs(t, inv.Void(), shared.ErrInvalidTransition)
}

func TestInvoiceIssueRequiresDueDate(t *testing.T) {
	inv := &Invoice{Status: StatusDraft}
	require.ErrorIs(t, inv.Issue(time.Now(), time.Time{}), shared.ErrValidation)
}

func TestInvoicePayRequiresIssued(t *testing.T) {
	inv := &Invoice{Status: StatusDraft}
	require.ErrorIs(t, inv.MarkPaid(time.Now()), shared.ErrInvalidTransition)
}

func TestInvoiceVoidFromDraftAndIssued(t *testing.T) {
	draft := &Invoice{Status: StatusDraft}
	require.NoError(t, draft.Void())
	require.Equal(t, StatusVoided, draft.Status)

	issued := &Invoice{Status: StatusIssued}
	require.NoError(t, issued.Void())

	voided := &Invoice{Status: StatusVoided}
	require.ErrorIs(t, voided.Void(), shared.ErrInvalidTransition)
}

func TestInvoiceEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	overdue := &Invoice{Status: StatusIssued, DueDate: &past}
	require.Equal(t, StatusOverdue, overdue.EffectiveStatus(now))
	require.Equal(t, StatusIssued, overdue.Status, "persisted status untouched")

	current := &Invoice{Status: StatusIssued, DueDate: &future}
	require.Equal(t, StatusIssued, current.EffectiveStatus(now))

	paid := &Invoice{Status: StatusPaid, DueDate: &past}
	require.Equal(t, StatusPaid, paid.EffectiveStatus(now))

	draft := &Invoice{Status: StatusDraft}
	require.Equal(t, StatusDraft, draft.EffectiveStatus(now))
}

func TestInvoiceSchedulesAreMutuallyExclusive(t *testing.T) {
	inv := &Invoice{ID: 1, Status: StatusDraft}

	require.NoError(t, inv.AttachRecurrence(testRecurrence(t)))
	require.ErrorIs(t, inv.AttachInstallmentPlan(testPlan(t)), shared.ErrRuleViolation)
	require.ErrorIs(t, inv.AttachRecurrence(testRecurrence(t)), shared.ErrRuleViolation)

	require.NoError(t, inv.DetachSchedule())
	require.Nil(t, inv.Recurrence)

	require.NoError(t, inv.AttachInstallmentPlan(testPlan(t)))
	require.ErrorIs(t, inv.AttachRecurrence(testRecurrence(t)), shared.ErrRuleViolation)
}

func TestInvoiceGeneratedCannotBecomeSeed(t *testing.T) {
	seedID := int64(9)
	inv := &Invoice{ID: 2, Status: StatusDraft, RecurrenceSeedID: &seedID}

	require.True(t, inv.IsGenerated())
	require.ErrorIs(t, inv.AttachRecurrence(testRecurrence(t)), shared.ErrRuleViolation)
	require.ErrorIs(t, inv.AttachInstallmentPlan(testPlan(t)), shared.ErrRuleViolation)
}

func TestInvoiceAttachRefusedOnTerminal(t *testing.T) {
	inv := &Invoice{ID: 3, Status: StatusPaid}
	require.ErrorIs(t, inv.AttachRecurrence(testRecurrence(t)), shared.ErrRuleViolation)
	require.ErrorIs(t, inv.DetachSchedule(), shared.ErrRuleViolation)
}

func TestInvoiceDetachRequiresSchedule(t *testing.T) {
	inv := &Invoice{ID: 4, Status: StatusDraft}
	require.ErrorIs(t, inv.DetachSchedule(), shared.ErrRuleViolation)
}
