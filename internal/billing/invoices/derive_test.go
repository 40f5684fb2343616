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

func recurringSeed(t *testing.T) *Invoice {
	t.Helper()
	rec, err := schedule.New(
		schedule.FrequencyMonthly, 1,
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		schedule.EndNever, nil, 0,
	)
	require.NoError(t, err)

	return &Invoice{
		ID:         5,
		CompanyID:  1,
		CustomerID: 11,
		Status:     StatusDraft,
		Recurrence: rec,
		Document: document.Document{
			Title:    "Hosting retainer",
			Currency: "EUR",
			VATRate:  "19.00",
			Total:    document.AmountBreakdown{Net: "500.00", Tax: "95.00", Gross: "595.00"},
			Lines: []document.Line{{
				ID: 77, Description: "Managed hosting", Quantity: "1.000",
				RateUnit: document.RateUnitDaily, Rate: "500.00",
				Amount: document.AmountBreakdown{Net: "500.00", Tax: "95.00", Gross: "595.00"},
			}},
			Customer: document.CustomerSnapshot{Name: "Acme GmbH"},
			Company:  document.CompanySnapshot{Name: "Quill Studio"},
		},
	}
}

func TestDeriveFromRecurrence(t *testing.T) {
	seed := recurringSeed(t)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	derived, err := DeriveFromRecurrence(seed, now, false)
	require.NoError(t, err)

	require.Equal(t, StatusDraft, derived.Status)
	require.Equal(t, seed.ID, *derived.RecurrenceSeedID)
	require.Equal(t, seed.CompanyID, derived.CompanyID)
	require.Equal(t, "500.00", derived.Total.Net)
	require.Equal(t, "95.00", derived.Total.Tax)
	require.Equal(t, "595.00", derived.Total.Gross)
	require.Equal(t, "Acme GmbH", derived.Customer.Name)

	require.Zero(t, derived.Lines[0].ID, "derived lines get fresh ids")
	require.Zero(t, seed.Recurrence.GeneratedCount, "derivation does not advance the schedule")
	require.Nil(t, derived.Recurrence, "derived invoices carry no schedule")
}

func TestDeriveFromRecurrenceRepricesEditedSeed(t *testing.T) {
	seed := recurringSeed(t)
	seed.Lines[0].Rate = "600.00"
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	derived, err := DeriveFromRecurrence(seed, now, false)
	require.NoError(t, err)
	require.Equal(t, "600.00", derived.Total.Net)
	require.Equal(t, "114.00", derived.Total.Tax)
	require.Equal(t, "714.00", derived.Total.Gross)
}

func TestDeriveFromRecurrenceNotDue(t *testing.T) {
	seed := recurringSeed(t)
	early := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := DeriveFromRecurrence(seed, early, false)
	require.ErrorIs(t, err, shared.ErrRuleViolation)

	derived, err := DeriveFromRecurrence(seed, early, true)
	require.NoError(t, err, "force overrides the schedule clock")
	require.NotNil(t, derived)
}

func TestDeriveFromRecurrenceRequiresRecurrence(t *testing.T) {
	seed := recurringSeed(t)
	seed.Recurrence = nil
	_, err := DeriveFromRecurrence(seed, time.Now(), false)
	require.ErrorIs(t, err, shared.ErrRuleViolation)
}

func installmentSeed(t *testing.T) *Invoice {
	t.Helper()
	seed := recurringSeed(t)
	seed.Recurrence = nil

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := installments.NewPlan(seed.Total, []string{"30.00", "30.00", "40.00"}, []*time.Time{&due})
	require.NoError(t, err)
	seed.InstallmentPlan = plan
	return seed
}

func TestDeriveFromInstallment(t *testing.T) {
	seed := installmentSeed(t)

	derived, pending, err := DeriveFromInstallment(seed)
	require.NoError(t, err)
	require.Equal(t, 0, pending.Position)

	require.Equal(t, seed.ID, *derived.InstallmentSeedID)
	require.Equal(t, "150.00", derived.Total.Net)
	require.Equal(t, "28.50", derived.Total.Tax)
	require.Equal(t, "178.50", derived.Total.Gross)
	require.Equal(t, pending.DueDate, derived.DueDate)

	require.Len(t, derived.Lines, 1)
	require.Equal(t, "Installment 1 of 3: Hosting retainer", derived.Lines[0].Description)
	require.Equal(t, pending.Amount, derived.Lines[0].Amount, "share carried verbatim")
}

func TestDeriveFromInstallmentWalksThePlan(t *testing.T) {
	seed := installmentSeed(t)

	var nets []string
	for i := 0; i < 3; i++ {
		derived, pending, err := DeriveFromInstallment(seed)
		require.NoError(t, err)
		nets = append(nets, derived.Total.Net)
		require.True(t, seed.InstallmentPlan.MarkGenerated(pending.Position))
	}
	require.Equal(t, []string{"150.00", "150.00", "200.00"}, nets)
	require.True(t, seed.InstallmentPlan.Exhausted())

	_, _, err := DeriveFromInstallment(seed)
	require.ErrorIs(t, err, shared.ErrRuleViolation)
}
