package installments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/shared"
)

func breakdown(net, tax, gross string) document.AmountBreakdown {
	return document.AmountBreakdown{Net: net, Tax: tax, Gross: gross}
}

func TestAllocateThirdsAbsorbsRemainder(t *testing.T) {
	shares, err := Allocate(breakdown("100.00", "20.00", "120.00"), []string{"33.33", "33.33", "33.34"})
	require.NoError(t, err)
	require.Len(t, shares, 3)

	require.Equal(t, "33.33", shares[0].Amount.Net)
	require.Equal(t, "33.33", shares[1].Amount.Net)
	// Last slot takes total minus allocated, not 33.34% of the total.
	require.Equal(t, "33.34", shares[2].Amount.Net)

	requireSharesSumTo(t, shares, breakdown("100.00", "20.00", "120.00"))
}

func TestAllocateSingleInstallmentGetsTotalVerbatim(t *testing.T) {
	total := breakdown("1234.56", "246.91", "1481.47")
	shares, err := Allocate(total, []string{"100.00"})
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, total, shares[0].Amount)
}

func TestAllocateManyUnevenInstallments(t *testing.T) {
	total := breakdown("999.99", "199.99", "1199.98")
	shares, err := Allocate(total, []string{"10.00", "15.50", "24.50", "25.00", "25.00"})
	require.NoError(t, err)
	require.Len(t, shares, 5)
	requireSharesSumTo(t, shares, total)
}

func TestAllocateRejectsBadSums(t *testing.T) {
	total := breakdown("100.00", "0.00", "100.00")

	_, err := Allocate(total, []string{"33.33", "33.33", "33.33"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = Allocate(total, []string{"50.00", "50.01"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = Allocate(total, []string{"0.00", "100.00"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = Allocate(total, []string{"-10.00", "110.00"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = Allocate(total, nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewPlanCarriesDueDatesAndPositions(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := NewPlan(breakdown("300.00", "60.00", "360.00"), []string{"50.00", "50.00"}, []*time.Time{&due, nil})
	require.NoError(t, err)
	require.Len(t, plan.Installments, 2)
	require.Equal(t, 0, plan.Installments[0].Position)
	require.Equal(t, 1, plan.Installments[1].Position)
	require.NotNil(t, plan.Installments[0].DueDate)
	require.Nil(t, plan.Installments[1].DueDate)
}

func TestPlanPendingAndExhaustion(t *testing.T) {
	plan, err := NewPlan(breakdown("100.00", "0.00", "100.00"), []string{"60.00", "40.00"}, nil)
	require.NoError(t, err)

	next := plan.NextPending()
	require.NotNil(t, next)
	require.Equal(t, 0, next.Position)

	require.True(t, plan.MarkGenerated(0))
	next = plan.NextPending()
	require.NotNil(t, next)
	require.Equal(t, 1, next.Position)

	require.True(t, plan.MarkGenerated(1))
	require.True(t, plan.Exhausted())
	require.False(t, plan.MarkGenerated(7))
}

func requireSharesSumTo(t *testing.T, shares []Share, total document.AmountBreakdown) {
	t.Helper()
	net := money.Zero(money.ScaleAmount)
	tax := money.Zero(money.ScaleAmount)
	gross := money.Zero(money.ScaleAmount)
	var err error
	for _, s := range shares {
		net, err = money.Add(net, s.Amount.Net, money.ScaleAmount)
		require.NoError(t, err)
		tax, err = money.Add(tax, s.Amount.Tax, money.ScaleAmount)
		require.NoError(t, err)
		gross, err = money.Add(gross, s.Amount.Gross, money.ScaleAmount)
		require.NoError(t, err)
	}
	require.Equal(t, total.Net, net)
	require.Equal(t, total.Tax, tax)
	require.Equal(t, total.Gross, gross)
}
