package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/shared"
)

func TestPriceLineBasic(t *testing.T) {
	line, err := PriceLine(LineInput{
		Description: "Consulting",
		Quantity:    "2.500",
		RateUnit:    RateUnitHourly,
		Rate:        "100.00",
	}, "20.00", 0)
	require.NoError(t, err)

	require.Equal(t, "250.00", line.Amount.Net)
	require.Equal(t, "50.00", line.Amount.Tax)
	require.Equal(t, "300.00", line.Amount.Gross)
	require.Equal(t, "2.500", line.Quantity)
	require.Equal(t, 0, line.Position)
}

func TestPriceLineNormalizesScales(t *testing.T) {
	line, err := PriceLine(LineInput{
		Description: "Workshop",
		Quantity:    "1",
		RateUnit:    RateUnitDaily,
		Rate:        "650",
	}, "0.00", 3)
	require.NoError(t, err)
	require.Equal(t, "1.000", line.Quantity)
	require.Equal(t, "650.00", line.Rate)
	require.Equal(t, "650.00", line.Amount.Net)
	require.Equal(t, "0.00", line.Amount.Tax)
	require.Equal(t, "650.00", line.Amount.Gross)
}

func TestPriceLineRejectsInvalidInput(t *testing.T) {
	cases := map[string]LineInput{
		"empty description": {Description: "  ", Quantity: "1.000", RateUnit: RateUnitHourly, Rate: "10.00"},
		"zero quantity":     {Description: "x", Quantity: "0.000", RateUnit: RateUnitHourly, Rate: "10.00"},
		"negative quantity": {Description: "x", Quantity: "-1.000", RateUnit: RateUnitHourly, Rate: "10.00"},
		"negative rate":     {Description: "x", Quantity: "1.000", RateUnit: RateUnitHourly, Rate: "-10.00"},
		"unknown unit":      {Description: "x", Quantity: "1.000", RateUnit: "WEEKLY", Rate: "10.00"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := PriceLine(input, "20.00", 0)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestAggregateTotalsDerivesGross(t *testing.T) {
	// Each line's tax rounds independently; the total gross must still be
	// net+tax at the document level.
	var lines []Line
	for i := 0; i < 3; i++ {
		line, err := PriceLine(LineInput{
			Description: "Item",
			Quantity:    "1.000",
			RateUnit:    RateUnitHourly,
			Rate:        "0.33",
		}, "19.60", i)
		require.NoError(t, err)
		lines = append(lines, line)
	}

	total, err := AggregateTotals(lines)
	require.NoError(t, err)
	require.Equal(t, "0.99", total.Net)
	require.Equal(t, "0.18", total.Tax)
	require.Equal(t, "1.17", total.Gross)
}

func TestAggregateTotalsRejectsEmpty(t *testing.T) {
	_, err := AggregateTotals(nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRepriceAssignsPositions(t *testing.T) {
	lines, total, err := Reprice([]LineInput{
		{Description: "a", Quantity: "1.000", RateUnit: RateUnitHourly, Rate: "10.00"},
		{Description: "b", Quantity: "2.000", RateUnit: RateUnitDaily, Rate: "20.00"},
	}, "20.00")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, 0, lines[0].Position)
	require.Equal(t, 1, lines[1].Position)
	require.Equal(t, "50.00", total.Net)
	require.Equal(t, "10.00", total.Tax)
	require.Equal(t, "60.00", total.Gross)
}
