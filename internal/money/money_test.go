package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecimalFormatsFixedScale(t *testing.T) {
	require.Equal(t, "100.00", Decimal(100, ScaleAmount))
	require.Equal(t, "0.10", Decimal(0.1, ScaleAmount))
	require.Equal(t, "2.500", Decimal(2.5, ScaleQuantity))
	require.Equal(t, "1.24", Decimal(1.235, ScaleAmount))
	require.Equal(t, "-1.24", Decimal(-1.235, ScaleAmount))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range []float64{0, 0.005, 1.005, 100, 33.333, -7.777, 19.999} {
		once := Decimal(raw, ScaleAmount)
		twice, err := Normalize(once, ScaleAmount)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize("12,50", ScaleAmount)
	require.ErrorIs(t, err, ErrInvalidDecimal)
	_, err = Normalize("", ScaleAmount)
	require.ErrorIs(t, err, ErrInvalidDecimal)
}

func TestAddSubMul(t *testing.T) {
	sum, err := Add("0.10", "0.20", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "0.30", sum)

	diff, err := Sub("100.00", "33.33", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "66.67", diff)

	prod, err := Mul("2.500", "100.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "250.00", prod)
}

func TestMulNoFloatDrift(t *testing.T) {
	// 0.1*0.1 repeated in binary floats drifts; fixed point must not.
	acc := "0.00"
	var err error
	for i := 0; i < 100; i++ {
		acc, err = Add(acc, "0.10", ScaleAmount)
		require.NoError(t, err)
	}
	require.Equal(t, "10.00", acc)
}

func TestPercentage(t *testing.T) {
	tax, err := Percentage("250.00", "20.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "50.00", tax)

	third, err := Percentage("100.00", "33.33", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "33.33", third)

	odd, err := Percentage("0.01", "50.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "0.01", odd)
}

func TestPercentageZeroShortCircuit(t *testing.T) {
	got, err := Percentage("0.00", "20.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "0.00", got)

	got, err = Percentage("-0.00", "20.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "0.00", got)

	got, err = Percentage("99.99", "0.00", ScaleAmount)
	require.NoError(t, err)
	require.Equal(t, "0.00", got)
}

func TestCmpAndSigns(t *testing.T) {
	c, err := Cmp("1.00", "1.000")
	require.NoError(t, err)
	require.Zero(t, c)

	pos, err := IsPositive("0.01")
	require.NoError(t, err)
	require.True(t, pos)

	neg, err := IsNegative("-0.01")
	require.NoError(t, err)
	require.True(t, neg)

	pos, err = IsPositive("0.00")
	require.NoError(t, err)
	require.False(t, pos)
}
