package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/shared"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewValidation(t *testing.T) {
	end := date(2026, 12, 31)

	_, err := New("WEEKLY", 1, date(2025, 1, 1), EndNever, nil, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(FrequencyMonthly, 0, date(2025, 1, 1), EndNever, nil, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(FrequencyMonthly, 1, time.Time{}, EndNever, nil, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(FrequencyMonthly, 1, date(2025, 1, 1), EndUntilDate, nil, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(FrequencyMonthly, 1, date(2025, 1, 1), EndUntilCount, nil, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(FrequencyMonthly, 1, date(2025, 1, 1), EndNever, &end, 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	r, err := New(FrequencyQuarterly, 2, date(2025, 1, 15), EndUntilDate, &end, 0)
	require.NoError(t, err)
	require.Equal(t, 6, r.PeriodMonths())
}

func TestNextRunAtCalendarArithmetic(t *testing.T) {
	r, err := New(FrequencyMonthly, 1, date(2025, 1, 31), EndNever, nil, 0)
	require.NoError(t, err)

	require.Equal(t, date(2025, 1, 31), r.NextRunAt())

	// February clamps to its last day instead of normalizing into March.
	r.Advance()
	require.Equal(t, date(2025, 2, 28), r.NextRunAt())

	// The anchor day is preserved once the month is long enough again.
	r.Advance()
	require.Equal(t, date(2025, 3, 31), r.NextRunAt())
}

func TestNextRunAtQuarterly(t *testing.T) {
	r, err := New(FrequencyQuarterly, 1, date(2025, 11, 30), EndNever, nil, 0)
	require.NoError(t, err)
	r.Advance()
	require.Equal(t, date(2026, 2, 28), r.NextRunAt())
}

func TestIsRunnableUntilCount(t *testing.T) {
	r, err := New(FrequencyMonthly, 1, date(2025, 1, 1), EndUntilCount, nil, 3)
	require.NoError(t, err)

	now := date(2025, 6, 1)
	for i := 0; i < 3; i++ {
		require.True(t, r.IsRunnable(now, false), "generation %d", i)
		r.Advance()
	}
	require.False(t, r.IsRunnable(now, false))
	require.False(t, r.IsRunnable(now, true), "forced generation cannot beat an exhausted count")
}

func TestIsRunnableUntilDate(t *testing.T) {
	end := date(2025, 3, 1)
	r, err := New(FrequencyMonthly, 1, date(2025, 1, 1), EndUntilDate, &end, 0)
	require.NoError(t, err)

	now := date(2025, 12, 1)
	require.True(t, r.IsRunnable(now, false)) // 2025-01-01
	r.Advance()
	require.True(t, r.IsRunnable(now, false)) // 2025-02-01
	r.Advance()
	require.True(t, r.IsRunnable(now, false)) // 2025-03-01, on the boundary
	r.Advance()
	require.False(t, r.IsRunnable(now, false)) // 2025-04-01 past end date
}

func TestIsRunnableWaitsForNextRun(t *testing.T) {
	r, err := New(FrequencyMonthly, 1, date(2025, 6, 15), EndNever, nil, 0)
	require.NoError(t, err)

	before := date(2025, 6, 1)
	require.False(t, r.IsRunnable(before, false))
	require.True(t, r.IsRunnable(before, true), "operator override runs early")
	require.True(t, r.IsRunnable(date(2025, 6, 15), false))
	require.True(t, r.IsRunnable(date(2025, 7, 1), false))
}
