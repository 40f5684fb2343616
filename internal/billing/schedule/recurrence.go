// Package schedule computes when a recurring invoice seed is due to generate
// its next occurrence.
package schedule

import (
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// Frequency enumerates recurrence period bases.
type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

// EndStrategy enumerates recurrence end conditions.
type EndStrategy string

const (
	EndNever      EndStrategy = "NEVER"
	EndUntilDate  EndStrategy = "UNTIL_DATE"
	EndUntilCount EndStrategy = "UNTIL_COUNT"
)

// Recurrence describes periodic re-generation of an invoice from a seed.
// NextRunAt is derived from the anchor date and the generated count; it is
// advanced only as a side effect of successful derivation.
type Recurrence struct {
	Frequency       Frequency   `json:"frequency"`
	Interval        int         `json:"interval"`
	AnchorDate      time.Time   `json:"anchor_date"`
	EndStrategy     EndStrategy `json:"end_strategy"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	OccurrenceCount int         `json:"occurrence_count,omitempty"`
	GeneratedCount  int         `json:"generated_count"`
}

// New validates and builds a recurrence.
func New(frequency Frequency, interval int, anchor time.Time, end EndStrategy, endDate *time.Time, occurrenceCount int) (*Recurrence, error) {
	switch frequency {
	case FrequencyMonthly, FrequencyQuarterly:
	default:
		return nil, fmt.Errorf("%w: unknown frequency %q", shared.ErrValidation, frequency)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", shared.ErrValidation)
	}
	if anchor.IsZero() {
		return nil, fmt.Errorf("%w: anchor date required", shared.ErrValidation)
	}
	switch end {
	case EndNever:
		if endDate != nil || occurrenceCount != 0 {
			return nil, fmt.Errorf("%w: NEVER takes neither end date nor occurrence count", shared.ErrValidation)
		}
	case EndUntilDate:
		if endDate == nil {
			return nil, fmt.Errorf("%w: UNTIL_DATE requires an end date", shared.ErrValidation)
		}
		if occurrenceCount != 0 {
			return nil, fmt.Errorf("%w: UNTIL_DATE takes no occurrence count", shared.ErrValidation)
		}
	case EndUntilCount:
		if occurrenceCount <= 0 {
			return nil, fmt.Errorf("%w: UNTIL_COUNT requires a positive occurrence count", shared.ErrValidation)
		}
		if endDate != nil {
			return nil, fmt.Errorf("%w: UNTIL_COUNT takes no end date", shared.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown end strategy %q", shared.ErrValidation, end)
	}
	return &Recurrence{
		Frequency:       frequency,
		Interval:        interval,
		AnchorDate:      anchor,
		EndStrategy:     end,
		EndDate:         endDate,
		OccurrenceCount: occurrenceCount,
	}, nil
}

// PeriodMonths returns the period length in calendar months.
func (r *Recurrence) PeriodMonths() int {
	base := 1
	if r.Frequency == FrequencyQuarterly {
		base = 3
	}
	return base * r.Interval
}

// NextRunAt returns the anchor date advanced by GeneratedCount periods.
func (r *Recurrence) NextRunAt() time.Time {
	return addMonthsClamped(r.AnchorDate, r.GeneratedCount*r.PeriodMonths())
}

// Exhausted reports whether the end strategy forbids further occurrences.
func (r *Recurrence) Exhausted() bool {
	switch r.EndStrategy {
	case EndUntilDate:
		return r.EndDate != nil && r.NextRunAt().After(*r.EndDate)
	case EndUntilCount:
		return r.GeneratedCount >= r.OccurrenceCount
	default:
		return false
	}
}

// IsRunnable reports whether an occurrence may be generated now.
// allowBeforeNextRun is the operator escape hatch for forced generation;
// scheduled runs pass false and wait for NextRunAt.
func (r *Recurrence) IsRunnable(now time.Time, allowBeforeNextRun bool) bool {
	if r == nil || r.Exhausted() {
		return false
	}
	return allowBeforeNextRun || !now.Before(r.NextRunAt())
}

// Advance records a generated occurrence, moving NextRunAt one period
// forward. Callers invoke it only after the derived invoice is saved.
func (r *Recurrence) Advance() {
	r.GeneratedCount++
}

// addMonthsClamped adds calendar months preserving the day-of-month where
// valid and clamping to the end of the target month otherwise. time.AddDate
// normalizes overflow (Jan 31 + 1 month = Mar 3), which is not what invoice
// schedules want.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
