// Package monthly provides a univariate time series container on a strict
// month-start grid. Gaps in the grid are stored as explicit NaN values so
// downstream consumers always see a regular monthly frequency.
package monthly

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrNoValues = errors.New("no values in series")

// Series represents a monthly time series starting at Start with one value
// per consecutive month. Missing months hold math.NaN().
type Series struct {
	Start  time.Time
	Values []float64
}

// MonthStart truncates t to the first of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of month steps from a to b. Negative when
// b is before a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// New returns a Series starting at the month of start with the given values.
func New(start time.Time, values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return &Series{Start: MonthStart(start), Values: vals}, nil
}

// FromMap resamples a month to value mapping onto the contiguous month grid
// spanning the minimum to maximum month present. Months without an entry
// become NaN.
func FromMap(byMonth map[time.Time]float64) (*Series, error) {
	if len(byMonth) == 0 {
		return nil, ErrNoValues
	}
	var minMonth, maxMonth time.Time
	for m := range byMonth {
		m = MonthStart(m)
		if minMonth.IsZero() || m.Before(minMonth) {
			minMonth = m
		}
		if maxMonth.IsZero() || m.After(maxMonth) {
			maxMonth = m
		}
	}

	n := MonthsBetween(minMonth, maxMonth) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	for m, v := range byMonth {
		values[MonthsBetween(minMonth, MonthStart(m))] = v
	}
	return &Series{Start: minMonth, Values: values}, nil
}

// Len returns the number of months spanned by the series including gaps.
func (s *Series) Len() int {
	return len(s.Values)
}

// Month returns the month at index i.
func (s *Series) Month(i int) time.Time {
	return s.Start.AddDate(0, i, 0)
}

// End returns the last month of the series.
func (s *Series) End() time.Time {
	return s.Month(len(s.Values) - 1)
}

// Months returns the full month grid of the series.
func (s *Series) Months() []time.Time {
	months := make([]time.Time, len(s.Values))
	for i := range months {
		months[i] = s.Month(i)
	}
	return months
}

// At returns the value for a month. The second return is false when the
// month lies outside the grid or holds a gap.
func (s *Series) At(month time.Time) (float64, bool) {
	i := MonthsBetween(s.Start, MonthStart(month))
	if i < 0 || i >= len(s.Values) {
		return math.NaN(), false
	}
	v := s.Values[i]
	return v, !math.IsNaN(v)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	vals := make([]float64, len(s.Values))
	copy(vals, s.Values)
	return &Series{Start: s.Start, Values: vals}
}

// Diff returns the first difference of the values. Differences touching a
// gap are NaN.
func (s *Series) Diff() []float64 {
	if len(s.Values) < 2 {
		return nil
	}
	d := make([]float64, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		d[i-1] = s.Values[i] - s.Values[i-1]
	}
	return d
}

// TrailingRun returns the longest run of consecutive non-NaN values ending
// at the last non-NaN value, along with the month the run starts at. An
// error is returned when the series holds no usable values at all.
func (s *Series) TrailingRun() ([]float64, time.Time, error) {
	end := len(s.Values) - 1
	for end >= 0 && math.IsNaN(s.Values[end]) {
		end--
	}
	if end < 0 {
		return nil, time.Time{}, ErrNoValues
	}
	start := end
	for start > 0 && !math.IsNaN(s.Values[start-1]) {
		start--
	}
	run := make([]float64, end-start+1)
	copy(run, s.Values[start:end+1])
	return run, s.Month(start), nil
}

// NextMonths returns the h consecutive months immediately following the
// series end.
func (s *Series) NextMonths(h int) []time.Time {
	months := make([]time.Time, 0, h)
	for i := 1; i <= h; i++ {
		months = append(months, s.End().AddDate(0, i, 0))
	}
	return months
}

// Gaps returns the count of missing interior months.
func (s *Series) Gaps() int {
	var n int
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// String summarizes the series span for logging.
func (s *Series) String() string {
	return fmt.Sprintf("monthly series %s to %s (%d months, %d gaps)",
		s.Start.Format("Jan 2006"), s.End().Format("Jan 2006"), s.Len(), s.Gaps())
}
