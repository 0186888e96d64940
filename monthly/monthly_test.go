package monthly

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, time.February, 17, 13, 4, 5, 0, time.UTC))
	assert.Equal(t, month(2024, time.February), got)
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(month(2024, time.January), month(2024, time.January)))
	assert.Equal(t, 13, MonthsBetween(month(2023, time.December), month(2025, time.January)))
	assert.Equal(t, -1, MonthsBetween(month(2024, time.February), month(2024, time.January)))
}

func TestFromMapResamplesOntoContiguousGrid(t *testing.T) {
	s, err := FromMap(map[time.Time]float64{
		month(2024, time.January): 100,
		month(2024, time.April):   104,
		month(2024, time.March):   103,
	})
	require.NoError(t, err)

	assert.Equal(t, month(2024, time.January), s.Start)
	assert.Equal(t, month(2024, time.April), s.End())
	require.Equal(t, 4, s.Len())

	assert.Equal(t, 100.0, s.Values[0])
	assert.True(t, math.IsNaN(s.Values[1]), "missing month must be an explicit NaN")
	assert.Equal(t, 103.0, s.Values[2])
	assert.Equal(t, 104.0, s.Values[3])
	assert.Equal(t, 1, s.Gaps())
}

func TestFromMapEmpty(t *testing.T) {
	_, err := FromMap(nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestAt(t *testing.T) {
	s, err := FromMap(map[time.Time]float64{
		month(2024, time.January): 100,
		month(2024, time.March):   103,
	})
	require.NoError(t, err)

	v, ok := s.At(month(2024, time.January))
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = s.At(month(2024, time.February))
	assert.False(t, ok, "gap month reports no value")

	_, ok = s.At(month(2023, time.December))
	assert.False(t, ok, "month before the grid reports no value")
}

func TestDiff(t *testing.T) {
	s, err := New(month(2024, time.January), []float64{100, 102, 105})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, s.Diff())
}

func TestTrailingRun(t *testing.T) {
	s, err := New(month(2024, time.January), []float64{1, math.NaN(), 3, 4, 5})
	require.NoError(t, err)

	run, start, err := s.TrailingRun()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, run)
	assert.Equal(t, month(2024, time.March), start)
}

func TestTrailingRunAllMissing(t *testing.T) {
	s, err := New(month(2024, time.January), []float64{math.NaN(), math.NaN()})
	require.NoError(t, err)

	_, _, err = s.TrailingRun()
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestNextMonths(t *testing.T) {
	s, err := New(month(2024, time.November), []float64{1, 2})
	require.NoError(t, err)

	next := s.NextMonths(3)
	require.Len(t, next, 3)
	assert.Equal(t, month(2025, time.January), next[0])
	assert.Equal(t, month(2025, time.February), next[1])
	assert.Equal(t, month(2025, time.March), next[2])
}
