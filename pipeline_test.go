package vintages

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/oluski/go-vintages/arima"
	"github.com/oluski/go-vintages/revision"
	"github.com/oluski/go-vintages/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSnapshot renders a raw vintage file with a release date and monthly
// rows starting at startMonth.
func buildSnapshot(t *testing.T, vintage string, startMonth time.Time, values []float64) *snapshot.Table {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("\"Title\",\"UK Vacancies (thousands)\"\n")
	fmt.Fprintf(&sb, "%q,%q\n", "Release date", vintage)
	sb.WriteString("\"2023 Q4\",\"930\"\n")
	for i, v := range values {
		m := startMonth.AddDate(0, i, 0)
		fmt.Fprintf(&sb, "%q,%q\n", strings.ToUpper(m.Format("2006 Jan")), fmt.Sprintf("%g", v))
	}

	table, err := snapshot.Parse(strings.NewReader(sb.String()), "v-"+vintage+".csv")
	require.NoError(t, err)
	require.True(t, table.VintageKnown)
	return table
}

// trendValues builds a trending series with a deterministic wiggle so the
// diagnostics regressions are well conditioned.
func trendValues(n int, start, slope float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = start + slope*float64(i) + 3*math.Sin(float64(i))
	}
	return y
}

func TestPipelineEndToEnd(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	// first vintage covers 24 months; the second re-releases the same
	// span a month later with January 2023 revised upward
	first := trendValues(24, 800, 4)
	second := trendValues(24, 800, 4)
	second[0] = 806

	tables := []*snapshot.Table{
		buildSnapshot(t, "10-01-2025", start, first),
		buildSnapshot(t, "10-02-2025", start, second),
	}

	p := New(nil)
	res, err := p.Run(tables)
	require.NoError(t, err)

	assert.Len(t, res.Revision.Rows, 48, "revision table keeps every (month, vintage) pair")

	v, ok := res.Canonical.At(start)
	require.True(t, ok)
	assert.Equal(t, 806.0, v, "later vintage supersedes the first estimate")

	require.NotNil(t, res.Forecast)
	require.Len(t, res.Months, 6)
	require.Len(t, res.Forecast.Point, 6)

	next := res.Canonical.End().AddDate(0, 1, 0)
	for i, m := range res.Months {
		assert.Equal(t, next.AddDate(0, i, 0), m, "forecast months are the exact monthly continuation")
	}
	for i := range res.Forecast.Point {
		assert.False(t, math.IsNaN(res.Forecast.Point[i]))
		assert.LessOrEqual(t, res.Forecast.Lower[i], res.Forecast.Point[i])
		assert.LessOrEqual(t, res.Forecast.Point[i], res.Forecast.Upper[i])
	}

	require.NotNil(t, res.Stationarity)
	assert.GreaterOrEqual(t, res.Stationarity.PValue, 0.0)
	assert.LessOrEqual(t, res.Stationarity.PValue, 1.0)
	require.NotEmpty(t, res.ACF)
	assert.Equal(t, 1.0, res.ACF[0])
	require.NotNil(t, res.LjungBox)
}

func TestPipelineQuarterlyOnlySnapshotTolerated(t *testing.T) {
	quarterlyOnly, err := snapshot.Parse(strings.NewReader(
		"\"Release date\",\"10-01-2025\"\n\"2024 Q4\",\"915\"\n"), "vq.csv")
	require.NoError(t, err)
	require.True(t, quarterlyOnly.Empty())

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	good := buildSnapshot(t, "10-01-2025", start, trendValues(24, 800, 4))

	p := New(nil)
	res, err := p.Run([]*snapshot.Table{quarterlyOnly, good})
	require.NoError(t, err)
	assert.Len(t, res.Revision.Rows, 24)
}

func TestPipelineNoDataIsFatal(t *testing.T) {
	p := New(nil)
	_, err := p.Run(nil)
	assert.ErrorIs(t, err, revision.ErrNoData)

	quarterlyOnly, perr := snapshot.Parse(strings.NewReader(
		"\"Release date\",\"10-01-2025\"\n\"2024 Q4\",\"915\"\n"), "vq.csv")
	require.NoError(t, perr)

	_, err = p.Run([]*snapshot.Table{quarterlyOnly})
	assert.ErrorIs(t, err, revision.ErrNoData)
}

func TestPipelineShortSeriesIsFatal(t *testing.T) {
	start := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	short := buildSnapshot(t, "10-01-2025", start, []float64{900, 902})

	p := New(nil)
	_, err := p.Run([]*snapshot.Table{short})
	assert.ErrorIs(t, err, arima.ErrSeriesTooShort)
}

func TestPipelineCustomOrder(t *testing.T) {
	// the MA-free variant stays available as plain configuration
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	tables := []*snapshot.Table{buildSnapshot(t, "10-01-2025", start, trendValues(30, 700, 3))}

	p := New(&Options{
		Order:       arima.Order{P: 1, D: 1, Q: 0},
		Horizon:     3,
		Confidence:  0.9,
		ACFLags:     20,
		LjungBoxLag: 10,
	})
	res, err := p.Run(tables)
	require.NoError(t, err)
	assert.Len(t, res.Forecast.Point, 3)
	assert.Equal(t, 0.9, res.Forecast.Confidence)
}
