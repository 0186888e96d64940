// Package revision holds the long-format revision table built from all
// parsed vintage snapshots, and derives the canonical series from it.
package revision

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/oluski/go-vintages/monthly"
	"github.com/oluski/go-vintages/snapshot"
)

// ErrNoData is returned when consolidation yields an empty table. This is a
// fatal condition for a run, no downstream stage can operate without data.
var ErrNoData = errors.New("no valid observations across all snapshots")

// Row is one observation of the revision table: the estimate a given
// vintage reported for a given month.
type Row struct {
	Month        time.Time
	Value        float64
	Vintage      time.Time
	VintageKnown bool
	Source       string
}

// Table is the append-only set of all observations across all vintages,
// keyed by (month, vintage). Rows are held in file-encounter order, which
// is what makes canonical selection tie-breaks stable.
type Table struct {
	Rows []Row
}

// Consolidate concatenates the observations of all parsed snapshots into a
// single long-format table. Empty snapshots are excluded silently; an empty
// union is fatal and returns ErrNoData.
func Consolidate(tables []*snapshot.Table) (*Table, error) {
	t := &Table{}
	for _, st := range tables {
		if st == nil || st.Empty() {
			continue
		}
		for _, obs := range st.Obs {
			t.Rows = append(t.Rows, Row{
				Month:        obs.Month,
				Value:        obs.Value,
				Vintage:      st.Vintage,
				VintageKnown: st.VintageKnown,
				Source:       st.Source,
			})
		}
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoData
	}
	slog.Info("consolidated revision table",
		slog.Int("rows", len(t.Rows)),
		slog.Int("snapshots", len(tables)))
	return t, nil
}

// Canonical derives the best-known-value series: for each month the row
// with the latest vintage wins, ties broken by encounter order. Rows with
// an unknown vintage are excluded from selection since latest knowledge is
// undefined without a release date. The result sits on a contiguous
// month-start grid from the earliest to the latest selected month, with
// explicit NaN gaps.
func (t *Table) Canonical() (*monthly.Series, error) {
	type pick struct {
		value   float64
		vintage time.Time
	}
	selected := make(map[time.Time]pick)
	for _, row := range t.Rows {
		if !row.VintageKnown {
			continue
		}
		cur, ok := selected[row.Month]
		if !ok || row.Vintage.After(cur.vintage) {
			selected[row.Month] = pick{value: row.Value, vintage: row.Vintage}
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoData
	}

	byMonth := make(map[time.Time]float64, len(selected))
	for m, p := range selected {
		byMonth[m] = p.value
	}
	return monthly.FromMap(byMonth)
}

// History returns the revision trajectory of a single month: every reported
// value ordered by vintage. Unknown-vintage rows are omitted, they cannot
// be placed on the vintage axis. The table itself is left untouched.
func (t *Table) History(month time.Time) []Row {
	month = monthly.MonthStart(month)
	var rows []Row
	for _, row := range t.Rows {
		if row.VintageKnown && row.Month.Equal(month) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Vintage.Before(rows[j].Vintage)
	})
	return rows
}

// Months returns the distinct observation months present in the table in
// ascending order.
func (t *Table) Months() []time.Time {
	seen := make(map[time.Time]struct{})
	var months []time.Time
	for _, row := range t.Rows {
		if _, ok := seen[row.Month]; ok {
			continue
		}
		seen[row.Month] = struct{}{}
		months = append(months, row.Month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
