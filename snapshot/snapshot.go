// Package snapshot parses raw ONS vintage snapshot files. Each file is one
// re-release of the monthly vacancies series: a handful of metadata lines,
// one of which carries the release date, followed by a two column body
// mixing annual, quarterly, and monthly rows.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oluski/go-vintages/monthly"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
)

const (
	// VintageLayout is the release date layout used in ONS metadata lines.
	VintageLayout = "02-01-2006"
	// PeriodLayout is the layout of a monthly period label, e.g. "2024 Jan".
	PeriodLayout = "2006 Jan"

	releaseDateMarker = "Release date"
)

var (
	vintageRe = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	monthlyRe = regexp.MustCompile(`^\d{4} [A-Za-z]{3}$`)
)

// gbCalendar is used only to sanity check parsed release dates. ONS
// publishes on working days, so a weekend or bank holiday vintage usually
// means the wrong date was picked up.
var gbCalendar = func() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(gb.Holidays...)
	return c
}()

// Observation is a single (month, value) estimate reported by one vintage.
type Observation struct {
	Month time.Time
	Value float64
}

// Table is the parse result of one snapshot file. VintageKnown is false
// when no release date could be extracted; the observations are still
// retained but cannot take part in canonical series selection.
type Table struct {
	Source       string
	Vintage      time.Time
	VintageKnown bool
	Obs          []Observation

	// Retained and Dropped audit the monthly-format rows that survived or
	// failed value/date parsing. Rows in other period formats (quarterly,
	// annual) are not counted, they belong to a different series frequency.
	Retained int
	Dropped  int
}

// Empty reports whether the snapshot yielded no usable observations.
func (t *Table) Empty() bool {
	return len(t.Obs) == 0
}

// Parse extracts the release date and the monthly observations from one raw
// snapshot. It never fails on malformed rows, those are dropped and counted.
// A body with zero monthly rows produces an empty table, not an error.
func Parse(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshot %s, %w", source, err)
	}

	t := &Table{Source: source}
	t.Vintage, t.VintageKnown = extractVintage(records)
	if t.VintageKnown && !gbCalendar.IsWorkday(t.Vintage) {
		slog.Warn("release date falls on a non-working day",
			slog.String("source", source),
			slog.String("vintage", t.Vintage.Format(VintageLayout)))
	}

	seen := make(map[time.Time]struct{})
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		label := strings.TrimSpace(rec[0])
		if !monthlyRe.MatchString(label) {
			continue
		}

		month, merr := parsePeriod(label)
		value, verr := parseValue(rec[1])
		if merr != nil || verr != nil {
			t.Dropped++
			continue
		}
		if _, dup := seen[month]; dup {
			// duplicate month within one file, keep first
			t.Dropped++
			continue
		}
		seen[month] = struct{}{}
		t.Obs = append(t.Obs, Observation{Month: month, Value: value})
		t.Retained++
	}
	return t, nil
}

// ParseFile parses a single snapshot file.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot, %w", err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path))
}

// ParseDir parses every file in dir. Unreadable or malformed files are
// logged at warning level and skipped, they never abort the batch. Files
// yielding no observations are excluded from the result.
func ParseDir(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list snapshot directory, %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := ParseFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable snapshot", slog.String("path", name), slog.String("error", err.Error()))
			continue
		}
		if t.Empty() {
			slog.Warn("snapshot yielded no monthly observations", slog.String("path", name))
			continue
		}
		slog.Info("parsed snapshot",
			slog.String("path", name),
			slog.String("vintage", vintageLabel(t)),
			slog.Int("retained", t.Retained),
			slog.Int("dropped", t.Dropped))
		tables = append(tables, t)
	}
	return tables, nil
}

func extractVintage(records [][]string) (time.Time, bool) {
	for _, rec := range records {
		line := strings.Join(rec, ",")
		if !strings.Contains(line, releaseDateMarker) {
			continue
		}
		m := vintageRe.FindString(line)
		if m == "" {
			continue
		}
		v, err := time.Parse(VintageLayout, m)
		if err != nil {
			continue
		}
		return v, true
	}
	return time.Time{}, false
}

func parsePeriod(label string) (time.Time, error) {
	// month abbreviations arrive upper cased, e.g. "2024 JAN"
	norm := label[:5] + strings.ToUpper(label[5:6]) + strings.ToLower(label[6:])
	t, err := time.Parse(PeriodLayout, norm)
	if err != nil {
		return time.Time{}, err
	}
	return monthly.MonthStart(t), nil
}

func parseValue(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), err
	}
	return v, nil
}

func vintageLabel(t *Table) string {
	if !t.VintageKnown {
		return "unknown"
	}
	return t.Vintage.Format(VintageLayout)
}
