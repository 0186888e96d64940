package vintages

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/oluski/go-vintages/arima"
	"github.com/oluski/go-vintages/revision"
	"github.com/oluski/go-vintages/snapshot"
)

// MonthLabelLayout is the human readable month label used in exports.
const MonthLabelLayout = "Jan 2006"

var ErrBadExportRow = errors.New("malformed export row")

// WriteRevisionCSV writes the revision table as semicolon separated UTF-8
// with one row per (month, vintage) pair. An unknown vintage exports as an
// empty vintage field.
func WriteRevisionCSV(w io.Writer, t *revision.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Month", "Value", "Vintage"}); err != nil {
		return err
	}
	for _, row := range t.Rows {
		var vintage string
		if row.VintageKnown {
			vintage = row.Vintage.Format(snapshot.VintageLayout)
		}
		rec := []string{
			row.Month.Format(MonthLabelLayout),
			formatValue(row.Value),
			vintage,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRevisionCSV parses a revision export back into a table.
func ReadRevisionCSV(r io.Reader) (*revision.Table, error) {
	records, err := readDelimited(r, 3)
	if err != nil {
		return nil, err
	}

	t := &revision.Table{}
	for _, rec := range records {
		month, err := time.Parse(MonthLabelLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("month %q, %w", rec[0], ErrBadExportRow)
		}
		value, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("value %q, %w", rec[1], ErrBadExportRow)
		}
		row := revision.Row{Month: month, Value: value}
		if rec[2] != "" {
			vintage, err := time.Parse(snapshot.VintageLayout, rec[2])
			if err != nil {
				return nil, fmt.Errorf("vintage %q, %w", rec[2], ErrBadExportRow)
			}
			row.Vintage = vintage
			row.VintageKnown = true
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteForecastCSV writes one row per horizon step with the point forecast
// and its interval bounds.
func WriteForecastCSV(w io.Writer, months []time.Time, fc *arima.Forecast) error {
	if len(months) != len(fc.Point) {
		return fmt.Errorf("%d months for %d forecast steps, %w", len(months), len(fc.Point), ErrBadExportRow)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Month", "Forecast", "Lower", "Upper"}); err != nil {
		return err
	}
	for i := range months {
		rec := []string{
			months[i].Format(MonthLabelLayout),
			formatValue(fc.Point[i]),
			formatValue(fc.Lower[i]),
			formatValue(fc.Upper[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadForecastCSV parses a forecast export back into its months and values.
func ReadForecastCSV(r io.Reader) ([]time.Time, *arima.Forecast, error) {
	records, err := readDelimited(r, 4)
	if err != nil {
		return nil, nil, err
	}

	months := make([]time.Time, 0, len(records))
	fc := &arima.Forecast{}
	for _, rec := range records {
		month, err := time.Parse(MonthLabelLayout, rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("month %q, %w", rec[0], ErrBadExportRow)
		}
		vals := make([]float64, 3)
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("value %q, %w", rec[i+1], ErrBadExportRow)
			}
			vals[i] = v
		}
		months = append(months, month)
		fc.Point = append(fc.Point, vals[0])
		fc.Lower = append(fc.Lower, vals[1])
		fc.Upper = append(fc.Upper, vals[2])
	}
	return months, fc, nil
}

// WriteResultsJSON dumps the diagnostics and forecast as indented JSON.
func WriteResultsJSON(w io.Writer, res *Results) error {
	bytes, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(bytes)
	return err
}

func readDelimited(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read export, %w", err)
	}
	if len(records) == 0 {
		return nil, ErrBadExportRow
	}
	for i, rec := range records[1:] {
		if len(rec) != fields {
			return nil, fmt.Errorf("row %d has %d fields, %w", i+1, len(rec), ErrBadExportRow)
		}
	}
	return records[1:], nil
}

// formatValue renders a float with the shortest representation that parses
// back to the identical value.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
