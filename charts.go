package vintages

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/oluski/go-vintages/snapshot"
)

// LineRevisions generates an echart line showing how the estimate for one
// observation month changed across vintages.
func (r *Results) LineRevisions(month time.Time) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("Revisions of the estimate for %s", month.Format(MonthLabelLayout)),
			},
		),
	)

	history := r.Revision.History(month)
	vintages := make([]string, 0, len(history))
	lineData := make([]opts.LineData, 0, len(history))
	for _, row := range history {
		vintages = append(vintages, row.Vintage.Format(snapshot.VintageLayout))
		lineData = append(lineData, opts.LineData{Value: row.Value})
	}

	line.SetXAxis(vintages).
		AddSeries(month.Format(MonthLabelLayout), lineData)
	return line
}

// LineForecast generates an echart line plotting the canonical series
// followed by the forecast trajectory with its interval bounds.
func (r *Results) LineForecast() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Canonical series and forecast",
			},
		),
	)

	n := r.Canonical.Len()
	h := len(r.Months)
	axis := make([]string, 0, n+h)
	lineDataActual := make([]opts.LineData, 0, n+h)
	lineDataForecast := make([]opts.LineData, 0, n+h)
	lineDataUpper := make([]opts.LineData, 0, n+h)
	lineDataLower := make([]opts.LineData, 0, n+h)

	for i := 0; i < n; i++ {
		axis = append(axis, r.Canonical.Month(i).Format(MonthLabelLayout))
		v := r.Canonical.Values[i]
		if math.IsNaN(v) {
			lineDataActual = append(lineDataActual, opts.LineData{Value: "-"})
		} else {
			lineDataActual = append(lineDataActual, opts.LineData{Value: v})
		}
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: "-"})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: "-"})
		lineDataLower = append(lineDataLower, opts.LineData{Value: "-"})
	}
	for i := 0; i < h; i++ {
		axis = append(axis, r.Months[i].Format(MonthLabelLayout))
		lineDataActual = append(lineDataActual, opts.LineData{Value: "-"})
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: r.Forecast.Point[i]})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: r.Forecast.Upper[i]})
		lineDataLower = append(lineDataLower, opts.LineData{Value: r.Forecast.Lower[i]})
	}

	line.SetXAxis(axis).
		AddSeries("Actual", lineDataActual).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

// BarCorrelogram generates a grouped bar chart of the ACF and PACF of the
// differenced canonical series.
func (r *Results) BarCorrelogram() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "ACF and PACF of differenced series",
			},
		),
	)

	lags := make([]int, len(r.ACF))
	acfData := make([]opts.BarData, 0, len(r.ACF))
	pacfData := make([]opts.BarData, 0, len(r.PACF))
	for i := range r.ACF {
		lags[i] = i
		acfData = append(acfData, opts.BarData{Value: r.ACF[i]})
	}
	for i := range r.PACF {
		pacfData = append(pacfData, opts.BarData{Value: r.PACF[i]})
	}

	bar.SetXAxis(lags).
		AddSeries("ACF", acfData).
		AddSeries("PACF", pacfData)
	return bar
}

// WriteReport renders the revision, correlogram, and forecast charts into a
// single html file. revisionMonth selects which month's revision history to
// show.
func (r *Results) WriteReport(path string, revisionMonth time.Time) error {
	page := components.NewPage()
	page.AddCharts(
		r.LineRevisions(revisionMonth),
		r.BarCorrelogram(),
		r.LineForecast(),
	)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
