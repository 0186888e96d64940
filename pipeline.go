// Package vintages reconstructs the revision history of a repeatedly
// re-released monthly statistic and forecasts its most current vintage.
// Parsed snapshots flow through consolidation, canonical series selection,
// stationarity and dependence diagnostics, and a fixed-order ARIMA
// forecast.
package vintages

import (
	"fmt"
	"log/slog"

	"github.com/oluski/go-vintages/arima"
	"github.com/oluski/go-vintages/revision"
	"github.com/oluski/go-vintages/snapshot"
	"github.com/oluski/go-vintages/stats"
)

// Pipeline runs the consolidation and forecast stages over a batch of
// parsed snapshots. Every run recomputes the canonical series and forecast
// from scratch, there is no incremental state.
type Pipeline struct {
	opt *Options
}

// New creates a Pipeline with the provided options. If none are provided a
// default is used.
func New(opt *Options) *Pipeline {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Pipeline{opt: opt}
}

// Run consolidates the parsed snapshots, derives the canonical series, and
// fits the forecast. An empty revision table or a canonical series shorter
// than the model order requires halt the run with a typed error. The
// diagnostics are surfaced in the results but never gate the forecast.
func (p *Pipeline) Run(tables []*snapshot.Table) (*Results, error) {
	table, err := revision.Consolidate(tables)
	if err != nil {
		return nil, err
	}

	canonical, err := table.Canonical()
	if err != nil {
		return nil, err
	}
	slog.Info("built canonical series", slog.String("series", canonical.String()))

	res := &Results{
		Revision:  table,
		Canonical: canonical,
	}

	// diagnostics operate on the longest trailing gap-free window, the
	// same window the model is fitted on
	window, _, err := canonical.TrailingRun()
	if err != nil {
		return nil, fmt.Errorf("canonical series has no usable trailing window, %w", err)
	}

	p.diagnose(res, window)

	model := arima.New(p.opt.Order)
	if err := model.Fit(window); err != nil {
		return nil, fmt.Errorf("unable to fit %s on canonical series, %w", p.opt.Order, err)
	}

	if lb, err := stats.LjungBox(model.Residuals(), p.opt.LjungBoxLag, p.opt.Order.P+p.opt.Order.Q); err != nil {
		slog.Warn("ljung-box test unavailable", slog.String("error", err.Error()))
	} else {
		res.LjungBox = lb
		slog.Info("ljung-box on fit residuals",
			slog.Float64("statistic", lb.Statistic),
			slog.Float64("p_value", lb.PValue),
			slog.Int("lag", lb.Lag))
	}

	fc, err := model.Forecast(p.opt.Horizon, p.opt.Confidence)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast %d months ahead, %w", p.opt.Horizon, err)
	}
	res.Forecast = fc
	res.Months = canonical.NextMonths(p.opt.Horizon)
	return res, nil
}

// diagnose fills the unit-root and correlogram diagnostics. Failures here
// are logged and leave the corresponding field empty, they never stop the
// run.
func (p *Pipeline) diagnose(res *Results, window []float64) {
	if adf, err := stats.ADF(window, 0); err != nil {
		slog.Warn("ADF test unavailable", slog.String("error", err.Error()))
	} else {
		res.Stationarity = adf
		slog.Info("ADF on canonical series",
			slog.Float64("statistic", adf.Statistic),
			slog.Float64("p_value", adf.PValue))
	}

	if len(window) < 2 {
		return
	}
	diffed := make([]float64, len(window)-1)
	for i := 1; i < len(window); i++ {
		diffed[i-1] = window[i] - window[i-1]
	}

	if acf, err := stats.ACF(diffed, p.opt.ACFLags); err != nil {
		slog.Warn("ACF unavailable", slog.String("error", err.Error()))
	} else {
		res.ACF = acf
	}
	if pacf, err := stats.PACF(diffed, p.opt.ACFLags); err != nil {
		slog.Warn("PACF unavailable", slog.String("error", err.Error()))
	} else {
		res.PACF = pacf
	}
}
