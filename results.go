package vintages

import (
	"time"

	"github.com/oluski/go-vintages/arima"
	"github.com/oluski/go-vintages/monthly"
	"github.com/oluski/go-vintages/revision"
	"github.com/oluski/go-vintages/stats"
)

// Results bundles everything a pipeline run produces. The revision table
// and canonical series are the inputs the diagnostics and forecast were
// computed from, exposed read-only for exports and charting.
type Results struct {
	Revision  *revision.Table `json:"-"`
	Canonical *monthly.Series `json:"-"`

	Stationarity *stats.ADFResult      `json:"stationarity,omitempty"`
	ACF          []float64             `json:"acf,omitempty"`
	PACF         []float64             `json:"pacf,omitempty"`
	LjungBox     *stats.LjungBoxResult `json:"ljung_box,omitempty"`

	Months   []time.Time     `json:"months"`
	Forecast *arima.Forecast `json:"forecast"`
}
