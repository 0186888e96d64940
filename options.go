package vintages

import "github.com/oluski/go-vintages/arima"

// Options configures a pipeline run. Model order is a fixed configuration,
// it is never selected from the diagnostics.
type Options struct {
	Order       arima.Order
	Horizon     int
	Confidence  float64
	ACFLags     int
	LjungBoxLag int
}

// NewDefaultOptions returns the defaults used by the published analysis:
// ARIMA(1,1,1), a six month horizon, 95% intervals, correlograms to lag 20,
// and the portmanteau test at lag 10.
func NewDefaultOptions() *Options {
	return &Options{
		Order:       arima.Order{P: 1, D: 1, Q: 1},
		Horizon:     6,
		Confidence:  0.95,
		ACFLags:     20,
		LjungBoxLag: 10,
	}
}
