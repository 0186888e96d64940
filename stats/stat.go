// Package stats implements the stationarity and serial-dependence
// diagnostics used on the canonical series: the augmented Dickey-Fuller
// unit-root test, autocorrelation and partial autocorrelation, and the
// Ljung-Box portmanteau test.
package stats

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrSeriesTooShort = errors.New("series too short for diagnostic")
	ErrZeroVariance   = errors.New("series has zero variance")
)

// ACF returns the autocorrelation of y for lags 0 through maxLag.
func ACF(y []float64, maxLag int) ([]float64, error) {
	n := len(y)
	if n < 2 {
		return nil, ErrSeriesTooShort
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(y, nil)
	var variance float64
	for _, v := range y {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil, ErrZeroVariance
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		var sum float64
		for i := k; i < n; i++ {
			sum += (y[i] - mean) * (y[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf, nil
}

// PACF returns the partial autocorrelation of y for lags 0 through maxLag
// using the Durbin-Levinson recursion. Lag 0 is always 1.
func PACF(y []float64, maxLag int) ([]float64, error) {
	n := len(y)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil, ErrSeriesTooShort
	}

	acf, err := ACF(y, maxLag)
	if err != nil {
		return nil, err
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1.0

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}
	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}
		if den == 0 {
			pacf[k] = 0
			continue
		}
		phi[k][k] = num / den
		pacf[k] = phi[k][k]
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}
	return pacf, nil
}
