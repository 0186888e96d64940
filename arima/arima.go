// Package arima fits a fixed-order autoregressive integrated moving
// average model by conditional sum of squares and produces point and
// interval forecasts. Model order is configuration, never inferred.
package arima

import (
	"errors"
	"fmt"
	"math"

	"github.com/oluski/go-vintages/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrSeriesTooShort = errors.New("series shorter than the configured model order requires")
	ErrNonFinite      = errors.New("series contains non-finite values")
	ErrNotFitted      = errors.New("model has not been fitted")
	ErrInvalidHorizon = errors.New("forecast horizon must be at least 1")
	ErrBadConfidence  = errors.New("confidence level must be in (0, 1)")
)

const (
	maxIterations = 200
	tolerance     = 1e-7
	learningRate  = 0.01
)

// Order is the (p, d, q) specification of the model.
type Order struct {
	P int `json:"p" yaml:"p"`
	D int `json:"d" yaml:"d"`
	Q int `json:"q" yaml:"q"`
}

// MinObservations returns the smallest series length the order can be
// fitted on: the differencing order plus max(p, q) plus one.
func (o Order) MinObservations() int {
	return o.D + max(o.P, o.Q) + 1
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model is a fitted or unfitted ARIMA model.
type Model struct {
	Order     Order
	AR        []float64
	MA        []float64
	Intercept float64
	Variance  float64

	y         []float64
	diffed    []float64
	residuals []float64
	fitted    bool
}

// New creates an unfitted model with the given order.
func New(order Order) *Model {
	return &Model{
		Order: order,
		AR:    make([]float64, order.P),
		MA:    make([]float64, order.Q),
	}
}

// Fit estimates the model on y by conditional sum of squares. The input
// must be a regular, gap-free series; any NaN or Inf fails with
// ErrNonFinite, and a series shorter than the order requires fails with
// ErrSeriesTooShort rather than producing a degenerate fit.
func (m *Model) Fit(y []float64) error {
	if len(y) < m.Order.MinObservations() {
		return fmt.Errorf("%d observations for %s, need at least %d, %w",
			len(y), m.Order, m.Order.MinObservations(), ErrSeriesTooShort)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("at index %d, %w", i, ErrNonFinite)
		}
	}

	m.y = make([]float64, len(y))
	copy(m.y, y)

	diffed := m.y
	for i := 0; i < m.Order.D; i++ {
		diffed = difference(diffed)
	}
	m.diffed = diffed

	if err := m.estimate(); err != nil {
		return err
	}
	m.fitted = true
	return nil
}

// estimate runs the CSS optimization on the differenced series: AR terms
// are seeded from Yule-Walker estimates, MA terms from a small constant,
// then both are refined by gradient descent on the squared residuals.
func (m *Model) estimate() error {
	y := m.diffed
	n := len(y)
	p, q := m.Order.P, m.Order.Q

	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)
	m.Intercept = mean

	if p == 0 && q == 0 {
		m.residuals = make([]float64, n)
		var sse float64
		for i, v := range y {
			m.residuals[i] = v - mean
			sse += m.residuals[i] * m.residuals[i]
		}
		if n > 1 {
			m.Variance = sse / float64(n-1)
		}
		return nil
	}

	if p > 0 {
		if acf, err := stats.ACF(y, p); err == nil {
			if phi := levinsonDurbin(acf, p); phi != nil {
				copy(m.AR, phi)
			}
		}
	}
	for i := range m.MA {
		m.MA[i] = 0.1
	}

	start := max(p, q)
	resid := make([]float64, n)
	prevSSE := math.Inf(1)

	for iter := 0; iter < maxIterations; iter++ {
		sse := m.computeResiduals(y, resid, start)

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := start; t < n; t++ {
			for i := 0; i < p; i++ {
				arGrad[i] -= 2 * resid[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q; i++ {
				maGrad[i] -= 2 * resid[t] * resid[t-i-1]
			}
		}
		for i := 0; i < p; i++ {
			m.AR[i] = clamp(m.AR[i]-learningRate*arGrad[i]/float64(n), -0.99, 0.99)
		}
		for i := 0; i < q; i++ {
			m.MA[i] = clamp(m.MA[i]-learningRate*maGrad[i]/float64(n), -0.99, 0.99)
		}

		if math.Abs(prevSSE-sse) < tolerance {
			break
		}
		prevSSE = sse
	}

	sse := m.computeResiduals(y, resid, start)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return ErrNonFinite
	}
	m.residuals = resid

	count := n - start
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}
	return nil
}

// computeResiduals fills resid with one-step CSS residuals of the current
// parameters and returns the sum of squares over the conditioning window.
func (m *Model) computeResiduals(y, resid []float64, start int) float64 {
	var sse float64
	for t := 0; t < len(y); t++ {
		if t < start {
			resid[t] = y[t] - m.Intercept
			continue
		}
		pred := m.Intercept
		for i := 0; i < m.Order.P; i++ {
			pred += m.AR[i] * (y[t-i-1] - m.Intercept)
		}
		for i := 0; i < m.Order.Q; i++ {
			pred += m.MA[i] * resid[t-i-1]
		}
		resid[t] = y[t] - pred
		sse += resid[t] * resid[t]
	}
	return sse
}

// Residuals returns a copy of the one-step fit residuals on the
// differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// Forecast holds a point forecast with a two-sided interval per step.
// Lower <= Point <= Upper holds for every step.
type Forecast struct {
	Point      []float64 `json:"point"`
	Lower      []float64 `json:"lower"`
	Upper      []float64 `json:"upper"`
	Confidence float64   `json:"confidence"`
}

// Forecast projects the model steps ahead of the training data and builds
// a symmetric interval at the given nominal confidence (e.g. 0.95) from
// the psi-weight forecast standard errors.
func (m *Model) Forecast(steps int, confidence float64) (*Forecast, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, ErrInvalidHorizon
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, ErrBadConfidence
	}

	p, q, d := m.Order.P, m.Order.Q, m.Order.D
	n := len(m.diffed)

	extY := make([]float64, n+steps)
	copy(extY, m.diffed)
	extResid := make([]float64, n+steps)
	copy(extResid, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.AR[i] * (extY[t-i-1] - m.Intercept)
		}
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MA[i] * extResid[t-i-1]
		}
		extY[t] = pred
	}

	point := integrate(extY[n:], m.y, d)

	se := m.forecastStdErrs(steps)
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + confidence/2)

	fc := &Forecast{
		Point:      point,
		Lower:      make([]float64, steps),
		Upper:      make([]float64, steps),
		Confidence: confidence,
	}
	for h := 0; h < steps; h++ {
		if math.IsNaN(point[h]) || math.IsInf(point[h], 0) {
			return nil, ErrNonFinite
		}
		fc.Lower[h] = point[h] - z*se[h]
		fc.Upper[h] = point[h] + z*se[h]
	}
	return fc, nil
}

// forecastStdErrs returns the h-step forecast standard errors on the
// original scale. The psi weights of the ARMA part are integrated d times
// by cumulative summing, then the h-step variance is the residual variance
// times the sum of squared weights up to h-1.
func (m *Model) forecastStdErrs(steps int) []float64 {
	psi := m.psiWeights(steps)
	for i := 0; i < m.Order.D; i++ {
		for j := 1; j < len(psi); j++ {
			psi[j] += psi[j-1]
		}
	}

	se := make([]float64, steps)
	var sum float64
	for h := 0; h < steps; h++ {
		sum += psi[h] * psi[h]
		se[h] = math.Sqrt(m.Variance * sum)
	}
	return se
}

// psiWeights expands the ARMA(p, q) part into its first n moving average
// representation weights.
func (m *Model) psiWeights(n int) []float64 {
	psi := make([]float64, n)
	psi[0] = 1
	for j := 1; j < n; j++ {
		if j <= m.Order.Q {
			psi[j] = m.MA[j-1]
		}
		for i := 1; i <= m.Order.P && j-i >= 0; i++ {
			psi[j] += m.AR[i-1] * psi[j-i]
		}
	}
	return psi
}

func difference(y []float64) []float64 {
	d := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		d[i-1] = y[i] - y[i-1]
	}
	return d
}

// integrate undoes d rounds of differencing. Each undo is a cumulative sum
// anchored on the last value of the next-less-differenced series.
func integrate(forecasts, original []float64, d int) []float64 {
	levels := make([][]float64, d+1)
	levels[0] = original
	for i := 1; i <= d; i++ {
		levels[i] = difference(levels[i-1])
	}

	out := make([]float64, len(forecasts))
	copy(out, forecasts)
	for i := d - 1; i >= 0; i-- {
		last := levels[i][len(levels[i])-1]
		for j := range out {
			if j == 0 {
				out[j] += last
			} else {
				out[j] += out[j-1]
			}
		}
	}
	return out
}

// levinsonDurbin solves the Yule-Walker equations for AR starting values.
func levinsonDurbin(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}
	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		if v == 0 {
			break
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
