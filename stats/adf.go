package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds the augmented Dickey-Fuller test output. The null
// hypothesis is that the series has a unit root; a small p-value is
// evidence for stationarity.
type ADFResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	NObs      int     `json:"n_obs"`
}

// ADF runs the augmented Dickey-Fuller test with a constant term on y. A
// non-positive maxLag selects the usual floor((n-1)^(1/3)) default.
func ADF(y []float64, maxLag int) (*ADFResult, error) {
	n := len(y)
	if n < 10 {
		return nil, ErrSeriesTooShort
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Cbrt(float64(n - 1))))
	}
	if maxLag >= n-2 {
		maxLag = n - 3
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = y[i] - y[i-1]
	}

	// regression: dy_t = alpha + beta*y_{t-1} + sum_i gamma_i*dy_{t-i},
	// the test statistic is the t-statistic of beta
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil, ErrSeriesTooShort
	}
	k := 2 + maxLag

	x := mat.NewDense(nObs, k, nil)
	resp := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		resp[i] = diff[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, y[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	coef, se, err := olsFit(x, resp)
	if err != nil {
		return nil, fmt.Errorf("unable to run ADF regression, %w", err)
	}
	if se[1] == 0 {
		return nil, ErrZeroVariance
	}

	tStat := coef[1] / se[1]
	return &ADFResult{
		Statistic: tStat,
		PValue:    mackinnonPValue(tStat),
		Lags:      maxLag,
		NObs:      nObs,
	}, nil
}

// olsFit solves an ordinary least squares regression returning the
// coefficients and their standard errors.
func olsFit(x *mat.Dense, y []float64) (coef, se []float64, err error) {
	n, k := x.Dims()
	if n <= k {
		return nil, nil, ErrSeriesTooShort
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, nil, fmt.Errorf("singular design matrix, %w", err)
	}

	yVec := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var sse float64
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		sse += r * r
	}
	s2 := sse / float64(n-k)

	coef = make([]float64, k)
	se = make([]float64, k)
	for i := 0; i < k; i++ {
		coef[i] = beta.AtVec(i)
		se[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}
	return coef, se, nil
}

// mackinnonPValue maps the test statistic to an approximate p-value for the
// constant-only Dickey-Fuller distribution, after MacKinnon (1994).
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}
