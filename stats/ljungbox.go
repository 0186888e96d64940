package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult holds the portmanteau test output. The null hypothesis is
// that the residuals carry no serial correlation up to the tested lag.
type LjungBoxResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lag       int     `json:"lag"`
	DOF       int     `json:"dof"`
}

// LjungBox tests residuals for leftover autocorrelation up to lag. fitdf is
// the number of parameters estimated by the model the residuals came from
// (P+Q for an ARIMA fit) and reduces the degrees of freedom.
func LjungBox(resid []float64, lag, fitdf int) (*LjungBoxResult, error) {
	n := len(resid)
	if n < 3 || lag < 1 {
		return nil, ErrSeriesTooShort
	}
	if lag >= n {
		lag = n - 1
	}

	acf, err := ACF(resid, lag)
	if err != nil {
		return nil, err
	}

	var q float64
	for k := 1; k <= lag; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lag - fitdf
	if dof < 1 {
		dof = 1
	}
	chi2 := distuv.ChiSquared{K: float64(dof)}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi2.Survival(q),
		Lag:       lag,
		DOF:       dof,
	}, nil
}
