// Package regression implements ordinary least squares estimation on
// small design matrices. It covers exactly what the theory comparisons
// need: coefficients, standard errors and R-squared.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Result holds the output of an OLS fit. Coefficients are ordered as the
// design matrix columns, intercept first when Design built the matrix.
type Result struct {
	Coefficients []float64
	StdErrors    []float64
	Residuals    []float64
	R2           float64
	N            int // observations
	K            int // regressors including intercept
}

var (
	// ErrDimensionMismatch is returned when inputs disagree on length.
	ErrDimensionMismatch = errors.New("regression: dimension mismatch")

	// ErrTooFewObservations is returned when n <= k.
	ErrTooFewObservations = errors.New("regression: more regressors than observations")
)

// Design builds an n x (1+len(cols)) design matrix with a leading
// intercept column of ones. All columns must share the same length.
func Design(cols ...[]float64) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, errors.New("regression: no regressor columns")
	}
	n := len(cols[0])
	for i, col := range cols {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %d has %d rows, want %d", ErrDimensionMismatch, i, len(col), n)
		}
	}

	X := mat.NewDense(n, 1+len(cols), nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, col := range cols {
			X.Set(i, j+1, col[i])
		}
	}
	return X, nil
}

// OLS fits y = X*beta by least squares and returns coefficient estimates,
// their standard errors, residuals and R-squared.
func OLS(y []float64, X *mat.Dense) (*Result, error) {
	n, k := X.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d observations, design has %d rows", ErrDimensionMismatch, len(y), n)
	}
	if n <= k {
		return nil, fmt.Errorf("%w: n=%d k=%d", ErrTooFewObservations, n, k)
	}

	yVec := mat.NewDense(n, 1, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(X)

	var betaM mat.Dense
	if err := qr.SolveTo(&betaM, false, yVec); err != nil {
		return nil, fmt.Errorf("regression: singular design matrix: %w", err)
	}

	beta := make([]float64, k)
	for j := 0; j < k; j++ {
		beta[j] = betaM.At(j, 0)
	}

	// Residuals and sums of squares
	var fitted mat.Dense
	fitted.Mul(X, &betaM)

	residuals := make([]float64, n)
	meanY := stat.Mean(y, nil)
	var ssr, sst float64
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - fitted.At(i, 0)
		ssr += residuals[i] * residuals[i]
		dev := y[i] - meanY
		sst += dev * dev
	}

	r2 := 0.0
	if sst > 0 {
		r2 = 1 - ssr/sst
	}

	// Coefficient standard errors from sigma^2 * (X'X)^-1
	sigma2 := ssr / float64(n-k)
	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	stdErrors := make([]float64, k)
	if err := xtxInv.Inverse(&xtx); err == nil {
		for j := 0; j < k; j++ {
			stdErrors[j] = math.Sqrt(sigma2 * xtxInv.At(j, j))
		}
	}

	return &Result{
		Coefficients: beta,
		StdErrors:    stdErrors,
		Residuals:    residuals,
		R2:           r2,
		N:            n,
		K:            k,
	}, nil
}

// SimpleOLS fits y = intercept + slope*x, the two-variable case the
// Keynes comparison starts from.
func SimpleOLS(x, y []float64) (intercept, slope float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("%w: x has %d, y has %d", ErrDimensionMismatch, len(x), len(y))
	}
	if len(x) < 3 {
		return 0, 0, ErrTooFewObservations
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return intercept, slope, nil
}
