package theory

import (
	"fmt"
	"time"

	"github.com/alanlujan91/DemARK/internal/models"
)

// Align intersects two series on observation date and returns the
// matched dates and values. Both inputs must be date-ascending, which
// the fred client guarantees.
func Align(consumption, income []models.Observation) (dates []time.Time, c, y []float64) {
	i, j := 0, 0
	for i < len(consumption) && j < len(income) {
		ci, yj := consumption[i].Date, income[j].Date
		switch {
		case ci.Equal(yj):
			dates = append(dates, ci)
			c = append(c, consumption[i].Value)
			y = append(y, income[j].Value)
			i++
			j++
		case ci.Before(yj):
			i++
		default:
			j++
		}
	}
	return dates, c, y
}

// PriorPeak returns, for each t >= 1, the maximum of y[0..t-1]. The
// first observation has no prior peak and is dropped; the result has
// length len(y)-1 and lines up with y[1:].
func PriorPeak(y []float64) []float64 {
	if len(y) < 2 {
		return nil
	}
	peaks := make([]float64, len(y)-1)
	peak := y[0]
	for t := 1; t < len(y); t++ {
		peaks[t-1] = peak
		if y[t] > peak {
			peak = y[t]
		}
	}
	return peaks
}

// LagMatrix builds the distributed-lag columns Y_{t}, Y_{t-1}, ...,
// Y_{t-lags+1} for t = lags-1 .. len(y)-1. Column i holds lag i.
func LagMatrix(y []float64, lags int) ([][]float64, error) {
	if lags < 1 {
		return nil, fmt.Errorf("theory: lags must be at least 1, got %d", lags)
	}
	if len(y) <= lags {
		return nil, fmt.Errorf("theory: need more than %d observations for %d lags, got %d", lags, lags, len(y))
	}

	rows := len(y) - lags + 1
	cols := make([][]float64, lags)
	for i := 0; i < lags; i++ {
		cols[i] = make([]float64, rows)
		for t := 0; t < rows; t++ {
			cols[i][t] = y[t+lags-1-i]
		}
	}
	return cols, nil
}
