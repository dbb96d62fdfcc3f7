// Package perfforesight solves the infinite-horizon perfect-foresight
// consumer optimization problem in closed form. The agent knows future
// income with certainty and chooses consumption to maximize discounted
// CRRA lifetime utility subject to an intertemporal budget constraint;
// the optimal policy is linear in normalized market resources.
package perfforesight

import (
	"errors"
	"fmt"
	"math"
)

// Params are the scalar inputs of the perfect-foresight consumer model.
// All quantities are normalized by the level of permanent income.
type Params struct {
	DiscFac    float64 `json:"disc_fac"`     // time discount factor (beta)
	Rfree      float64 `json:"rfree"`        // gross risk-free interest rate (R)
	CRRA       float64 `json:"crra"`         // coefficient of relative risk aversion (rho)
	PermGroFac float64 `json:"perm_gro_fac"` // gross permanent income growth factor (Gamma)
}

var (
	// ErrInvalidParams is returned when a parameter is non-positive.
	ErrInvalidParams = errors.New("perfforesight: parameters must be positive")

	// ErrInfiniteHumanWealth is returned when income growth meets or exceeds
	// the interest rate, making the present value of future income diverge.
	ErrInfiniteHumanWealth = errors.New("perfforesight: PermGroFac must be below Rfree for finite human wealth")

	// ErrReturnImpatience is returned when the return impatience condition
	// (R*beta)^(1/rho) < R fails, so the agent never consumes out of wealth.
	ErrReturnImpatience = errors.New("perfforesight: return impatience condition violated")
)

// Solution holds the solved consumption rule. For the perfect-foresight
// consumer the rule is exactly linear: c(m) = MPC * (m - 1 + HumanWealth).
type Solution struct {
	Params

	// MPC is the marginal propensity to consume out of market resources.
	MPC float64

	// HumanWealth is the present discounted value of current and future
	// permanent income, normalized by current permanent income.
	HumanWealth float64

	// MinM is the natural borrowing constraint: the level of normalized
	// market resources at which consumption reaches zero. The agent may
	// borrow against human wealth down to this point.
	MinM float64
}

// Validate checks the parameter restrictions the closed form requires.
func (p Params) Validate() error {
	if p.DiscFac <= 0 || p.Rfree <= 0 || p.CRRA <= 0 || p.PermGroFac <= 0 {
		return ErrInvalidParams
	}
	if p.PermGroFac >= p.Rfree {
		return fmt.Errorf("%w: PermGroFac=%.4f Rfree=%.4f", ErrInfiniteHumanWealth, p.PermGroFac, p.Rfree)
	}
	patience := math.Pow(p.Rfree*p.DiscFac, 1/p.CRRA)
	if patience >= p.Rfree {
		return fmt.Errorf("%w: (R*beta)^(1/rho)=%.4f >= R=%.4f", ErrReturnImpatience, patience, p.Rfree)
	}
	return nil
}

// Solve produces the closed-form infinite-horizon solution.
//
// The absolute patience factor is Phi = (R*beta)^(1/rho). Optimal
// consumption growth equals Phi, and the budget constraint then pins
// down the marginal propensity to consume kappa = 1 - Phi/R. Human
// wealth is the geometric sum of income growing at Gamma discounted
// at R, h = R/(R-Gamma), counting the current period's unit income.
func Solve(p Params) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	patience := math.Pow(p.Rfree*p.DiscFac, 1/p.CRRA)
	mpc := 1 - patience/p.Rfree
	humanWealth := p.Rfree / (p.Rfree - p.PermGroFac)

	return &Solution{
		Params:      p,
		MPC:         mpc,
		HumanWealth: humanWealth,
		MinM:        1 - humanWealth,
	}, nil
}

// Consumption evaluates the solved consumption function at normalized
// market resources m. Below MinM the value is negative: the model
// permits borrowing only up to human wealth, and callers decide how to
// surface points outside the feasible region.
func (s *Solution) Consumption(m float64) float64 {
	return s.MPC * (m - 1 + s.HumanWealth)
}

// ConsumptionFunc returns the consumption rule as a plain scalar map,
// the shape charting and sampling code consumes.
func (s *Solution) ConsumptionFunc() func(float64) float64 {
	return s.Consumption
}

// Linearize recovers the intercept and slope of the consumption rule by
// evaluating it at two points and differencing. For the perfect-foresight
// solution this reproduces MPC and MPC*(HumanWealth-1) exactly.
func (s *Solution) Linearize(m0, m1 float64) (intercept, slope float64, err error) {
	if m0 == m1 {
		return 0, 0, errors.New("perfforesight: linearization points must differ")
	}
	c0 := s.Consumption(m0)
	c1 := s.Consumption(m1)
	slope = (c1 - c0) / (m1 - m0)
	intercept = c0 - slope*m0
	return intercept, slope, nil
}

// Sample evaluates the consumption function at n evenly spaced points on
// [mMin, mMax]. Used by the chart and API layers.
func (s *Solution) Sample(mMin, mMax float64, n int) ([]float64, []float64, error) {
	if n < 2 {
		return nil, nil, errors.New("perfforesight: need at least two sample points")
	}
	if mMax <= mMin {
		return nil, nil, errors.New("perfforesight: mMax must exceed mMin")
	}
	ms := make([]float64, n)
	cs := make([]float64, n)
	step := (mMax - mMin) / float64(n-1)
	for i := 0; i < n; i++ {
		ms[i] = mMin + float64(i)*step
		cs[i] = s.Consumption(ms[i])
	}
	return ms, cs, nil
}
