package perfforesight

import (
	"errors"
	"math"
	"testing"
)

// Baseline parameterization used throughout: beta=0.96, R=1.03, rho=2, Gamma=1.01.
func baseline() Params {
	return Params{DiscFac: 0.96, Rfree: 1.03, CRRA: 2.0, PermGroFac: 1.01}
}

func TestSolveBaseline(t *testing.T) {
	sol, err := Solve(baseline())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	wantPatience := math.Sqrt(1.03 * 0.96)
	wantMPC := 1 - wantPatience/1.03
	if math.Abs(sol.MPC-wantMPC) > 1e-12 {
		t.Errorf("MPC = %v, want %v", sol.MPC, wantMPC)
	}

	wantH := 1.03 / (1.03 - 1.01)
	if math.Abs(sol.HumanWealth-wantH) > 1e-12 {
		t.Errorf("HumanWealth = %v, want %v", sol.HumanWealth, wantH)
	}

	// Consumption is zero exactly at the natural borrowing constraint
	if c := sol.Consumption(sol.MinM); math.Abs(c) > 1e-12 {
		t.Errorf("Consumption(MinM) = %v, want 0", c)
	}
}

func TestConsumptionMonotoneAndLinear(t *testing.T) {
	sol, err := Solve(baseline())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	prev := sol.Consumption(0)
	for m := 0.5; m <= 10; m += 0.5 {
		c := sol.Consumption(m)
		if c <= prev {
			t.Fatalf("consumption not increasing at m=%v: %v <= %v", m, c, prev)
		}
		prev = c
	}

	// Slope between any two points equals the MPC (linearity)
	s1 := (sol.Consumption(2) - sol.Consumption(1)) / 1.0
	s2 := (sol.Consumption(9) - sol.Consumption(4)) / 5.0
	if math.Abs(s1-s2) > 1e-12 || math.Abs(s1-sol.MPC) > 1e-12 {
		t.Errorf("slopes differ from MPC: %v, %v, MPC=%v", s1, s2, sol.MPC)
	}
}

func TestLinearizeRecoversRule(t *testing.T) {
	sol, err := Solve(baseline())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	intercept, slope, err := sol.Linearize(0, 1)
	if err != nil {
		t.Fatalf("Linearize failed: %v", err)
	}

	if math.Abs(slope-sol.MPC) > 1e-12 {
		t.Errorf("slope = %v, want MPC %v", slope, sol.MPC)
	}
	wantIntercept := sol.MPC * (sol.HumanWealth - 1)
	if math.Abs(intercept-wantIntercept) > 1e-12 {
		t.Errorf("intercept = %v, want %v", intercept, wantIntercept)
	}

	if _, _, err := sol.Linearize(2, 2); err == nil {
		t.Error("expected error for identical linearization points")
	}
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"zero discount factor", func(p *Params) { p.DiscFac = 0 }, ErrInvalidParams},
		{"negative CRRA", func(p *Params) { p.CRRA = -1 }, ErrInvalidParams},
		{"growth above interest", func(p *Params) { p.PermGroFac = 1.05 }, ErrInfiniteHumanWealth},
		{"too patient", func(p *Params) { p.DiscFac = 1.05 }, ErrReturnImpatience},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseline()
			tc.mutate(&p)
			_, err := Solve(p)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSample(t *testing.T) {
	sol, err := Solve(baseline())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	ms, cs, err := sol.Sample(0, 10, 11)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(ms) != 11 || len(cs) != 11 {
		t.Fatalf("expected 11 points, got %d/%d", len(ms), len(cs))
	}
	if ms[0] != 0 || ms[10] != 10 {
		t.Errorf("endpoints = %v, %v; want 0, 10", ms[0], ms[10])
	}
	for i, m := range ms {
		if math.Abs(cs[i]-sol.Consumption(m)) > 1e-12 {
			t.Fatalf("sample %d inconsistent with rule", i)
		}
	}

	if _, _, err := sol.Sample(5, 5, 10); err == nil {
		t.Error("expected error for empty range")
	}
	if _, _, err := sol.Sample(0, 1, 1); err == nil {
		t.Error("expected error for single point")
	}
}
