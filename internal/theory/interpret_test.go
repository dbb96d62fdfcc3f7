package theory

import (
	"strings"
	"testing"

	"github.com/alanlujan91/DemARK/internal/models"
)

func findingNames(fs []models.Finding) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

func hasFinding(fs []models.Finding, name string) bool {
	for _, f := range fs {
		if f.Name == name {
			return true
		}
	}
	return false
}

func TestInterpretKeynes(t *testing.T) {
	a := &models.Analysis{
		Kind: models.KindKeynes,
		Coefficients: []models.Coefficient{
			{Name: "intercept", Value: 250},
			{Name: "mpc", Value: 0.62},
		},
		R2: 0.98,
		N:  260,
	}

	findings := Interpret(a)
	if !hasFinding(findings, "Keynesian MPC") {
		t.Errorf("missing Keynesian MPC finding, got %v", findingNames(findings))
	}
	if !hasFinding(findings, "Autonomous consumption") {
		t.Errorf("missing autonomous consumption finding, got %v", findingNames(findings))
	}
	if !hasFinding(findings, "Goodness of fit") {
		t.Error("missing goodness of fit finding")
	}
}

func TestInterpretKeynesBadMPC(t *testing.T) {
	a := &models.Analysis{
		Kind: models.KindKeynes,
		Coefficients: []models.Coefficient{
			{Name: "intercept", Value: -10},
			{Name: "mpc", Value: 1.2},
		},
	}

	findings := Interpret(a)
	if !hasFinding(findings, "MPC outside unit interval") {
		t.Errorf("expected out-of-range MPC finding, got %v", findingNames(findings))
	}
	if hasFinding(findings, "Autonomous consumption") {
		t.Error("negative intercept should not yield autonomous consumption finding")
	}
}

func TestInterpretDuesenberry(t *testing.T) {
	a := &models.Analysis{
		Kind: models.KindDuesenberry,
		Coefficients: []models.Coefficient{
			{Name: "intercept", Value: 50},
			{Name: "mpc", Value: 0.5},
			{Name: "ratchet", Value: 0.21},
		},
	}

	findings := Interpret(a)
	if !hasFinding(findings, "Ratchet effect") {
		t.Errorf("expected ratchet finding, got %v", findingNames(findings))
	}
}

func TestInterpretFriedman(t *testing.T) {
	a := &models.Analysis{
		Kind: models.KindFriedman,
		Coefficients: []models.Coefficient{
			{Name: "intercept", Value: 100},
			{Name: "y_lag0", Value: 0.2},
			{Name: "y_lag1", Value: 0.2},
			{Name: "y_lag2", Value: 0.2},
			{Name: "y_lag3", Value: 0.2},
		},
	}

	findings := Interpret(a)
	if !hasFinding(findings, "Permanent income smoothing") {
		t.Errorf("expected smoothing finding, got %v", findingNames(findings))
	}

	// Sanity: descriptions mention the lag structure, not internals
	for _, f := range findings {
		if strings.Contains(f.Description, "%!") {
			t.Errorf("malformed description: %q", f.Description)
		}
	}
}

func TestInterpretFriedmanCurrentIncomeOnly(t *testing.T) {
	a := &models.Analysis{
		Kind: models.KindFriedman,
		Coefficients: []models.Coefficient{
			{Name: "intercept", Value: 100},
			{Name: "y_lag0", Value: 0.58},
			{Name: "y_lag1", Value: 0.01},
			{Name: "y_lag2", Value: 0.005},
			{Name: "y_lag3", Value: 0.005},
		},
	}

	findings := Interpret(a)
	if !hasFinding(findings, "Current income dominates") {
		t.Errorf("expected current-income finding, got %v", findingNames(findings))
	}
}
