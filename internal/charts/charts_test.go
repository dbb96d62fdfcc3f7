package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alanlujan91/DemARK/internal/perfforesight"
)

func TestConsumptionFunctionRendersSVG(t *testing.T) {
	sol, err := perfforesight.Solve(perfforesight.Params{
		DiscFac: 0.96, Rfree: 1.03, CRRA: 2.0, PermGroFac: 1.01,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	p, err := ConsumptionFunction(sol, 0, 10, 50)
	if err != nil {
		t.Fatalf("ConsumptionFunction failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSVG(p, &buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output does not look like SVG")
	}
}

func TestScatterFit(t *testing.T) {
	y := []float64{1000, 1100, 1200, 1300}
	c := []float64{800, 860, 920, 980}

	p, err := ScatterFit(y, c, 200, 0.6, "Keynes", "income", "consumption")
	if err != nil {
		t.Fatalf("ScatterFit failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSVG(p, &buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty SVG output")
	}
}

func TestScatterFitErrors(t *testing.T) {
	if _, err := ScatterFit([]float64{1}, []float64{1, 2}, 0, 1, "", "", ""); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := ScatterFit(nil, nil, 0, 1, "", "", ""); err == nil {
		t.Error("expected error for empty data")
	}
}
