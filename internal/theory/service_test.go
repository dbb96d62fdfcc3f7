package theory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/models"
	"go.uber.org/zap"
)

// fredFixture serves synthetic quarterly series where consumption is an
// exact linear function of income: C = 200 + 0.6*Y.
func fredFixture(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("series_id")

		type obsJSON struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		}
		var observations []obsJSON
		date := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 24; i++ {
			y := 1000 + 25*float64(i)
			v := y
			if code == "CONS" {
				v = 200 + 0.6*y
			}
			observations = append(observations, obsJSON{
				Date:  date.Format("2006-01-02"),
				Value: fmt.Sprintf("%.4f", v),
			})
			date = date.AddDate(0, 3, 0)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"observations": observations})
	}))
}

func TestRunAnalysisKeynes(t *testing.T) {
	srv := fredFixture(t)
	defer srv.Close()

	client := fred.NewClient(srv.URL, "test-key", zap.NewNop())
	svc := NewService(nil, nil, client, zap.NewNop())

	req := AnalysisRequest{
		Kind:              models.KindKeynes,
		ConsumptionSeries: "CONS",
		IncomeSeries:      "INC",
		Start:             time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		End:               time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	analysis, err := svc.RunAnalysis(context.Background(), req)
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}

	if analysis.Kind != models.KindKeynes {
		t.Errorf("kind = %v", analysis.Kind)
	}
	if analysis.N != 24 {
		t.Errorf("N = %d, want 24", analysis.N)
	}

	var mpc, intercept float64
	for _, c := range analysis.Coefficients {
		switch c.Name {
		case "mpc":
			mpc = c.Value
		case "intercept":
			intercept = c.Value
		}
	}
	if math.Abs(mpc-0.6) > 1e-6 {
		t.Errorf("mpc = %v, want 0.6", mpc)
	}
	if math.Abs(intercept-200) > 1e-3 {
		t.Errorf("intercept = %v, want 200", intercept)
	}
	if math.Abs(analysis.R2-1) > 1e-9 {
		t.Errorf("R2 = %v, want 1", analysis.R2)
	}
	if len(analysis.Findings) == 0 {
		t.Error("expected findings")
	}
}

func TestRunAnalysisRejectsUnknownKind(t *testing.T) {
	svc := NewService(nil, nil, fred.NewClient("http://localhost:0", "k", zap.NewNop()), zap.NewNop())
	_, err := svc.RunAnalysis(context.Background(), AnalysisRequest{Kind: "marxian"})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestRunAnalysisFriedmanDefaults(t *testing.T) {
	srv := fredFixture(t)
	defer srv.Close()

	client := fred.NewClient(srv.URL, "test-key", zap.NewNop())
	svc := NewService(nil, nil, client, zap.NewNop())

	req := AnalysisRequest{
		Kind:              models.KindFriedman,
		ConsumptionSeries: "CONS",
		IncomeSeries:      "INC",
		Start:             time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		End:               time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	analysis, err := svc.RunAnalysis(context.Background(), req)
	if err != nil {
		t.Fatalf("RunAnalysis failed: %v", err)
	}
	if analysis.Lags != DefaultLags {
		t.Errorf("lags = %d, want default %d", analysis.Lags, DefaultLags)
	}
	// intercept + one coefficient per lag
	if len(analysis.Coefficients) != DefaultLags+1 {
		t.Errorf("got %d coefficients, want %d", len(analysis.Coefficients), DefaultLags+1)
	}
}
