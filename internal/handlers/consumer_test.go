package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func consumerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewConsumerHandler(zap.NewNop())
	r.POST("/consumer/solve", h.Solve)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSolveBaselineCalibration(t *testing.T) {
	r := consumerRouter()

	w := postJSON(t, r, "/consumer/solve", map[string]interface{}{
		"disc_fac":     0.96,
		"rfree":        1.03,
		"crra":         2.0,
		"perm_gro_fac": 1.01,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var sol models.ConsumerSolution
	if err := json.Unmarshal(w.Body.Bytes(), &sol); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	wantMPC := 1 - math.Sqrt(1.03*0.96)/1.03
	if math.Abs(sol.MPC-wantMPC) > 1e-9 {
		t.Errorf("mpc = %v, want %v", sol.MPC, wantMPC)
	}
	wantH := 1.03 / (1.03 - 1.01)
	if math.Abs(sol.HumanWealth-wantH) > 1e-9 {
		t.Errorf("human_wealth = %v, want %v", sol.HumanWealth, wantH)
	}

	// The rule is linear, so slope equals the MPC and the intercept is
	// MPC*(h-1).
	if math.Abs(sol.Slope-sol.MPC) > 1e-9 {
		t.Errorf("slope = %v, want mpc %v", sol.Slope, sol.MPC)
	}
	wantIntercept := sol.MPC * (sol.HumanWealth - 1)
	if math.Abs(sol.Intercept-wantIntercept) > 1e-9 {
		t.Errorf("intercept = %v, want %v", sol.Intercept, wantIntercept)
	}

	if len(sol.Points) != 50 {
		t.Errorf("got %d sampled points, want 50", len(sol.Points))
	}
}

func TestSolveRejectsImpatientParameters(t *testing.T) {
	r := consumerRouter()

	// Growth at the interest rate makes human wealth diverge
	w := postJSON(t, r, "/consumer/solve", map[string]interface{}{
		"disc_fac":     0.96,
		"rfree":        1.03,
		"crra":         2.0,
		"perm_gro_fac": 1.03,
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestSolveRejectsMissingParameters(t *testing.T) {
	r := consumerRouter()

	w := postJSON(t, r, "/consumer/solve", map[string]interface{}{
		"disc_fac": 0.96,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSolveCustomSamplingWindow(t *testing.T) {
	r := consumerRouter()

	w := postJSON(t, r, "/consumer/solve", map[string]interface{}{
		"disc_fac":     0.96,
		"rfree":        1.03,
		"crra":         2.0,
		"perm_gro_fac": 1.01,
		"m_min":        0.0,
		"m_max":        5.0,
		"points":       11,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var sol models.ConsumerSolution
	if err := json.Unmarshal(w.Body.Bytes(), &sol); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(sol.Points) != 11 {
		t.Fatalf("got %d points, want 11", len(sol.Points))
	}
	if sol.Points[0].M != 0 || sol.Points[10].M != 5 {
		t.Errorf("sample endpoints = %v, %v; want 0, 5", sol.Points[0].M, sol.Points[10].M)
	}
}
