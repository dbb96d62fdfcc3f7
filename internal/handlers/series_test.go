package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/theory"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fredFixture serves a synthetic quarterly series
func fredFixture(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type obsJSON struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		}
		var observations []obsJSON
		date := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 8; i++ {
			observations = append(observations, obsJSON{
				Date:  date.Format("2006-01-02"),
				Value: fmt.Sprintf("%.2f", 1000+25*float64(i)),
			})
			date = date.AddDate(0, 3, 0)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"observations": observations})
	}))
}

func seriesRouter(fredURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := fred.NewClient(fredURL, "test-key", zap.NewNop())
	svc := theory.NewService(nil, nil, client, zap.NewNop())
	h := NewSeriesHandler(svc, zap.NewNop())
	r := gin.New()
	r.GET("/series/:code", h.Get)
	return r
}

func TestGetSeries(t *testing.T) {
	srv := fredFixture(t)
	defer srv.Close()

	r := seriesRouter(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/series/GDPC1?start=2000-01-01&end=2001-12-31", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Series string `json:"series"`
		Count  int    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Series != "GDPC1" {
		t.Errorf("series = %q", resp.Series)
	}
	if resp.Count != 8 {
		t.Errorf("count = %d, want 8", resp.Count)
	}
}

func TestGetSeriesRejectsBadDates(t *testing.T) {
	r := seriesRouter("http://localhost:0")

	req := httptest.NewRequest(http.MethodGet, "/series/GDPC1?start=01/01/2000", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad start: status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/series/GDPC1?start=2001-01-01&end=2000-01-01", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted range: status = %d, want 400", w.Code)
	}
}

func TestGetSeriesUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := seriesRouter(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/series/GDPC1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
