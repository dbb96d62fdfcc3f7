package fred

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const fixtureJSON = `{
	"observations": [
		{"date": "1954-01-01", "value": "1565.4"},
		{"date": "1954-04-01", "value": "."},
		{"date": "1954-07-01", "value": "1578.0"},
		{"date": "1954-10-01", "value": "1605.5"}
	]
}`

func TestGetSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("series_id"); got != "PCECC96" {
			t.Errorf("series_id = %q, want PCECC96", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("observation_start"); got != "1954-01-01" {
			t.Errorf("observation_start = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureJSON))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", zap.NewNop())
	start := time.Date(1954, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1954, 12, 31, 0, 0, 0, 0, time.UTC)

	obs, err := client.GetSeries(context.Background(), "PCECC96", start, end)
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}

	// The "." observation is dropped
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	if obs[0].Value != 1565.4 {
		t.Errorf("first value = %v, want 1565.4", obs[0].Value)
	}
	for i := 1; i < len(obs); i++ {
		if !obs[i-1].Date.Before(obs[i].Date) {
			t.Errorf("observations not date-ascending at %d", i)
		}
	}
}

func TestGetSeriesErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := NewClient("http://localhost:0", "", zap.NewNop())
		_, err := client.GetSeries(context.Background(), "GDPC1", time.Now(), time.Now())
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("server error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad key", http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "k", zap.NewNop())
		_, err := client.GetSeries(context.Background(), "GDPC1", time.Now(), time.Now())
		if err == nil {
			t.Fatal("expected error for non-200 response")
		}
	})

	t.Run("malformed value", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"observations":[{"date":"2000-01-01","value":"abc"}]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "k", zap.NewNop())
		_, err := client.GetSeries(context.Background(), "GDPC1", time.Now(), time.Now())
		if err == nil {
			t.Fatal("expected error for malformed value")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(srv.URL, "k", zap.NewNop())
		_, err := client.GetSeries(ctx, "GDPC1", time.Now(), time.Now())
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unauthenticated requests get a 400; reachability is all Ping checks
		http.Error(w, "api_key required", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
