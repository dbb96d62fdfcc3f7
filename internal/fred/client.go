// Package fred is a client for the FRED (Federal Reserve Economic Data)
// observations API. Series are addressed by code and a start/end date range.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/alanlujan91/DemARK/internal/models"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ErrMissingAPIKey is returned when the client has no API key configured.
var ErrMissingAPIKey = errors.New("fred: API key not configured")

// Client calls the FRED observations endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a FRED client. baseURL is configurable so tests can
// point at a local server.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// observationsResponse mirrors the FRED JSON payload. Values arrive as
// strings, with "." marking a missing observation.
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetSeries fetches the observations of a series over [start, end],
// in ascending date order, skipping missing values.
func (c *Client) GetSeries(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("series_id", code)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format(dateLayout))
	params.Set("observation_end", end.Format(dateLayout))

	reqURL := c.baseURL + "/series/observations?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fred: build request for %s: %w", code, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred: fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fred: fetch %s: unexpected status %d", code, resp.StatusCode)
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fred: decode %s: %w", code, err)
	}

	obs := make([]models.Observation, 0, len(payload.Observations))
	skipped := 0
	for _, o := range payload.Observations {
		if o.Value == "." {
			skipped++
			continue
		}
		date, err := time.Parse(dateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("fred: malformed date %q in %s: %w", o.Date, code, err)
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("fred: malformed value %q in %s: %w", o.Value, code, err)
		}
		obs = append(obs, models.Observation{Date: date, Value: value})
	}

	// FRED returns ascending dates, but downstream alignment depends on it
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	if skipped > 0 {
		c.logger.Debug("skipped missing observations",
			zap.String("series", code),
			zap.Int("skipped", skipped),
		)
	}

	return obs, nil
}

// Ping checks whether the FRED endpoint is reachable. Any HTTP response
// counts: an unauthenticated request still proves network reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/series/observations", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
