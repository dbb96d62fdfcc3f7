// Package theory runs the consumption-theory comparisons: it fetches
// macroeconomic series, regresses consumption on income in the forms
// Keynes, Duesenberry and Friedman imply, and persists the results.
package theory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alanlujan91/DemARK/internal/database"
	"github.com/alanlujan91/DemARK/internal/eventbus"
	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/metrics"
	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/regression"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Default comparison window and series, matching the classic quarterly
// US consumption/income comparison.
const (
	DefaultConsumptionSeries = "PCECC96" // real personal consumption expenditures
	DefaultIncomeSeries      = "GDPC1"   // real gross domestic product
	DefaultLags              = 4
)

const seriesCacheTTL = 24 * time.Hour

// ErrNotFound is returned when a stored analysis does not exist.
var ErrNotFound = errors.New("theory: analysis not found")

// Service coordinates fetching, estimation and persistence
type Service struct {
	db     *database.Postgres
	cache  *database.Redis
	fred   *fred.Client
	logger *zap.Logger
}

// NewService creates the theory comparison service
func NewService(db *database.Postgres, cache *database.Redis, fredClient *fred.Client, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		fred:   fredClient,
		logger: logger,
	}
}

// AnalysisRequest describes one theory comparison to run
type AnalysisRequest struct {
	Kind              models.AnalysisKind `json:"kind"`
	ConsumptionSeries string              `json:"consumption_series"`
	IncomeSeries      string              `json:"income_series"`
	Start             time.Time           `json:"start"`
	End               time.Time           `json:"end"`
	Lags              int                 `json:"lags"`
	RequestedBy       uuid.UUID           `json:"requested_by"`
}

func (r *AnalysisRequest) applyDefaults() {
	if r.ConsumptionSeries == "" {
		r.ConsumptionSeries = DefaultConsumptionSeries
	}
	if r.IncomeSeries == "" {
		r.IncomeSeries = DefaultIncomeSeries
	}
	if r.Lags <= 0 {
		r.Lags = DefaultLags
	}
}

// FetchSeries returns the observations of a series over [start, end],
// serving from the Redis cache when possible and persisting fresh
// fetches to Postgres.
func (s *Service) FetchSeries(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error) {
	key := fmt.Sprintf("series:%s:%s:%s", code, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if s.cache != nil {
		var cached []models.Observation
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.logger.Warn("series cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	obs, err := s.fred.GetSeries(ctx, code, start, end)
	if err != nil {
		metrics.FREDRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.FREDRequests.WithLabelValues("ok").Inc()

	if s.db != nil {
		if err := s.storeObservations(ctx, code, obs); err != nil {
			s.logger.Error("failed to persist series observations",
				zap.String("series", code), zap.Error(err))
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, obs, seriesCacheTTL); err != nil {
			s.logger.Warn("series cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.publish(eventbus.SubjectSeriesFetched, map[string]interface{}{
		"series": code,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
		"count":  len(obs),
	})

	return obs, nil
}

// RunAnalysis fetches the two series, estimates the regression the
// requested theory implies, interprets it and stores the result.
func (s *Service) RunAnalysis(ctx context.Context, req AnalysisRequest) (*models.Analysis, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("theory: unknown analysis kind %q", req.Kind)
	}
	req.applyDefaults()

	timer := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(timer).Seconds())
	}()

	consumption, err := s.FetchSeries(ctx, req.ConsumptionSeries, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch consumption series: %w", err)
	}
	income, err := s.FetchSeries(ctx, req.IncomeSeries, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch income series: %w", err)
	}

	_, c, y := Align(consumption, income)

	result, names, err := estimate(req.Kind, c, y, req.Lags)
	if err != nil {
		return nil, err
	}

	coeffs := make([]models.Coefficient, len(result.Coefficients))
	for i := range result.Coefficients {
		coeffs[i] = models.Coefficient{
			Name:     names[i],
			Value:    result.Coefficients[i],
			StdError: result.StdErrors[i],
		}
	}

	analysis := &models.Analysis{
		ID:                uuid.New(),
		Kind:              req.Kind,
		ConsumptionSeries: req.ConsumptionSeries,
		IncomeSeries:      req.IncomeSeries,
		Start:             req.Start,
		End:               req.End,
		Lags:              req.Lags,
		Coefficients:      coeffs,
		R2:                result.R2,
		N:                 result.N,
		CreatedBy:         req.RequestedBy,
		CreatedAt:         time.Now(),
	}
	analysis.Findings = Interpret(analysis)

	if s.db != nil {
		if err := s.insertAnalysis(ctx, analysis); err != nil {
			return nil, fmt.Errorf("store analysis: %w", err)
		}
	}

	s.publish(eventbus.SubjectAnalysisCompleted, analysis)

	s.logger.Info("analysis completed",
		zap.String("kind", string(req.Kind)),
		zap.String("id", analysis.ID.String()),
		zap.Int("n", analysis.N),
		zap.Float64("r2", analysis.R2),
	)

	return analysis, nil
}

// estimate builds the design matrix a theory implies and runs OLS.
func estimate(kind models.AnalysisKind, c, y []float64, lags int) (*regression.Result, []string, error) {
	switch kind {
	case models.KindKeynes:
		// C_t = a + b*Y_t
		X, err := regression.Design(y)
		if err != nil {
			return nil, nil, err
		}
		res, err := regression.OLS(c, X)
		return res, []string{"intercept", "mpc"}, err

	case models.KindDuesenberry:
		// C_t = a + b*Y_t + d*Y^peak_{t-1}: consumption ratchets on the
		// highest income previously attained.
		peaks := PriorPeak(y)
		X, err := regression.Design(y[1:], peaks)
		if err != nil {
			return nil, nil, err
		}
		res, err := regression.OLS(c[1:], X)
		return res, []string{"intercept", "mpc", "ratchet"}, err

	case models.KindFriedman:
		// C_t = a + sum_i w_i*Y_{t-i}: the lag weights proxy the
		// permanent-income expectation.
		cols, err := LagMatrix(y, lags)
		if err != nil {
			return nil, nil, err
		}
		X, err := regression.Design(cols...)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, 0, lags+1)
		names = append(names, "intercept")
		for i := 0; i < lags; i++ {
			names = append(names, fmt.Sprintf("y_lag%d", i))
		}
		res, err := regression.OLS(c[lags-1:], X)
		return res, names, err
	}
	return nil, nil, fmt.Errorf("theory: unknown analysis kind %q", kind)
}

// GetAnalysis loads a stored analysis by id
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `
		SELECT id, kind, consumption_series, income_series, start_date, end_date,
		       lags, coefficients, r2, n, findings, COALESCE(created_by, '00000000-0000-0000-0000-000000000000'), created_at
		FROM analyses WHERE id = $1
	`

	var a models.Analysis
	var coeffsJSON, findingsJSON []byte
	err := s.db.Pool().QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Kind, &a.ConsumptionSeries, &a.IncomeSeries, &a.Start, &a.End,
		&a.Lags, &coeffsJSON, &a.R2, &a.N, &findingsJSON, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := json.Unmarshal(coeffsJSON, &a.Coefficients); err != nil {
		return nil, fmt.Errorf("decode coefficients: %w", err)
	}
	if err := json.Unmarshal(findingsJSON, &a.Findings); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}

	return &a, nil
}

// AlignedData returns the aligned consumption/income values underlying
// an analysis, read back from the stored observations. Used for charts.
func (s *Service) AlignedData(ctx context.Context, a *models.Analysis) (c, y []float64, err error) {
	consumption, err := s.loadObservations(ctx, a.ConsumptionSeries, a.Start, a.End)
	if err != nil {
		return nil, nil, err
	}
	income, err := s.loadObservations(ctx, a.IncomeSeries, a.Start, a.End)
	if err != nil {
		return nil, nil, err
	}
	_, c, y = Align(consumption, income)
	return c, y, nil
}

func (s *Service) storeObservations(ctx context.Context, code string, obs []models.Observation) error {
	const query = `
		INSERT INTO series_observations (series_code, obs_date, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (series_code, obs_date)
		DO UPDATE SET value = EXCLUDED.value, fetched_at = NOW()
	`
	for _, o := range obs {
		if _, err := s.db.Pool().Exec(ctx, query, code, o.Date, o.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadObservations(ctx context.Context, code string, start, end time.Time) ([]models.Observation, error) {
	const query = `
		SELECT obs_date, value FROM series_observations
		WHERE series_code = $1 AND obs_date BETWEEN $2 AND $3
		ORDER BY obs_date
	`
	rows, err := s.db.Pool().Query(ctx, query, code, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (s *Service) insertAnalysis(ctx context.Context, a *models.Analysis) error {
	coeffsJSON, err := json.Marshal(a.Coefficients)
	if err != nil {
		return err
	}
	findingsJSON, err := json.Marshal(a.Findings)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO analyses (id, kind, consumption_series, income_series, start_date, end_date,
		                      lags, coefficients, r2, n, findings, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '00000000-0000-0000-0000-000000000000'::uuid), $13)
	`
	_, err = s.db.Pool().Exec(ctx, query,
		a.ID, a.Kind, a.ConsumptionSeries, a.IncomeSeries, a.Start, a.End,
		a.Lags, coeffsJSON, a.R2, a.N, findingsJSON, a.CreatedBy, a.CreatedAt,
	)
	return err
}

// publish sends an event, tolerating a missing NATS connection
func (s *Service) publish(subject string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := eventbus.Publish(subject, payload); err != nil {
		s.logger.Debug("event publish skipped", zap.String("subject", subject), zap.Error(err))
	}
}
