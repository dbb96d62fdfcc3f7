package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/middleware"
	"github.com/alanlujan91/DemARK/internal/theory"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultSeriesStart is where the postwar quarterly series begin
var DefaultSeriesStart = time.Date(1954, 1, 1, 0, 0, 0, 0, time.UTC)

// SeriesHandler serves macroeconomic series fetched from FRED
type SeriesHandler struct {
	svc    *theory.Service
	logger *zap.Logger
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(svc *theory.Service, logger *zap.Logger) *SeriesHandler {
	return &SeriesHandler{svc: svc, logger: logger}
}

// Get returns the observations of a series over an optional date range
func (h *SeriesHandler) Get(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		middleware.BadRequest(c, "series code required")
		return
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	obs, err := h.svc.FetchSeries(c.Request.Context(), code, start, end)
	if err != nil {
		middleware.FREDCircuitBreaker.RecordFailure()
		if errors.Is(err, fred.ErrMissingAPIKey) {
			middleware.DataSourceUnavailable(c)
			return
		}
		h.logger.Error("failed to fetch series", zap.String("series", code), zap.Error(err))
		middleware.DataSourceUnavailable(c)
		return
	}
	middleware.FREDCircuitBreaker.RecordSuccess()

	c.JSON(http.StatusOK, gin.H{
		"series":       code,
		"start":        start.Format("2006-01-02"),
		"end":          end.Format("2006-01-02"),
		"count":        len(obs),
		"observations": obs,
	})
}

// parseDateRange reads the start and end query parameters, defaulting to
// the postwar window through today.
func parseDateRange(c *gin.Context) (start, end time.Time, err error) {
	start = DefaultSeriesStart
	end = time.Now().UTC().Truncate(24 * time.Hour)

	if s := c.Query("start"); s != "" {
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, errors.New("start must be formatted YYYY-MM-DD")
		}
	}
	if s := c.Query("end"); s != "" {
		end, err = time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, errors.New("end must be formatted YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return start, end, errors.New("end must not precede start")
	}
	return start, end, nil
}
