package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alanlujan91/DemARK/internal/charts"
	"github.com/alanlujan91/DemARK/internal/middleware"
	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/perfforesight"
	"github.com/alanlujan91/DemARK/internal/theory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
)

// Baseline calibration used when chart queries omit parameters
var baselineParams = perfforesight.Params{
	DiscFac:    0.96,
	Rfree:      1.03,
	CRRA:       2.0,
	PermGroFac: 1.01,
}

// ChartsHandler renders figures as SVG
type ChartsHandler struct {
	svc    *theory.Service
	logger *zap.Logger
}

// NewChartsHandler creates a new charts handler
func NewChartsHandler(svc *theory.Service, logger *zap.Logger) *ChartsHandler {
	return &ChartsHandler{svc: svc, logger: logger}
}

// ConsumptionFunction renders the solved consumption rule for the
// parameters given in the query string.
func (h *ChartsHandler) ConsumptionFunction(c *gin.Context) {
	params := baselineParams
	var err error
	if params.DiscFac, err = floatQuery(c, "disc_fac", params.DiscFac); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if params.Rfree, err = floatQuery(c, "rfree", params.Rfree); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if params.CRRA, err = floatQuery(c, "crra", params.CRRA); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if params.PermGroFac, err = floatQuery(c, "perm_gro_fac", params.PermGroFac); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	sol, err := perfforesight.Solve(params)
	if err != nil {
		middleware.RespondError(c, http.StatusUnprocessableEntity, middleware.ErrCodeInvalidParameters, err.Error())
		return
	}

	mMin, err := floatQuery(c, "m_min", sol.MinM)
	if err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	mMax, err := floatQuery(c, "m_max", sol.MinM+10)
	if err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	p, err := charts.ConsumptionFunction(sol, mMin, mMax, 100)
	if err != nil {
		middleware.RespondError(c, http.StatusUnprocessableEntity, middleware.ErrCodeInvalidParameters, err.Error())
		return
	}

	h.writeSVG(c, p)
}

// AnalysisScatter renders the observations behind a stored analysis with
// its fitted line laid over them.
func (h *ChartsHandler) AnalysisScatter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.BadRequest(c, "invalid analysis id")
		return
	}

	analysis, err := h.svc.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, theory.ErrNotFound) {
			middleware.NotFound(c, "analysis not found")
			return
		}
		h.logger.Error("failed to load analysis", zap.String("id", id.String()), zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to load analysis")
		return
	}

	consumption, income, err := h.svc.AlignedData(c.Request.Context(), analysis)
	if err != nil {
		h.logger.Error("failed to load observations", zap.String("id", id.String()), zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to load observations")
		return
	}

	intercept, slope := fittedLine(analysis)
	title := fmt.Sprintf("%s: %s on %s", analysis.Kind, analysis.ConsumptionSeries, analysis.IncomeSeries)
	p, err := charts.ScatterFit(income, consumption, intercept, slope, title, "income", "consumption")
	if err != nil {
		middleware.RespondError(c, http.StatusUnprocessableEntity, middleware.ErrCodeInvalidParameters, err.Error())
		return
	}

	h.writeSVG(c, p)
}

func (h *ChartsHandler) writeSVG(c *gin.Context, p *plot.Plot) {
	c.Header("Content-Type", "image/svg+xml")
	c.Status(http.StatusOK)
	if err := charts.WriteSVG(p, c.Writer); err != nil {
		h.logger.Error("failed to render chart", zap.Error(err))
	}
}

// fittedLine reduces an analysis to an intercept and a single income
// slope for plotting. The distributed-lag form has no single slope, so
// the lag weights are summed into the long-run response.
func fittedLine(a *models.Analysis) (intercept, slope float64) {
	for _, coef := range a.Coefficients {
		switch {
		case coef.Name == "intercept":
			intercept = coef.Value
		case coef.Name == "mpc":
			slope = coef.Value
		case strings.HasPrefix(coef.Name, "y_lag"):
			slope += coef.Value
		}
	}
	return intercept, slope
}

func floatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
