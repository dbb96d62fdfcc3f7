package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alanlujan91/DemARK/internal/middleware"
	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/orchestration"
	"github.com/alanlujan91/DemARK/internal/theory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

// AnalysisHandler runs and serves consumption-theory comparisons
type AnalysisHandler struct {
	svc      *theory.Service
	temporal client.Client
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler. The temporal client
// may be nil, in which case analyses run in-process.
func NewAnalysisHandler(svc *theory.Service, temporal client.Client, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, temporal: temporal, logger: logger}
}

// RunAnalysisRequest is the request body for running an analysis
type RunAnalysisRequest struct {
	Kind              string `json:"kind" binding:"required"`
	ConsumptionSeries string `json:"consumption_series"`
	IncomeSeries      string `json:"income_series"`
	Start             string `json:"start" binding:"required"`
	End               string `json:"end" binding:"required"`
	Lags              int    `json:"lags"`
}

// Run executes a theory comparison over the requested window
func (h *AnalysisHandler) Run(c *gin.Context) {
	var req RunAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.AnalysisKind(req.Kind)
	if !kind.Valid() {
		middleware.BadRequest(c, fmt.Sprintf("unknown analysis kind %q", req.Kind))
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		middleware.BadRequest(c, "start must be formatted YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		middleware.BadRequest(c, "end must be formatted YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		middleware.BadRequest(c, "end must not precede start")
		return
	}

	analysisReq := theory.AnalysisRequest{
		Kind:              kind,
		ConsumptionSeries: req.ConsumptionSeries,
		IncomeSeries:      req.IncomeSeries,
		Start:             start,
		End:               end,
		Lags:              req.Lags,
	}
	if userID, ok := middleware.GetUserID(c); ok {
		analysisReq.RequestedBy = userID
	}

	analysis, err := h.run(c, analysisReq)
	if err != nil {
		middleware.FREDCircuitBreaker.RecordFailure()
		h.logger.Error("analysis failed",
			zap.String("kind", req.Kind),
			zap.Error(err),
		)
		middleware.RespondErrorWithDetails(c, http.StatusBadGateway, middleware.ErrCodeDataSourceUnavailable,
			"analysis failed", err.Error())
		return
	}
	middleware.FREDCircuitBreaker.RecordSuccess()

	c.JSON(http.StatusCreated, analysis)
}

// run dispatches to Temporal when a client is configured, otherwise the
// analysis runs in-process.
func (h *AnalysisHandler) run(c *gin.Context, req theory.AnalysisRequest) (*models.Analysis, error) {
	ctx := c.Request.Context()

	if h.temporal == nil {
		return h.svc.RunAnalysis(ctx, req)
	}

	options := client.StartWorkflowOptions{
		ID:        "analysis-" + uuid.New().String(),
		TaskQueue: orchestration.TaskQueue,
	}
	we, err := h.temporal.ExecuteWorkflow(ctx, options, orchestration.AnalysisWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("start workflow: %w", err)
	}

	var analysis models.Analysis
	if err := we.Get(ctx, &analysis); err != nil {
		return nil, fmt.Errorf("workflow result: %w", err)
	}
	return &analysis, nil
}

// Get returns a stored analysis by id
func (h *AnalysisHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, analysis)
}
