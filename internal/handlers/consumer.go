package handlers

import (
	"errors"
	"net/http"

	"github.com/alanlujan91/DemARK/internal/metrics"
	"github.com/alanlujan91/DemARK/internal/middleware"
	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/perfforesight"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConsumerHandler solves perfect-foresight consumer models
type ConsumerHandler struct {
	logger *zap.Logger
}

// NewConsumerHandler creates a new consumer handler
func NewConsumerHandler(logger *zap.Logger) *ConsumerHandler {
	return &ConsumerHandler{logger: logger}
}

// SolveRequest is the request body for solving a consumer model
type SolveRequest struct {
	DiscFac    float64 `json:"disc_fac" binding:"required,gt=0"`
	Rfree      float64 `json:"rfree" binding:"required,gt=0"`
	CRRA       float64 `json:"crra" binding:"required,gt=0"`
	PermGroFac float64 `json:"perm_gro_fac" binding:"required,gt=0"`

	// Optional sampling window for the returned consumption function
	MMin   *float64 `json:"m_min"`
	MMax   *float64 `json:"m_max"`
	Points int      `json:"points"`
}

// Solve solves the model and returns the linear consumption rule along
// with sampled points of the consumption function.
func (h *ConsumerHandler) Solve(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := perfforesight.Params{
		DiscFac:    req.DiscFac,
		Rfree:      req.Rfree,
		CRRA:       req.CRRA,
		PermGroFac: req.PermGroFac,
	}

	sol, err := perfforesight.Solve(params)
	if err != nil {
		if errors.Is(err, perfforesight.ErrInvalidParams) ||
			errors.Is(err, perfforesight.ErrInfiniteHumanWealth) ||
			errors.Is(err, perfforesight.ErrReturnImpatience) {
			middleware.RespondError(c, http.StatusUnprocessableEntity, middleware.ErrCodeInvalidParameters, err.Error())
			return
		}
		h.logger.Error("failed to solve consumer model", zap.Error(err))
		middleware.InternalError(c, "failed to solve consumer model")
		return
	}
	metrics.SolvesTotal.Inc()

	intercept, slope, err := sol.Linearize(0, 1)
	if err != nil {
		h.logger.Error("failed to linearize consumption rule", zap.Error(err))
		middleware.InternalError(c, "failed to linearize consumption rule")
		return
	}

	resp := models.ConsumerSolution{
		DiscFac:     sol.DiscFac,
		Rfree:       sol.Rfree,
		CRRA:        sol.CRRA,
		PermGroFac:  sol.PermGroFac,
		MPC:         sol.MPC,
		HumanWealth: sol.HumanWealth,
		MinM:        sol.MinM,
		Intercept:   intercept,
		Slope:       slope,
	}

	mMin, mMax := sol.MinM, sol.MinM+10
	if req.MMin != nil {
		mMin = *req.MMin
	}
	if req.MMax != nil {
		mMax = *req.MMax
	}
	points := req.Points
	if points <= 0 {
		points = 50
	}

	ms, cs, err := sol.Sample(mMin, mMax, points)
	if err != nil {
		middleware.RespondError(c, http.StatusUnprocessableEntity, middleware.ErrCodeInvalidParameters, err.Error())
		return
	}
	resp.Points = make([]models.ConsumptionPoint, len(ms))
	for i := range ms {
		resp.Points[i] = models.ConsumptionPoint{M: ms[i], C: cs[i]}
	}

	c.JSON(http.StatusOK, resp)
}
