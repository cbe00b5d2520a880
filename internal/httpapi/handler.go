package httpapi

import (
	"context"
	"net/http"
	"time"

	"smart-diet-planner/internal/apperr"
	"smart-diet-planner/internal/auth"
	"smart-diet-planner/internal/client"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/mealplan"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the plan generation API.
type Handler struct {
	generator client.PlanGenerator
	store     Pinger
	tokens    *auth.TokenManager
}

// NewHandler creates a handler. store and tokens may be nil; a nil token
// manager leaves the form page open.
func NewHandler(gen client.PlanGenerator, store Pinger, tokens *auth.TokenManager) *Handler {
	return &Handler{generator: gen, store: store, tokens: tokens}
}

// GeneratePlan handles POST /api/generate-plan.
func (h *Handler) GeneratePlan(c *gin.Context) {
	ctx := c.Request.Context()

	var req mealplan.Constraints
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(ctx).Debug("unreadable constraints body", zap.Error(err))
		writeError(c, apperr.Validation(apperr.MsgMissingConstraints))
		return
	}

	res, err := h.generator.GeneratePlan(ctx, req)
	if err != nil {
		writeError(c, apperr.From(err))
		return
	}

	c.JSON(http.StatusOK, res.Plan)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready.
func (h *Handler) Ready(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "usage_store": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("usage store not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "usage_store": "ok"})
}

func writeError(c *gin.Context, err *apperr.AppError) {
	c.JSON(err.HTTPStatus, err.Body())
}
