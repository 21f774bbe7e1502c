package handlers

import (
	"strconv"

	"model-export-pipeline/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	pipelineSvc   *services.PipelineService
	regressionSvc *services.RegressionService
}

func New(pipelineSvc *services.PipelineService, regressionSvc *services.RegressionService) *Handler {
	return &Handler{
		pipelineSvc:   pipelineSvc,
		regressionSvc: regressionSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Builds
	r.GET("/builds", h.ListBuilds)
	r.GET("/builds/:id", h.GetBuild)
	r.POST("/builds", h.TriggerBuild)
	r.POST("/builds/:id/deploy", h.DeployBuild)
	r.DELETE("/builds/:id/deploy", h.UndeployBuild)

	// Variants
	r.GET("/variants", h.ListVariants)

	// Regression runs
	r.GET("/regression_runs", h.ListRegressionRuns)
	r.GET("/regression_runs/:id", h.GetRegressionRun)
	r.POST("/regression_runs", h.TriggerRegressionRun)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
