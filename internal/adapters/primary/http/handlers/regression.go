package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/adapters/primary/http/dto"
)

func (h *Handler) TriggerRegressionRun(c *gin.Context) {
	run, err := h.regressionSvc.Run(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("regression run failed to execute")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRegressionRunResponse(run))
}

func (h *Handler) GetRegressionRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid regression run id"})
		return
	}

	run, err := h.regressionSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegressionRunResponse(run))
}

func (h *Handler) ListRegressionRuns(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	runs, total, err := h.regressionSvc.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.WithError(err).Error("list regression runs failed")
		mapDomainError(c, err)
		return
	}

	resp := dto.ListRegressionRunsResponse{
		Items:      []dto.RegressionRunResponse{},
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(runs),
	}
	for _, run := range runs {
		resp.Items = append(resp.Items, dto.ToRegressionRunResponse(run))
	}
	c.JSON(http.StatusOK, resp)
}
