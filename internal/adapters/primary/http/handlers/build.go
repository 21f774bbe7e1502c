package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/adapters/primary/http/dto"
	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

func (h *Handler) TriggerBuild(c *gin.Context) {
	var req dto.TriggerBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	build, err := h.pipelineSvc.Run(c.Request.Context(), req.Variant, req.Deploy)
	if err != nil {
		log.WithError(err).WithField("variant", req.Variant).Error("build failed")
		// A build that started is reported with its record so the caller
		// can see which step failed; a rejected variant has no record.
		if build != nil {
			c.JSON(http.StatusUnprocessableEntity, dto.ToBuildResponse(build))
			return
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBuildResponse(build))
}

func (h *Handler) GetBuild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	build, err := h.pipelineSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBuildResponse(build))
}

func (h *Handler) ListBuilds(c *gin.Context) {
	filter := ports.BuildListFilter{
		Variant: domain.Variant(c.Query("variant")),
		Status:  domain.BuildStatus(c.Query("status")),
	}
	filter.Limit = intQuery(c, "limit", 20)
	filter.Offset = intQuery(c, "offset", 0)

	builds, total, err := h.pipelineSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list builds failed")
		mapDomainError(c, err)
		return
	}

	resp := dto.ListBuildsResponse{
		Items:      []dto.BuildResponse{},
		Total:      total,
		PageSize:   filter.Limit,
		NextOffset: filter.Offset + len(builds),
	}
	for _, b := range builds {
		resp.Items = append(resp.Items, dto.ToBuildResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeployBuild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	dep, err := h.pipelineSvc.Deploy(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("build", id).Error("deploy build failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.DeploymentResponse{
		ExternalID: dep.ExternalID,
		Name:       dep.Name,
		Namespace:  dep.Namespace,
	})
}

func (h *Handler) UndeployBuild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	if err := h.pipelineSvc.Undeploy(c.Request.Context(), id); err != nil {
		log.WithError(err).WithField("build", id).Error("undeploy build failed")
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListVariants(c *gin.Context) {
	specs := domain.VariantSpecs()
	items := make([]gin.H, 0, len(specs))
	for _, spec := range specs {
		items = append(items, gin.H{
			"variant":        string(spec.Variant),
			"checkpoint_url": spec.CheckpointURL,
			"model_type":     spec.ModelType,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
