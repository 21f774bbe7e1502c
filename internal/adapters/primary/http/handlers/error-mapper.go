package handlers

import (
	"errors"
	"net/http"

	"model-export-pipeline/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrBuildNotFound),
		errors.Is(err, domain.ErrRegressionRunMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrMissingVariant),
		errors.Is(err, domain.ErrInvalidBuildID),
		errors.Is(err, domain.ErrBuildNotDone),
		errors.Is(err, domain.ErrDeployNoImage),
		errors.Is(err, domain.ErrEmptyMatrix):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrDeployDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
