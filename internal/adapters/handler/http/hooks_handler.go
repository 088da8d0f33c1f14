package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

// HooksHandler receives batches relayed by the health export automation.
type HooksHandler struct {
	svc    *services.IngestService
	logger zerolog.Logger
}

func NewHooksHandler(svc *services.IngestService, logger zerolog.Logger) *HooksHandler {
	return &HooksHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "hooks").Logger(),
	}
}

func (h *HooksHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/hooks/health-export", h.HealthExport)
}

// HealthExport stores the batch and answers 202; readiness is recomputed in the background.
func (h *HooksHandler) HealthExport(c *gin.Context) {
	var batch domain.IngestBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Ingest(c.Request.Context(), &batch)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}
