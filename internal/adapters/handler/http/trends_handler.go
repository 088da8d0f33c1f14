package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

type TrendsHandler struct {
	svc    *services.TrendService
	logger zerolog.Logger
}

func NewTrendsHandler(svc *services.TrendService, logger zerolog.Logger) *TrendsHandler {
	return &TrendsHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "trends").Logger(),
	}
}

func (h *TrendsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/trends", h.GetTrends)
}

func (h *TrendsHandler) GetTrends(c *gin.Context) {
	weeks := h.svc.DefaultWeeks()
	if raw := c.Query("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weeks must be an integer"})
			return
		}
		weeks = n
	}

	view, err := domain.ParseTrendView(c.Query("view"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	// zero end date lets the service use today
	end, err := parseDayParam(c, "end_date", time.Time{})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	report, err := h.svc.ComputeTrends(c.Request.Context(), domain.TrendQuery{Weeks: weeks, View: view, EndDate: end})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
