package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 366
)

type ReadinessHandler struct {
	svc    *services.ReadinessService
	logger zerolog.Logger
	now    func() time.Time
}

func NewReadinessHandler(svc *services.ReadinessService, logger zerolog.Logger) *ReadinessHandler {
	return &ReadinessHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "readiness").Logger(),
		now:    time.Now,
	}
}

func (h *ReadinessHandler) RegisterRoutes(router *gin.RouterGroup) {
	readiness := router.Group("/readiness")
	{
		readiness.GET("", h.List)
		readiness.GET("/:date", h.Get)
		readiness.POST("/:date", h.Compute)
	}
}

// Compute scores the given date and stores the record.
func (h *ReadinessHandler) Compute(c *gin.Context) {
	date, err := domain.ParseDay(c.Param("date"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	rec, err := h.svc.ComputeReadiness(c.Request.Context(), date)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Get returns the stored record for a date without recomputing it.
func (h *ReadinessHandler) Get(c *gin.Context) {
	date, err := domain.ParseDay(c.Param("date"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	records, err := h.svc.ListReadiness(c.Request.Context(), date, date)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no readiness stored for " + domain.FormatDay(date)})
		return
	}

	c.JSON(http.StatusOK, records[len(records)-1])
}

// List returns stored records in [from, to]. Defaults to the last 30 days.
func (h *ReadinessHandler) List(c *gin.Context) {
	to, err := parseDayParam(c, "to", domain.Day(h.now().UTC()))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	from, err := parseDayParam(c, "from", to.AddDate(0, 0, -(defaultHistoryDays-1)))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from cannot be after to"})
		return
	}
	if to.Sub(from).Hours()/24 > maxHistoryDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return
	}

	records, err := h.svc.ListReadiness(c.Request.Context(), from, to)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":    domain.FormatDay(from),
		"to":      domain.FormatDay(to),
		"records": records,
	})
}
