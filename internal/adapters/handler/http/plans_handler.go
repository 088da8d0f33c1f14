package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

type PlansHandler struct {
	svc    *services.PlanService
	logger zerolog.Logger
}

func NewPlansHandler(svc *services.PlanService, logger zerolog.Logger) *PlansHandler {
	return &PlansHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "plans").Logger(),
	}
}

func (h *PlansHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/plans")
	{
		plans.POST("", h.Create)
		plans.GET("", h.Latest)
		plans.GET("/:week_start", h.Get)
		plans.GET("/:week_start/compliance", h.Compliance)
	}
}

// Create stores a plan. A plan with the same week_start is replaced.
func (h *PlansHandler) Create(c *gin.Context) {
	var plan domain.TrainingPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.svc.SavePlan(c.Request.Context(), &plan)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *PlansHandler) Latest(c *gin.Context) {
	plan, err := h.svc.LatestPlan(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlansHandler) Get(c *gin.Context) {
	weekStart, err := domain.ParseDay(c.Param("week_start"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	plan, err := h.svc.GetPlan(c.Request.Context(), weekStart)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Compliance compares the plan with the workouts logged through as_of, today by default.
func (h *PlansHandler) Compliance(c *gin.Context) {
	weekStart, err := domain.ParseDay(c.Param("week_start"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	asOf, err := parseDayParam(c, "as_of", time.Time{})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	report, err := h.svc.Compliance(c.Request.Context(), weekStart, asOf)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
