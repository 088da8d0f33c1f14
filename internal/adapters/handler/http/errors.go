package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidSample):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, logger zerolog.Logger, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseDayParam reads an optional YYYY-MM-DD query value.
func parseDayParam(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	day, err := domain.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s format, expected YYYY-MM-DD", domain.ErrInvalidArgument, name)
	}
	return day, nil
}
