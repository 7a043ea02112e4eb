package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/avatar/internal/healthcheck"
)

// HealthHandler reports the reachability of the service's backing stores.
type HealthHandler struct {
	logger   *slog.Logger
	checkers []healthcheck.Checker
}

func NewHealthHandler(log *slog.Logger, checkers []healthcheck.Checker) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{
		logger:   log.With(slog.String("handler", "health")),
		checkers: checkers,
	}
}

func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.HEAD("/health", h.Live)
}

// Live answers load balancer probes without touching dependencies.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Health godoc
// @Summary Dependency health report
// @Tags health
// @Success 200 {object} healthcheck.Report
// @Failure 503 {object} healthcheck.Report
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	report := healthcheck.Run(c.Request().Context(), h.checkers)
	if report.Status == healthcheck.StatusError {
		h.logger.Warn("health check failed", slog.Int("checks", len(report.Checks)))
		return c.JSON(http.StatusServiceUnavailable, report)
	}
	return c.JSON(http.StatusOK, report)
}
