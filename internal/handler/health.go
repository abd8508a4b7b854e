package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/commerce-admin/internal/middleware"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

// probe checks one dependency. A failing required probe turns /status into
// a 503; an optional one only reports itself.
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

type HealthHandler struct {
	Handler
	probes []probe
}

// NewHealthHandler probes Postgres (required) and Redis (optional), limited
// to the checks enabled in the observability config.
func NewHealthHandler(s *server.Server) *HealthHandler {
	var probes []probe

	if runsCheck(s, "database") && s.DB != nil {
		probes = append(probes, probe{
			name:     "database",
			required: true,
			check:    s.DB.Pool.Ping,
		})
	}

	if runsCheck(s, "redis") && s.Redis != nil {
		probes = append(probes, probe{
			name: "redis",
			check: func(ctx context.Context) error {
				return s.Redis.Ping(ctx).Err()
			},
		})
	}

	return &HealthHandler{Handler: NewHandler(s), probes: probes}
}

func runsCheck(s *server.Server, name string) bool {
	return s.Config.Observability != nil && s.Config.Observability.HealthChecks.Runs(name)
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return defaultHealthTimeout
}

// CheckHealth answers 200 when every required dependency responds, 503
// otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any, len(h.probes))
	isHealthy := true

	for _, p := range h.probes {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
		probeStart := time.Now()
		err := p.check(ctx)
		elapsed := time.Since(probeStart)
		cancel()

		if err != nil {
			checks[p.name] = map[string]any{
				"status":        "unhealthy",
				"response_time": elapsed.String(),
				"error":         err.Error(),
			}
			if p.required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", p.name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			h.recordFailure(p.name, elapsed, err)
			continue
		}

		checks[p.name] = map[string]any{
			"status":        "healthy",
			"response_time": elapsed.String(),
		}
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	app.RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
