package handlers

import (
	"context"
	"time"

	"usersvc/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the store and the cache are reachable.
type HealthHandler struct {
	repo  repositories.UserRepository
	cache repositories.UserCache
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(repo repositories.UserRepository, cache repositories.UserCache) *HealthHandler {
	return &HealthHandler{
		repo:  repo,
		cache: cache,
	}
}

// RegisterRoutes registers the health route with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth pings both backends.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	status, code := "healthy", fiber.StatusOK
	checks := fiber.Map{"store": "ok", "cache": "ok"}
	if err := h.repo.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check: store unreachable")
		checks["store"] = "unreachable"
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check: cache unreachable")
		checks["cache"] = "unreachable"
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"checks": checks,
	})
}
