package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/numan98khan/igflow-simulator/internal/simulator"
	"github.com/numan98khan/igflow-simulator/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version          string
	store            storage.Store
	registry         *simulator.Registry
	engineConfigured bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, store storage.Store, registry *simulator.Registry, engineConfigured bool) *HealthHandler {
	return &HealthHandler{
		Version:          version,
		store:            store,
		registry:         registry,
		engineConfigured: engineConfigured,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	profileCount, err := h.store.CountProfiles()
	if err != nil {
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"services": fiber.Map{
			"storage":  err == nil,
			"engine":   h.engineConfigured,
			"sessions": h.registry.ActiveCount(),
			"profiles": profileCount,
		},
	})
}
