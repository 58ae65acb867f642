package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/numan98khan/igflow-simulator/internal/handlers"
	"github.com/numan98khan/igflow-simulator/internal/middleware"
	"github.com/numan98khan/igflow-simulator/internal/services"
	"github.com/numan98khan/igflow-simulator/internal/simulator"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, registry *simulator.Registry, profileService *services.ProfileService) {
	simulatorHandler := handlers.NewSimulatorHandler(registry)
	profileHandler := handlers.NewProfileHandler(profileService)

	api := app.Group("/api", middleware.RequireDashboardKey())

	// Simulator routes
	workspaces := api.Group("/workspaces/:workspaceId/simulator")
	workspaces.Get("/", simulatorHandler.GetState)
	workspaces.Post("/messages", simulatorHandler.SendMessage)
	workspaces.Post("/reset", simulatorHandler.Reset)
	workspaces.Post("/persona", profileHandler.SelectPersona)

	// Preview-profile routes
	automations := api.Group("/automations/:automationId/profiles")
	automations.Get("/", profileHandler.List)
	automations.Post("/", profileHandler.Create)

	profiles := api.Group("/profiles/:id")
	profiles.Put("/", profileHandler.Update)
	profiles.Post("/duplicate", profileHandler.Duplicate)
	profiles.Delete("/", profileHandler.Delete)
	profiles.Post("/default", profileHandler.SetDefault)
}
