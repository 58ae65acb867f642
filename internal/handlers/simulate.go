package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/simulator"
)

// SimulatorHandler exposes the simulator to the dashboard UI
type SimulatorHandler struct {
	registry *simulator.Registry
}

// NewSimulatorHandler creates a new simulator handler
func NewSimulatorHandler(registry *simulator.Registry) *SimulatorHandler {
	return &SimulatorHandler{registry: registry}
}

// SendMessageRequest is the dashboard's send payload
type SendMessageRequest struct {
	Text         string          `json:"text"`
	AutomationID string          `json:"automation_id"`
	ProfileID    string          `json:"profile_id"`
	Persona      *models.Persona `json:"persona"`
}

// SendMessage runs one simulated customer message through the flow.
// Send failures come back as data on the snapshot, not as HTTP errors.
func (h *SimulatorHandler) SendMessage(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl := h.registry.Get(workspaceID)
	snapshot := ctrl.Send(c.UserContext(), simulator.SendRequest{
		Text:         req.Text,
		AutomationID: req.AutomationID,
		ProfileID:    req.ProfileID,
		Persona:      req.Persona,
	})

	return c.JSON(snapshot)
}

// GetState returns the workspace's simulator snapshot, hydrating from
// the engine on first access
func (h *SimulatorHandler) GetState(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")
	ctrl := h.registry.Get(workspaceID)
	return c.JSON(ctrl.Hydrate(c.UserContext()))
}

// Reset discards the workspace's simulator session
func (h *SimulatorHandler) Reset(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")
	ctrl := h.registry.Get(workspaceID)
	return c.JSON(ctrl.Reset(c.UserContext()))
}
