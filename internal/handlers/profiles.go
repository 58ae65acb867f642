package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/services"
	"github.com/numan98khan/igflow-simulator/internal/storage"
)

// ProfileHandler exposes preview-profile CRUD to the dashboard UI.
// Mutating endpoints accept a workspace_id query parameter naming the
// live simulator session the new identity should be synced into.
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// List returns all profiles of an automation
func (h *ProfileHandler) List(c *fiber.Ctx) error {
	automationID := c.Params("automationId")

	profiles, err := h.service.List(automationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list profiles",
		})
	}
	if profiles == nil {
		profiles = []*models.PreviewProfile{}
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

// Create saves a new profile
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	automationID := c.Params("automationId")

	var draft models.ProfileDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if draft.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Profile name is required",
		})
	}

	profile, err := h.service.Create(c.UserContext(), c.Query("workspace_id"), automationID, draft)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create profile",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

// Update edits an existing profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var draft models.ProfileDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	profile, err := h.service.Update(c.UserContext(), c.Query("workspace_id"), c.Params("id"), draft)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// Duplicate copies a profile
func (h *ProfileHandler) Duplicate(c *fiber.Ctx) error {
	profile, err := h.service.Duplicate(c.UserContext(), c.Query("workspace_id"), c.Params("id"))
	if err != nil {
		return profileError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

// Delete removes a profile and tells the UI which identity to select
// next
func (h *ProfileHandler) Delete(c *fiber.Ctx) error {
	fallback, err := h.service.Delete(c.UserContext(), c.Query("workspace_id"), c.Params("id"))
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(fiber.Map{
		"deleted":  true,
		"fallback": fallback,
	})
}

// SelectPersona makes a saved profile or an unsaved draft persona the
// workspace's active simulated identity. An empty profile_id means
// "custom": the selected-profile id clears and the draft is pushed
// straight to the live session without persisting anything.
func (h *ProfileHandler) SelectPersona(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")

	var req struct {
		AutomationID string          `json:"automation_id"`
		ProfileID    string          `json:"profile_id"`
		Persona      *models.Persona `json:"persona"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ProfileID != "" {
		profile, err := h.service.Select(c.UserContext(), workspaceID, req.ProfileID)
		if err != nil {
			return profileError(c, err)
		}
		return c.JSON(fiber.Map{"profile": profile})
	}

	var persona models.Persona
	if req.Persona != nil {
		persona = *req.Persona
	}
	h.service.SelectCustom(c.UserContext(), workspaceID, req.AutomationID, persona)
	return c.JSON(fiber.Map{"custom": true})
}

// SetDefault marks a profile as its automation's default
func (h *ProfileHandler) SetDefault(c *fiber.Ctx) error {
	profile, err := h.service.SetDefault(c.UserContext(), c.Params("id"))
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func profileError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Profile operation failed",
	})
}
