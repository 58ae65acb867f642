package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numan98khan/igflow-simulator/internal/engine"
	"github.com/numan98khan/igflow-simulator/internal/handlers"
	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/routes"
	"github.com/numan98khan/igflow-simulator/internal/services"
	"github.com/numan98khan/igflow-simulator/internal/simulator"
	"github.com/numan98khan/igflow-simulator/internal/storage"
)

// fakeEngine answers every send with one automated reply
type fakeEngine struct{}

func (fakeEngine) SimulateMessage(_ context.Context, req engine.SimulateRequest) (*models.SessionPayload, error) {
	sessionID := "s1"
	status := models.StatusActive
	return &models.SessionPayload{
		SessionID: &sessionID,
		Status:    &status,
		Messages: []models.Message{
			{ID: "echo-1", From: models.SenderCustomer, Text: req.Text, CreatedAt: req.ClientSentAt},
			{ID: "bot-1", From: models.SenderAutomated, Text: "Welcome!", CreatedAt: req.ClientSentAt.Add(time.Second)},
		},
		SelectedAutomation: &models.SelectedAutomation{InstanceID: "a1", Name: "Welcome flow"},
		Diagnostics: []models.AutomationDiagnostic{
			{InstanceID: "a1", Name: "Welcome flow", Reason: "matched"},
		},
		Success: true,
	}, nil
}

func (fakeEngine) GetSession(context.Context, string) (*models.SessionPayload, error) {
	return &models.SessionPayload{Success: true}, nil
}

func (fakeEngine) ResetSession(context.Context, string, string) error { return nil }

func (fakeEngine) UpdatePersona(context.Context, engine.PersonaSyncRequest) (*models.SessionPayload, error) {
	return &models.SessionPayload{Success: true}, nil
}

func newTestApp(t *testing.T) (*fiber.App, storage.Store, *simulator.Registry) {
	t.Helper()

	cfg := simulator.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	cfg.PollAttempts = 1

	store := storage.NewMemoryStore()
	registry := simulator.NewRegistry(fakeEngine{}, cfg)
	t.Cleanup(registry.Shutdown)

	app := fiber.New()
	routes.SetupRoutes(app, registry, services.NewProfileService(store, registry))
	return app, store, registry
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestSendMessageEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/messages", fiber.Map{
		"text":          "book an appointment",
		"automation_id": "auto1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap simulator.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, models.StatusActive, snap.Status)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "Welcome!", snap.Messages[1].Text)
	require.NotNil(t, snap.SelectedAutomation)
	assert.Equal(t, "Welcome flow", snap.SelectedAutomation.Name)
	assert.False(t, snap.Polling)
}

func TestSendMessageRejectsBadBody(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/workspaces/ws1/simulator/messages", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetStateAndReset(t *testing.T) {
	app, _, _ := newTestApp(t)

	doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/messages", fiber.Map{"text": "hello"})

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/workspaces/ws1/simulator", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var snap simulator.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "s1", snap.SessionID)

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/reset", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var after simulator.Snapshot
	require.NoError(t, json.Unmarshal(raw, &after))
	assert.Empty(t, after.SessionID)
	assert.Empty(t, after.Messages)
}

func TestProfileCRUDEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	// Create
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/automations/auto1/profiles", fiber.Map{
		"name": "Ada", "handle": "@ada", "is_default": true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Profile models.PreviewProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.Profile.ID)

	// List
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/automations/auto1/profiles", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed struct {
		Profiles []models.PreviewProfile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed.Profiles, 1)

	// Update
	resp, _ = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/profiles/%s", created.Profile.ID), fiber.Map{
		"name": "Ada Lovelace", "handle": "@ada", "is_default": true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Duplicate
	resp, raw = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/profiles/%s/duplicate", created.Profile.ID), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var duplicated struct {
		Profile models.PreviewProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(raw, &duplicated))
	assert.Equal(t, "Ada Lovelace (copy)", duplicated.Profile.Name)

	// Delete the original; the copy is the only remaining profile.
	resp, raw = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/profiles/%s", created.Profile.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var deleted struct {
		Deleted  bool                       `json:"deleted"`
		Fallback services.FallbackSelection `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(raw, &deleted))
	assert.True(t, deleted.Deleted)
	assert.Equal(t, duplicated.Profile.ID, deleted.Fallback.ProfileID)
	assert.False(t, deleted.Fallback.CustomDraft)
}

func TestSelectPersonaEndpoint(t *testing.T) {
	app, _, registry := newTestApp(t)

	// Open a live session, then select a saved profile into it.
	doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/messages", fiber.Map{
		"text": "hello", "automation_id": "auto1",
	})

	_, raw := doJSON(t, app, fiber.MethodPost, "/api/automations/auto1/profiles", fiber.Map{
		"name": "Ada", "handle": "@ada",
	})
	var created struct {
		Profile models.PreviewProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/persona", fiber.Map{
		"automation_id": "auto1", "profile_id": created.Profile.ID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	ctrl, ok := registry.Peek("ws1")
	require.True(t, ok)
	assert.Equal(t, created.Profile.ID, ctrl.Snapshot().ProfileID)

	// Switching to a custom draft clears the selected profile id.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/workspaces/ws1/simulator/persona", fiber.Map{
		"automation_id": "auto1",
		"persona":       fiber.Map{"name": "Draft", "handle": "@draft"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, ctrl.Snapshot().ProfileID)
}

func TestProfileNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/profiles/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMissingProfileNameRejected(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/automations/auto1/profiles", fiber.Map{
		"handle": "@nameless",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDashboardKeyGuard(t *testing.T) {
	t.Setenv("DASHBOARD_API_KEY", "secret")
	app, _, _ := newTestApp(t)

	// Missing key
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/automations/auto1/profiles", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Wrong key
	req := httptest.NewRequest(fiber.MethodGet, "/api/automations/auto1/profiles", nil)
	req.Header.Set("X-Dashboard-Key", "wrong")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Correct key
	req = httptest.NewRequest(fiber.MethodGet, "/api/automations/auto1/profiles", nil)
	req.Header.Set("X-Dashboard-Key", "secret")
	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	cfg := simulator.DefaultConfig()
	store := storage.NewMemoryStore()
	registry := simulator.NewRegistry(fakeEngine{}, cfg)
	t.Cleanup(registry.Shutdown)

	app := fiber.New()
	app.Get("/health", handlers.NewHealthHandler("test", store, registry, true).Check)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status   string `json:"status"`
		Services struct {
			Storage bool `json:"storage"`
			Engine  bool `json:"engine"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.Services.Storage)
	assert.True(t, body.Services.Engine)
}
