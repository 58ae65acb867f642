package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

const defaultRequestTimeout = 10 * time.Second

// HTTPClient calls the engine's REST API
type HTTPClient struct {
	baseURL string
	token   string
	timeout time.Duration
}

// NewHTTPClient builds a client from environment configuration
func NewHTTPClient() (*HTTPClient, error) {
	baseURL := os.Getenv("ENGINE_BASE_URL")
	token := os.Getenv("ENGINE_SERVICE_TOKEN")

	if baseURL == "" {
		return nil, fmt.Errorf("missing ENGINE_BASE_URL in environment variables")
	}
	if token == "" {
		log.Println("⚠️  ENGINE_SERVICE_TOKEN not set - engine calls will be unauthenticated")
	}

	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		timeout: defaultRequestTimeout,
	}, nil
}

// SimulateMessage sends one operator utterance through the engine
func (c *HTTPClient) SimulateMessage(ctx context.Context, req SimulateRequest) (*models.SessionPayload, error) {
	url := fmt.Sprintf("%s/v1/workspaces/%s/simulate", c.baseURL, req.WorkspaceID)
	var payload models.SessionPayload
	if err := c.do(ctx, fiber.MethodPost, url, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetSession fetches the persisted simulator session for a workspace.
// The engine answers with an empty payload when none exists.
func (c *HTTPClient) GetSession(ctx context.Context, workspaceID string) (*models.SessionPayload, error) {
	url := fmt.Sprintf("%s/v1/workspaces/%s/simulation", c.baseURL, workspaceID)
	var payload models.SessionPayload
	if err := c.do(ctx, fiber.MethodGet, url, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ResetSession asks the engine to discard the server-side session
func (c *HTTPClient) ResetSession(ctx context.Context, workspaceID, sessionID string) error {
	url := fmt.Sprintf("%s/v1/workspaces/%s/simulation/reset", c.baseURL, workspaceID)
	body := map[string]string{}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	return c.do(ctx, fiber.MethodPost, url, body, nil)
}

// UpdatePersona syncs a persona into a live session
func (c *HTTPClient) UpdatePersona(ctx context.Context, req PersonaSyncRequest) (*models.SessionPayload, error) {
	url := fmt.Sprintf("%s/v1/automations/%s/preview-persona", c.baseURL, req.AutomationID)
	var payload models.SessionPayload
	if err := c.do(ctx, fiber.MethodPost, url, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// do performs one JSON round trip via fiber's agent
func (c *HTTPClient) do(ctx context.Context, method, url string, body, out interface{}) error {
	agent := fiber.AcquireAgent()

	req := agent.Request()
	req.Header.SetMethod(method)
	req.Header.SetContentType(fiber.MIMEApplicationJSON)
	req.SetRequestURI(url)

	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		agent.JSON(body)
	}

	if err := agent.Parse(); err != nil {
		return fmt.Errorf("failed to prepare engine request: %w", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("engine request failed: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return &APIError{StatusCode: code, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode engine response: %w", err)
		}
	}
	return nil
}
