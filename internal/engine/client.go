// Package engine talks to the remote automation-execution service:
// the system that actually matches triggers, walks the flow graph and
// produces replies. This service only consumes its session payloads.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// SimulateRequest carries one operator utterance into the engine
type SimulateRequest struct {
	WorkspaceID  string          `json:"workspace_id"`
	AutomationID string          `json:"automation_id,omitempty"`
	Text         string          `json:"text"`
	SessionID    string          `json:"session_id,omitempty"`
	Reset        bool            `json:"reset,omitempty"`
	ProfileID    string          `json:"profile_id,omitempty"`
	Persona      *models.Persona `json:"persona,omitempty"`
	// ClientSentAt lets the engine correlate the optimistic local echo
	// with the message it persists.
	ClientSentAt time.Time `json:"client_sent_at"`
}

// PersonaSyncRequest pushes a new simulated identity into a live
// session without restarting the conversation
type PersonaSyncRequest struct {
	AutomationID string          `json:"automation_id"`
	SessionID    string          `json:"session_id"`
	ProfileID    string          `json:"profile_id,omitempty"`
	Persona      *models.Persona `json:"persona,omitempty"`
}

// Client is the boundary to the automation-execution engine
type Client interface {
	SimulateMessage(ctx context.Context, req SimulateRequest) (*models.SessionPayload, error)
	GetSession(ctx context.Context, workspaceID string) (*models.SessionPayload, error)
	ResetSession(ctx context.Context, workspaceID, sessionID string) error
	UpdatePersona(ctx context.Context, req PersonaSyncRequest) (*models.SessionPayload, error)
}

// APIError is a non-2xx answer from the engine
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine returned status %d: %s", e.StatusCode, e.Body)
}
