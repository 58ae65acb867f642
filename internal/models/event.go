package models

import "time"

// Event types emitted by the flow executor
const (
	EventNodeStart    = "node_start"
	EventNodeComplete = "node_complete"
	EventFieldSet     = "field_set"
	EventFieldCleared = "field_cleared"
	EventTagAdded     = "tag_added"
	EventTagRemoved   = "tag_removed"
	EventError        = "error"
	EventInfo         = "info"
)

// Event is one execution milestone in the current session. The event
// log is append-only: events are deduplicated by id and the log only
// grows until an explicit reset.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	CreatedAt time.Time              `json:"created_at"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
