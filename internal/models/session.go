package models

// Session statuses reported by the automation engine
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusHandoff   = "handoff"
)

// Session is the engine-owned conversational state for one simulated
// customer interaction. The client holds a read-only cached copy and
// never mutates it locally.
type Session struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	Variables map[string]interface{} `json:"variables"`
}

// ValidTransition reports whether the engine is allowed to move a
// session from one status to another. The client never computes
// transitions itself; this exists for diagnostics and tests.
func ValidTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusActive:
		return to == StatusPaused || to == StatusCompleted || to == StatusHandoff
	case StatusPaused:
		return to == StatusActive || to == StatusCompleted
	case StatusHandoff:
		return to == StatusActive || to == StatusCompleted
	case StatusCompleted:
		return false
	}
	return false
}
