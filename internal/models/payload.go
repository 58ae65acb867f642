package models

// SessionPayload is the envelope returned by the engine for simulate,
// session-fetch and persona-sync calls. Pointer fields distinguish
// "absent" (leave the cached value alone) from "explicitly empty"
// (clear it): a persona-sync response that omits messages must not
// erase the conversation, while a reset response must.
type SessionPayload struct {
	SessionID   *string                 `json:"session_id,omitempty"`
	Status      *string                 `json:"status,omitempty"`
	Variables   *map[string]interface{} `json:"variables,omitempty"`
	CurrentNode *string                 `json:"current_node,omitempty"`

	Messages []Message `json:"messages,omitempty"`
	Events   []Event   `json:"events,omitempty"`

	// Selection and diagnostics travel together: both are recomputed
	// by the engine for every inbound message, so a payload carrying
	// diagnostics replaces the selection wholesale (including to nil).
	SelectedAutomation *SelectedAutomation    `json:"selected_automation,omitempty"`
	Diagnostics        []AutomationDiagnostic `json:"diagnostics,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HasNewAutomatedMessage reports whether the payload carries an
// automated message whose id is not in the baseline set
func (p *SessionPayload) HasNewAutomatedMessage(baseline map[string]bool) bool {
	if p == nil {
		return false
	}
	for _, m := range p.Messages {
		if m.IsAutomated() && !baseline[m.ID] {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the payload carries no session at all, the
// engine's answer when nothing is persisted for the workspace
func (p *SessionPayload) IsEmpty() bool {
	return p == nil || (p.SessionID == nil && p.Status == nil &&
		len(p.Messages) == 0 && len(p.Events) == 0)
}
