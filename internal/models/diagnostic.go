package models

// AutomationDiagnostic explains, for one candidate automation, why it
// was or was not chosen for the current inbound message. Diagnostics
// are recomputed on every send and never merged across turns.
type AutomationDiagnostic struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"` // e.g. "trigger type mismatch", "no published version"
}

// SelectedAutomation identifies the automation the engine matched for
// the last inbound message
type SelectedAutomation struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
}
