package simulator

import (
	"time"

	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/reconcile"
)

// SessionState is the cached view of one simulator session. Every
// field mirrors engine-owned data; the only local mutation is the
// optimistic message the controller appends before a send resolves.
// Not safe for concurrent use on its own; the controller locks around
// it.
type SessionState struct {
	Session     models.Session
	CurrentNode string

	Messages []models.Message
	Events   []models.Event

	SelectedAutomation *models.SelectedAutomation
	Diagnostics        []models.AutomationDiagnostic
}

// Apply folds an engine payload into the cached state. Absent fields
// (nil pointers / nil slices) leave the previous value untouched;
// explicitly empty fields clear it. Messages go through the
// reconciler, events through the append-only log merge.
func (s *SessionState) Apply(p *models.SessionPayload, window time.Duration) {
	if p == nil {
		return
	}

	if p.SessionID != nil {
		s.Session.ID = *p.SessionID
	}
	if p.Status != nil {
		s.Session.Status = *p.Status
	}
	if p.Variables != nil {
		s.Session.Variables = *p.Variables
	}
	if p.CurrentNode != nil {
		s.CurrentNode = *p.CurrentNode
	}

	if p.Messages != nil {
		s.Messages = reconcile.MergeMessages(s.Messages, p.Messages, window)
	}
	if p.Events != nil {
		s.Events = reconcile.MergeEvents(s.Events, p.Events)
	}

	// Diagnostics and selection are ephemeral per-turn data and travel
	// together; a payload carrying diagnostics replaces both.
	if p.Diagnostics != nil {
		s.Diagnostics = p.Diagnostics
		s.SelectedAutomation = p.SelectedAutomation
	} else if p.SelectedAutomation != nil {
		s.SelectedAutomation = p.SelectedAutomation
	}
}

// Clear wipes everything, used on explicit reset only
func (s *SessionState) Clear() {
	*s = SessionState{}
}

// MessageIDs returns the set of currently-known message ids
func (s *SessionState) MessageIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Messages))
	for _, m := range s.Messages {
		ids[m.ID] = true
	}
	return ids
}

// Empty reports whether the state holds no session or conversation
func (s *SessionState) Empty() bool {
	return s.Session.ID == "" && len(s.Messages) == 0 && len(s.Events) == 0
}

// AppendOptimistic adds the local echo of an operator message
func (s *SessionState) AppendOptimistic(m models.Message) {
	s.Messages = append(s.Messages, m)
}
