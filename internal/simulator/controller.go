package simulator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/engine"
	"github.com/numan98khan/igflow-simulator/internal/models"
)

// Controller orchestrates one workspace's simulator session: it owns
// the cached state, drives sends and resets against the engine, runs
// reconciliation and arms the poll scheduler when a reply is still
// pending. Operations are serialized; a failed send never throws into
// callers - every failure ends up as data on the Snapshot.
type Controller struct {
	workspaceID string
	eng         engine.Client
	cfg         Config
	scheduler   *PollScheduler

	// opMu serializes send/reset/sync cycles end to end, including
	// the network leg. mu guards the cached state for short reads.
	opMu sync.Mutex
	mu   sync.Mutex

	// epoch invalidates in-flight work: every send, reset or teardown
	// bumps it, and late poll or sync results from an older epoch are
	// discarded instead of resurrecting stale state.
	epoch uint64

	state        SessionState
	automationID string
	profileID    string
	persona      *models.Persona
	fresh        bool // next send starts a new server-side session
	hydrated     bool
	sending      bool
	lastError    string
	lastActive   time.Time
}

// SendRequest is one operator utterance plus the identity it should
// be attributed to
type SendRequest struct {
	Text         string
	AutomationID string
	ProfileID    string
	Persona      *models.Persona
}

// Snapshot is the controller's state as plain data, safe to hand to
// rendering code
type Snapshot struct {
	WorkspaceID string                 `json:"workspace_id"`
	SessionID   string                 `json:"session_id,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	CurrentNode string                 `json:"current_node,omitempty"`

	Messages []models.Message `json:"messages"`
	Events   []models.Event   `json:"events"`

	SelectedAutomation *models.SelectedAutomation    `json:"selected_automation,omitempty"`
	Diagnostics        []models.AutomationDiagnostic `json:"diagnostics,omitempty"`

	ProfileID string          `json:"profile_id,omitempty"`
	Persona   *models.Persona `json:"persona,omitempty"`

	Sending bool   `json:"sending"`
	Polling bool   `json:"polling"`
	Error   string `json:"error,omitempty"`
}

// NewController creates a controller for one workspace
func NewController(workspaceID string, eng engine.Client, cfg Config) *Controller {
	if cfg.PollAttempts <= 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		workspaceID: workspaceID,
		eng:         eng,
		cfg:         cfg,
		scheduler:   NewPollScheduler(cfg.PollInterval),
		lastActive:  time.Now(),
	}
}

// Send runs one simulated customer message through the engine.
// Empty or whitespace-only text is a no-op, not an error. The
// optimistic echo is appended before the network call and survives a
// failed send.
func (c *Controller) Send(ctx context.Context, req SendRequest) Snapshot {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.Snapshot()
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	// A pending poll from the previous send must not overwrite what
	// this send is about to learn.
	c.scheduler.Cancel()

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.sending = true
	c.lastError = ""
	c.touchLocked()
	if req.AutomationID != "" {
		c.automationID = req.AutomationID
	}
	if req.ProfileID != "" || req.Persona != nil {
		c.profileID = req.ProfileID
		c.persona = req.Persona
	}

	// Baseline before the optimistic append: a reply is "new" when
	// its id was unknown at send time.
	baseline := c.state.MessageIDs()

	sentAt := time.Now()
	c.state.AppendOptimistic(models.NewOptimisticMessage(text, sentAt))

	simReq := engine.SimulateRequest{
		WorkspaceID:  c.workspaceID,
		AutomationID: c.automationID,
		Text:         text,
		SessionID:    c.state.Session.ID,
		Reset:        c.fresh,
		ProfileID:    c.profileID,
		Persona:      c.persona,
		ClientSentAt: sentAt,
	}
	c.mu.Unlock()

	payload, err := c.eng.SimulateMessage(ctx, simReq)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false

	if c.epoch != epoch {
		// A reset or teardown raced this send; its result is stale.
		return c.snapshotLocked()
	}

	if err != nil {
		log.Printf("❌ Simulate send failed for workspace %s: %v", c.workspaceID, err)
		c.lastError = "Message could not be delivered. Please try again."
		return c.snapshotLocked()
	}

	c.fresh = false
	c.state.Apply(payload, c.cfg.DuplicateWindow)

	if !payload.Success {
		if payload.Error != "" {
			c.lastError = payload.Error
		} else {
			c.lastError = "No automation matched this message."
		}
	}

	if !payload.HasNewAutomatedMessage(baseline) {
		c.armSchedulerLocked(epoch, baseline)
	}

	return c.snapshotLocked()
}

// armSchedulerLocked starts the bounded re-fetch loop. Poll failures
// are swallowed: one network blip must not abort the retry budget.
func (c *Controller) armSchedulerLocked(epoch uint64, baseline map[string]bool) {
	poll := func() bool {
		payload, err := c.eng.GetSession(context.Background(), c.workspaceID)
		if err != nil {
			log.Printf("⚠️  Simulator poll failed for workspace %s: %v", c.workspaceID, err)
			return false
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return true // superseded; drop the result and stop
		}
		c.state.Apply(payload, c.cfg.DuplicateWindow)
		return payload.HasNewAutomatedMessage(baseline)
	}

	c.scheduler.Schedule(c.cfg.PollAttempts, poll)
}

// Reset discards the session. The engine call is best-effort: a
// failure is logged and local state is cleared regardless.
func (c *Controller) Reset(ctx context.Context) Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.scheduler.Cancel()

	c.mu.Lock()
	c.epoch++
	sessionID := c.state.Session.ID
	c.touchLocked()
	c.mu.Unlock()

	if err := c.eng.ResetSession(ctx, c.workspaceID, sessionID); err != nil {
		log.Printf("⚠️  Engine reset failed for workspace %s (continuing): %v", c.workspaceID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Clear()
	c.sending = false
	c.lastError = ""
	c.fresh = true
	return c.snapshotLocked()
}

// Hydrate loads the persisted session from the engine the first time
// a workspace's simulator view opens. Later calls just snapshot.
func (c *Controller) Hydrate(ctx context.Context) Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.hydrated || !c.state.Empty() {
		defer c.mu.Unlock()
		c.touchLocked()
		return c.snapshotLocked()
	}
	epoch := c.epoch
	c.touchLocked()
	c.mu.Unlock()

	payload, err := c.eng.GetSession(ctx, c.workspaceID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hydrated = true
	if err != nil {
		log.Printf("⚠️  Session hydrate failed for workspace %s: %v", c.workspaceID, err)
		return c.snapshotLocked()
	}
	if c.epoch == epoch && !payload.IsEmpty() {
		c.state.Apply(payload, c.cfg.DuplicateWindow)
	}
	return c.snapshotLocked()
}

// SyncPersona pushes a new simulated identity into the live session,
// so the next send reflects it without restarting the conversation.
// With no session yet, the identity is just remembered for the next
// send. A failed sync is logged, never surfaced.
func (c *Controller) SyncPersona(ctx context.Context, automationID, profileID string, persona *models.Persona) Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if automationID != "" {
		c.automationID = automationID
	}
	c.profileID = profileID
	c.persona = persona
	c.touchLocked()
	sessionID := c.state.Session.ID
	epoch := c.epoch
	c.mu.Unlock()

	if sessionID == "" {
		return c.Snapshot()
	}

	payload, err := c.eng.UpdatePersona(ctx, engine.PersonaSyncRequest{
		AutomationID: automationID,
		SessionID:    sessionID,
		ProfileID:    profileID,
		Persona:      persona,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Printf("⚠️  Persona sync failed for workspace %s: %v", c.workspaceID, err)
		return c.snapshotLocked()
	}
	if c.epoch == epoch {
		c.state.Apply(payload, c.cfg.DuplicateWindow)
	}
	return c.snapshotLocked()
}

// Snapshot returns the current state as plain data
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		WorkspaceID:        c.workspaceID,
		SessionID:          c.state.Session.ID,
		Status:             c.state.Session.Status,
		Variables:          c.state.Session.Variables,
		CurrentNode:        c.state.CurrentNode,
		Messages:           append([]models.Message(nil), c.state.Messages...),
		Events:             append([]models.Event(nil), c.state.Events...),
		SelectedAutomation: c.state.SelectedAutomation,
		Diagnostics:        append([]models.AutomationDiagnostic(nil), c.state.Diagnostics...),
		ProfileID:          c.profileID,
		Persona:            c.persona,
		Sending:            c.sending,
		Polling:            c.scheduler.Pending(),
		Error:              c.lastError,
	}
	if snap.Messages == nil {
		snap.Messages = []models.Message{}
	}
	if snap.Events == nil {
		snap.Events = []models.Event{}
	}
	return snap
}

// WorkspaceID returns the workspace this controller belongs to
func (c *Controller) WorkspaceID() string {
	return c.workspaceID
}

// LastActive reports when the controller last served a request
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) touchLocked() {
	c.lastActive = time.Now()
}

// Shutdown cancels pending polls and invalidates in-flight work
func (c *Controller) Shutdown() {
	c.scheduler.Cancel()
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
}
