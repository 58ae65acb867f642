package simulator

import (
	"log"
	"sync"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/engine"
)

// Registry holds one Controller per workspace. Controllers are
// created on demand and dropped after sitting idle for the session
// TTL, cancelling any pending poll when they go.
type Registry struct {
	eng engine.Client
	cfg Config

	mu          sync.RWMutex
	controllers map[string]*Controller

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// NewRegistry creates a registry and starts its idle-cleanup routine
func NewRegistry(eng engine.Client, cfg Config) *Registry {
	if cfg.PollAttempts <= 0 {
		cfg = DefaultConfig()
	}
	r := &Registry{
		eng:         eng,
		cfg:         cfg,
		controllers: make(map[string]*Controller),
		stopCleanup: make(chan struct{}),
	}

	go r.cleanupIdleControllers()

	return r
}

// Get returns the workspace's controller, creating it if needed
func (r *Registry) Get(workspaceID string) *Controller {
	r.mu.RLock()
	ctrl, ok := r.controllers[workspaceID]
	r.mu.RUnlock()
	if ok {
		return ctrl
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ctrl, ok := r.controllers[workspaceID]; ok {
		return ctrl
	}
	ctrl = NewController(workspaceID, r.eng, r.cfg)
	r.controllers[workspaceID] = ctrl
	log.Printf("Simulator session opened for workspace %s", workspaceID)
	return ctrl
}

// Peek returns the controller only if one already exists
func (r *Registry) Peek(workspaceID string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctrl, ok := r.controllers[workspaceID]
	return ctrl, ok
}

// Remove tears down a workspace's controller
func (r *Registry) Remove(workspaceID string) {
	r.mu.Lock()
	ctrl, ok := r.controllers[workspaceID]
	if ok {
		delete(r.controllers, workspaceID)
	}
	r.mu.Unlock()

	if ok {
		ctrl.Shutdown()
	}
}

// ActiveCount returns the number of live controllers (for monitoring)
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}

// cleanupIdleControllers drops controllers idle beyond the TTL
func (r *Registry) cleanupIdleControllers() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCleanup:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-r.cfg.SessionTTL)

		r.mu.Lock()
		var expired []*Controller
		for id, ctrl := range r.controllers {
			if ctrl.LastActive().Before(cutoff) {
				expired = append(expired, ctrl)
				delete(r.controllers, id)
			}
		}
		r.mu.Unlock()

		for _, ctrl := range expired {
			ctrl.Shutdown()
			log.Printf("Cleaned up idle simulator session for workspace %s", ctrl.WorkspaceID())
		}
	}
}

// Shutdown stops the cleanup routine and tears down every controller
func (r *Registry) Shutdown() {
	r.cleanupOnce.Do(func() {
		close(r.stopCleanup)
	})

	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, ctrl := range r.controllers {
		controllers = append(controllers, ctrl)
	}
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()

	for _, ctrl := range controllers {
		ctrl.Shutdown()
	}
}
