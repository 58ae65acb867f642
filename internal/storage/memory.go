package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// MemoryStore holds preview profiles in memory, for tests and local
// development
type MemoryStore struct {
	profiles map[string]*models.PreviewProfile

	mu      sync.RWMutex
	counter int
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.PreviewProfile),
	}
}

func (m *MemoryStore) CreateProfile(profile *models.PreviewProfile) (*models.PreviewProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	now := time.Now()

	created := *profile
	created.ID = fmt.Sprintf("PRF%05d", m.counter)
	created.CreatedAt = now
	created.UpdatedAt = now

	if created.IsDefault {
		m.clearDefaultLocked(created.AutomationID)
	}

	m.profiles[created.ID] = &created
	return &created, nil
}

func (m *MemoryStore) GetProfile(id string) (*models.PreviewProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, exists := m.profiles[id]
	if !exists {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *MemoryStore) GetProfilesByAutomation(automationID string) ([]*models.PreviewProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var profiles []*models.PreviewProfile
	for _, p := range m.profiles {
		if p.AutomationID == automationID {
			copied := *p
			profiles = append(profiles, &copied)
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (m *MemoryStore) UpdateProfile(profile *models.PreviewProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.profiles[profile.ID]
	if !exists {
		return ErrProfileNotFound
	}

	if profile.IsDefault && !existing.IsDefault {
		m.clearDefaultLocked(existing.AutomationID)
	}

	updated := *profile
	updated.AutomationID = existing.AutomationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	m.profiles[profile.ID] = &updated
	return nil
}

func (m *MemoryStore) DeleteProfile(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[id]; !exists {
		return ErrProfileNotFound
	}
	delete(m.profiles, id)
	return nil
}

func (m *MemoryStore) SetDefaultProfile(automationID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, exists := m.profiles[id]
	if !exists || profile.AutomationID != automationID {
		return ErrProfileNotFound
	}

	m.clearDefaultLocked(automationID)
	profile.IsDefault = true
	profile.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) CountProfiles() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.profiles)), nil
}

// clearDefaultLocked drops the default flag from every profile of the
// automation; callers hold the write lock
func (m *MemoryStore) clearDefaultLocked(automationID string) {
	for _, p := range m.profiles {
		if p.AutomationID == automationID && p.IsDefault {
			p.IsDefault = false
			p.UpdatedAt = time.Now()
		}
	}
}
