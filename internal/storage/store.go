package storage

import (
	"errors"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// ErrProfileNotFound is returned for unknown profile ids
var ErrProfileNotFound = errors.New("preview profile not found")

// Store defines the interface for preview-profile persistence.
// Implementations own the invariant that at most one profile per
// automation is marked default.
type Store interface {
	CreateProfile(profile *models.PreviewProfile) (*models.PreviewProfile, error)
	GetProfile(id string) (*models.PreviewProfile, error)
	GetProfilesByAutomation(automationID string) ([]*models.PreviewProfile, error)
	UpdateProfile(profile *models.PreviewProfile) error
	DeleteProfile(id string) error
	SetDefaultProfile(automationID, id string) error
	CountProfiles() (int64, error)
}
