package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/numan98khan/igflow-simulator/internal/models"
)

// DatabaseStore persists preview profiles in PostgreSQL via gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) CreateProfile(profile *models.PreviewProfile) (*models.PreviewProfile, error) {
	created := *profile
	created.ID = uuid.NewString()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if created.IsDefault {
			if err := clearDefault(tx, created.AutomationID); err != nil {
				return err
			}
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create preview profile: %w", err)
	}
	return &created, nil
}

func (s *DatabaseStore) GetProfile(id string) (*models.PreviewProfile, error) {
	var profile models.PreviewProfile
	if err := s.db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *DatabaseStore) GetProfilesByAutomation(automationID string) ([]*models.PreviewProfile, error) {
	var profiles []*models.PreviewProfile
	err := s.db.
		Where("automation_id = ?", automationID).
		Order("created_at asc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *DatabaseStore) UpdateProfile(profile *models.PreviewProfile) error {
	existing, err := s.GetProfile(profile.ID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if profile.IsDefault && !existing.IsDefault {
			if err := clearDefault(tx, existing.AutomationID); err != nil {
				return err
			}
		}
		profile.AutomationID = existing.AutomationID
		profile.CreatedAt = existing.CreatedAt
		return tx.Save(profile).Error
	})
}

func (s *DatabaseStore) DeleteProfile(id string) error {
	result := s.db.Delete(&models.PreviewProfile{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *DatabaseStore) SetDefaultProfile(automationID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.PreviewProfile
		if err := tx.First(&profile, "id = ? AND automation_id = ?", id, automationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if err := clearDefault(tx, automationID); err != nil {
			return err
		}
		return tx.Model(&profile).Update("is_default", true).Error
	})
}

func (s *DatabaseStore) CountProfiles() (int64, error) {
	var count int64
	if err := s.db.Model(&models.PreviewProfile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// clearDefault drops the default flag from every profile of the
// automation inside the caller's transaction
func clearDefault(tx *gorm.DB, automationID string) error {
	return tx.Model(&models.PreviewProfile{}).
		Where("automation_id = ? AND is_default = ?", automationID, true).
		Update("is_default", false).Error
}
