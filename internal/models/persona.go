package models

import "time"

// Persona is the simulated customer identity presented to the
// flow-matching logic. It is not persisted unless saved as a
// PreviewProfile.
type Persona struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	UserID    string `json:"user_id"`
	AvatarURL string `json:"avatar_url"`
}

// PreviewProfile is a saved, named Persona owned by one automation.
// At most one profile per automation has IsDefault set; the store
// enforces that.
type PreviewProfile struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	AutomationID string    `json:"automation_id" gorm:"index"`
	Name         string    `json:"name"`
	Handle       string    `json:"handle"`
	UserID       string    `json:"user_id"`
	AvatarURL    string    `json:"avatar_url"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Persona returns the identity carried by the profile
func (p *PreviewProfile) Persona() Persona {
	return Persona{
		Name:      p.Name,
		Handle:    p.Handle,
		UserID:    p.UserID,
		AvatarURL: p.AvatarURL,
	}
}

// ProfileDraft carries the editable fields for create/update
type ProfileDraft struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	UserID    string `json:"user_id"`
	AvatarURL string `json:"avatar_url"`
	IsDefault bool   `json:"is_default"`
}
