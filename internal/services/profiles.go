package services

import (
	"context"
	"fmt"
	"log"

	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/simulator"
	"github.com/numan98khan/igflow-simulator/internal/storage"
)

// ProfileService manages preview profiles (saved "mock customer"
// identities) for automations. Every selection, creation or
// duplication immediately tries to sync the resulting persona into
// the workspace's live simulator session, so the next send reflects
// the new identity without restarting the conversation.
type ProfileService struct {
	store    storage.Store
	registry *simulator.Registry
}

// FallbackSelection tells the caller which identity to select after a
// delete, so the UI never points at a nonexistent profile id
type FallbackSelection struct {
	ProfileID string                 `json:"profile_id,omitempty"`
	Profile   *models.PreviewProfile `json:"profile,omitempty"`
	// CustomDraft means no profiles remain and the simulator falls
	// back to an unsaved draft persona.
	CustomDraft bool `json:"custom_draft"`
}

// NewProfileService creates a new profile service
func NewProfileService(store storage.Store, registry *simulator.Registry) *ProfileService {
	return &ProfileService{
		store:    store,
		registry: registry,
	}
}

// List returns all preview profiles of an automation
func (s *ProfileService) List(automationID string) ([]*models.PreviewProfile, error) {
	return s.store.GetProfilesByAutomation(automationID)
}

// Create saves a new profile and syncs its persona into the live
// session, if the workspace has one
func (s *ProfileService) Create(ctx context.Context, workspaceID, automationID string, draft models.ProfileDraft) (*models.PreviewProfile, error) {
	profile := &models.PreviewProfile{
		AutomationID: automationID,
		Name:         draft.Name,
		Handle:       draft.Handle,
		UserID:       draft.UserID,
		AvatarURL:    draft.AvatarURL,
		IsDefault:    draft.IsDefault,
	}

	created, err := s.store.CreateProfile(profile)
	if err != nil {
		return nil, err
	}

	log.Printf("Preview profile %s created for automation %s", created.ID, automationID)
	s.syncPersona(ctx, workspaceID, automationID, created.ID, created.Persona())
	return created, nil
}

// Update edits a profile and syncs the new persona into the live
// session
func (s *ProfileService) Update(ctx context.Context, workspaceID, id string, draft models.ProfileDraft) (*models.PreviewProfile, error) {
	existing, err := s.store.GetProfile(id)
	if err != nil {
		return nil, err
	}

	existing.Name = draft.Name
	existing.Handle = draft.Handle
	existing.UserID = draft.UserID
	existing.AvatarURL = draft.AvatarURL
	existing.IsDefault = draft.IsDefault

	if err := s.store.UpdateProfile(existing); err != nil {
		return nil, err
	}

	s.syncPersona(ctx, workspaceID, existing.AutomationID, existing.ID, existing.Persona())
	return existing, nil
}

// Duplicate copies a profile under a new name. The copy is never the
// default. The copy becomes the synced identity.
func (s *ProfileService) Duplicate(ctx context.Context, workspaceID, id string) (*models.PreviewProfile, error) {
	source, err := s.store.GetProfile(id)
	if err != nil {
		return nil, err
	}

	copyProfile := &models.PreviewProfile{
		AutomationID: source.AutomationID,
		Name:         fmt.Sprintf("%s (copy)", source.Name),
		Handle:       source.Handle,
		UserID:       source.UserID,
		AvatarURL:    source.AvatarURL,
		IsDefault:    false,
	}

	created, err := s.store.CreateProfile(copyProfile)
	if err != nil {
		return nil, err
	}

	s.syncPersona(ctx, workspaceID, created.AutomationID, created.ID, created.Persona())
	return created, nil
}

// Delete removes a profile and returns the identity the caller should
// select next: the remaining default profile, else the first
// remaining profile, else an unsaved draft persona. When the deleted
// profile was the one selected in the workspace's live session, the
// fallback is synced into it as well.
func (s *ProfileService) Delete(ctx context.Context, workspaceID, id string) (*FallbackSelection, error) {
	profile, err := s.store.GetProfile(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteProfile(id); err != nil {
		return nil, err
	}
	log.Printf("Preview profile %s deleted for automation %s", id, profile.AutomationID)

	remaining, err := s.store.GetProfilesByAutomation(profile.AutomationID)
	if err != nil {
		return nil, err
	}
	fallback := pickFallback(remaining)

	if s.wasSelected(workspaceID, id) {
		if fallback.CustomDraft {
			s.syncPersona(ctx, workspaceID, profile.AutomationID, "", models.Persona{})
		} else {
			s.syncPersona(ctx, workspaceID, profile.AutomationID, fallback.ProfileID, fallback.Profile.Persona())
		}
	}

	return fallback, nil
}

// SetDefault marks a profile as its automation's default
func (s *ProfileService) SetDefault(ctx context.Context, id string) (*models.PreviewProfile, error) {
	profile, err := s.store.GetProfile(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetDefaultProfile(profile.AutomationID, id); err != nil {
		return nil, err
	}
	return s.store.GetProfile(id)
}

// Select makes a saved profile the active simulated identity
func (s *ProfileService) Select(ctx context.Context, workspaceID, id string) (*models.PreviewProfile, error) {
	profile, err := s.store.GetProfile(id)
	if err != nil {
		return nil, err
	}
	s.syncPersona(ctx, workspaceID, profile.AutomationID, profile.ID, profile.Persona())
	return profile, nil
}

// SelectCustom activates an unsaved draft persona: the selected
// profile id is cleared and the draft is pushed straight to the live
// session without persisting anything
func (s *ProfileService) SelectCustom(ctx context.Context, workspaceID, automationID string, persona models.Persona) {
	s.syncPersona(ctx, workspaceID, automationID, "", persona)
}

// syncPersona pushes an identity into the workspace's controller.
// Best-effort: with no live controller there is nothing to sync.
func (s *ProfileService) syncPersona(ctx context.Context, workspaceID, automationID, profileID string, persona models.Persona) {
	if workspaceID == "" || s.registry == nil {
		return
	}
	ctrl, ok := s.registry.Peek(workspaceID)
	if !ok {
		return
	}
	ctrl.SyncPersona(ctx, automationID, profileID, &persona)
}

// wasSelected reports whether the profile is the live session's
// current identity
func (s *ProfileService) wasSelected(workspaceID, profileID string) bool {
	if workspaceID == "" || s.registry == nil {
		return false
	}
	ctrl, ok := s.registry.Peek(workspaceID)
	if !ok {
		return false
	}
	return ctrl.Snapshot().ProfileID == profileID
}

// pickFallback applies the post-delete selection rule
func pickFallback(remaining []*models.PreviewProfile) *FallbackSelection {
	for _, p := range remaining {
		if p.IsDefault {
			return &FallbackSelection{ProfileID: p.ID, Profile: p}
		}
	}
	if len(remaining) > 0 {
		return &FallbackSelection{ProfileID: remaining[0].ID, Profile: remaining[0]}
	}
	return &FallbackSelection{CustomDraft: true}
}
