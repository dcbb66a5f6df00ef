package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

type PresetService interface {
	ListAvailable(ctx context.Context, userID uuid.UUID) ([]*types.Preset, error)
	// Apply merges the preset's field overrides into the user's active
	// profile and bumps the preset usage counter. The counter update is best
	// effort and never rolls back the profile change.
	Apply(ctx context.Context, userID, presetID uuid.UUID) (*types.AccessibilityProfile, string, error)
}

type presetService struct {
	db             *gorm.DB
	log            *logger.Logger
	presetRepo     repos.PresetRepo
	profileService ProfileService
	usageService   UsageService
}

func NewPresetService(db *gorm.DB, baseLog *logger.Logger, presetRepo repos.PresetRepo, profileService ProfileService, usageService UsageService) PresetService {
	return &presetService{
		db:             db,
		log:            baseLog.With("service", "PresetService"),
		presetRepo:     presetRepo,
		profileService: profileService,
		usageService:   usageService,
	}
}

func (ps *presetService) ListAvailable(ctx context.Context, userID uuid.UUID) ([]*types.Preset, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	return ps.presetRepo.ListAvailable(ctx, nil, userID)
}

func (ps *presetService) Apply(ctx context.Context, userID, presetID uuid.UUID) (*types.AccessibilityProfile, string, error) {
	if userID == uuid.Nil {
		return nil, "", fmt.Errorf("user id required")
	}

	preset, err := ps.presetRepo.GetByID(ctx, nil, presetID)
	if err != nil {
		return nil, "", err
	}
	if preset == nil {
		return nil, "", apperr.NotFoundf("preset %s", presetID)
	}
	// Custom presets are only applicable by their creator.
	if !preset.System && (preset.CreatedByID == nil || *preset.CreatedByID != userID) {
		return nil, "", apperr.NotFoundf("preset %s", presetID)
	}

	var fieldValues map[string]any
	if err := json.Unmarshal(preset.Settings, &fieldValues); err != nil {
		return nil, "", fmt.Errorf("preset %q has malformed settings: %w", preset.Name, err)
	}

	profile, err := ps.profileService.MergeUpdate(ctx, userID, fieldValues)
	if err != nil {
		return nil, "", err
	}

	if err := ps.presetRepo.IncrementUsage(ctx, nil, preset.ID); err != nil {
		ps.log.Warn("Preset usage counter update failed", "preset", preset.Name, "error", err)
	}

	ps.usageService.Record(userID, "preset_applied", "", "", map[string]any{
		"preset_id":   preset.ID.String(),
		"preset_name": preset.Name,
	})

	message := fmt.Sprintf("Preset %q applied successfully", preset.Name)
	return profile, message, nil
}
