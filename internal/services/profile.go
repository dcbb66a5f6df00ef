package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

type ProfileService interface {
	// GetOrCreateActive returns the user's active profile, lazily creating
	// version 1 with defaults on first access. Idempotent.
	GetOrCreateActive(ctx context.Context, userID uuid.UUID) (*types.AccessibilityProfile, error)
	// MergeUpdate applies the allow-listed subset of fieldValues to the
	// active profile. Unknown keys and invalid values are skipped. The
	// version increments once iff at least one field applied.
	MergeUpdate(ctx context.Context, userID uuid.UUID, fieldValues map[string]any) (*types.AccessibilityProfile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	createGroup singleflight.Group
}

func NewProfileService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{
		db:          db,
		log:         baseLog.With("service", "ProfileService"),
		profileRepo: profileRepo,
	}
}

// fieldApplier validates a submitted value and, when valid, writes it onto
// the profile. Returns false for values of the wrong type or out of range.
type fieldApplier func(p *types.AccessibilityProfile, value any) bool

// profileFields is the explicit allow-list of mutable profile fields.
// Identifiers, version and the active flag are deliberately absent: merge
// input can never reach them.
var profileFields = map[string]fieldApplier{
	"contrast_level": intField(50, 200, func(p *types.AccessibilityProfile, v int) { p.ContrastLevel = v }),
	"text_size":      floatField(0.5, 3.0, func(p *types.AccessibilityProfile, v float64) { p.TextSize = v }),
	"line_height":    floatField(1.0, 3.0, func(p *types.AccessibilityProfile, v float64) { p.LineHeight = v }),
	"letter_spacing": floatField(0.0, 1.0, func(p *types.AccessibilityProfile, v float64) { p.LetterSpacing = v }),
	"cursor_size":    floatField(0.5, 3.0, func(p *types.AccessibilityProfile, v float64) { p.CursorSize = v }),
	"color_blindness_filter": enumField(
		[]string{types.FilterNone, types.FilterProtanopia, types.FilterDeuteranopia, types.FilterTritanopia},
		func(p *types.AccessibilityProfile, v string) { p.ColorBlindnessFilter = v },
	),
	"highlight_links":     boolField(func(p *types.AccessibilityProfile, v bool) { p.HighlightLinks = v }),
	"dark_mode":           boolField(func(p *types.AccessibilityProfile, v bool) { p.DarkMode = v }),
	"dyslexia_font":       boolField(func(p *types.AccessibilityProfile, v bool) { p.DyslexiaFont = v }),
	"pause_animations":    boolField(func(p *types.AccessibilityProfile, v bool) { p.PauseAnimations = v }),
	"hide_images":         boolField(func(p *types.AccessibilityProfile, v bool) { p.HideImages = v }),
	"reading_mode":        boolField(func(p *types.AccessibilityProfile, v bool) { p.ReadingMode = v }),
	"voice_control":       boolField(func(p *types.AccessibilityProfile, v bool) { p.VoiceControl = v }),
	"ai_suggestions":      boolField(func(p *types.AccessibilityProfile, v bool) { p.AISuggestions = v }),
	"keyboard_navigation": boolField(func(p *types.AccessibilityProfile, v bool) { p.KeyboardNavigation = v }),
}

func intField(min, max int, set func(*types.AccessibilityProfile, int)) fieldApplier {
	return func(p *types.AccessibilityProfile, value any) bool {
		f, ok := asFloat(value)
		if !ok || f != float64(int(f)) {
			return false
		}
		n := int(f)
		if n < min || n > max {
			return false
		}
		set(p, n)
		return true
	}
}

func floatField(min, max float64, set func(*types.AccessibilityProfile, float64)) fieldApplier {
	return func(p *types.AccessibilityProfile, value any) bool {
		f, ok := asFloat(value)
		if !ok || f < min || f > max {
			return false
		}
		set(p, f)
		return true
	}
}

func boolField(set func(*types.AccessibilityProfile, bool)) fieldApplier {
	return func(p *types.AccessibilityProfile, value any) bool {
		b, ok := value.(bool)
		if !ok {
			return false
		}
		set(p, b)
		return true
	}
}

func enumField(allowed []string, set func(*types.AccessibilityProfile, string)) fieldApplier {
	return func(p *types.AccessibilityProfile, value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, candidate := range allowed {
			if s == candidate {
				set(p, s)
				return true
			}
		}
		return false
	}
}

// asFloat accepts the numeric shapes JSON and YAML decoding produce.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// defaultProfile is the documented version-1 state of a fresh profile.
func defaultProfile(userID uuid.UUID) *types.AccessibilityProfile {
	return &types.AccessibilityProfile{
		ID:                   uuid.New(),
		UserID:               userID,
		ContrastLevel:        100,
		TextSize:             1.0,
		LineHeight:           1.5,
		LetterSpacing:        0.0,
		CursorSize:           1.0,
		ColorBlindnessFilter: types.FilterNone,
		AISuggestions:        true,
		Version:              1,
		Active:               true,
	}
}

func (ps *profileService) GetOrCreateActive(ctx context.Context, userID uuid.UUID) (*types.AccessibilityProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}

	// singleflight collapses racing first-reads for the same user into one
	// create, on top of the transactional re-check below.
	result, err, _ := ps.createGroup.Do(userID.String(), func() (any, error) {
		var profile *types.AccessibilityProfile
		err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := ps.profileRepo.GetActiveByUserID(ctx, tx, userID)
			if err != nil {
				return err
			}
			if existing != nil {
				profile = existing
				return nil
			}
			created, err := ps.profileRepo.Create(ctx, tx, defaultProfile(userID))
			if err != nil {
				return err
			}
			ps.log.Info("Created accessibility profile", "user_id", userID, "version", created.Version)
			profile = created
			return nil
		})
		if err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.AccessibilityProfile), nil
}

func (ps *profileService) MergeUpdate(ctx context.Context, userID uuid.UUID, fieldValues map[string]any) (*types.AccessibilityProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}

	var profile *types.AccessibilityProfile
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ps.profileRepo.GetActiveForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			current, err = ps.profileRepo.Create(ctx, tx, defaultProfile(userID))
			if err != nil {
				return err
			}
		}

		applied := 0
		for key, value := range fieldValues {
			applier, known := profileFields[key]
			if !known {
				ps.log.Debug("Skipping unknown profile field", "field", key)
				continue
			}
			if !applier(current, value) {
				ps.log.Debug("Skipping invalid profile field value", "field", key)
				continue
			}
			applied++
		}

		// No-op merges return the profile unchanged; they are not errors.
		if applied == 0 {
			profile = current
			return nil
		}

		current.Version++
		if err := ps.profileRepo.Save(ctx, tx, current); err != nil {
			return err
		}
		profile = current
		return nil
	})
	if err != nil {
		ps.log.Warn("Profile merge failed", "user_id", userID, "error", err)
		return nil, err
	}
	return profile, nil
}
