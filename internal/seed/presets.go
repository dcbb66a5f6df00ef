// Package seed ships the system preset catalog and installs it at startup.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

//go:embed presets.yaml
var presetsYAML []byte

type presetSpec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	PresetType  string         `yaml:"preset_type"`
	Settings    map[string]any `yaml:"settings"`
}

type catalog struct {
	Presets []presetSpec `yaml:"presets"`
}

// SystemPresets decodes the embedded catalog into persistable rows.
func SystemPresets() ([]*types.Preset, error) {
	var cat catalog
	if err := yaml.Unmarshal(presetsYAML, &cat); err != nil {
		return nil, fmt.Errorf("decode preset catalog: %w", err)
	}
	out := make([]*types.Preset, 0, len(cat.Presets))
	for _, spec := range cat.Presets {
		if spec.Name == "" || len(spec.Settings) == 0 {
			return nil, fmt.Errorf("preset catalog entry %q is incomplete", spec.Name)
		}
		raw, err := json.Marshal(spec.Settings)
		if err != nil {
			return nil, fmt.Errorf("encode settings for preset %q: %w", spec.Name, err)
		}
		out = append(out, &types.Preset{
			ID:          uuid.New(),
			Name:        spec.Name,
			Description: spec.Description,
			PresetType:  spec.PresetType,
			Settings:    datatypes.JSON(raw),
			System:      true,
		})
	}
	return out, nil
}

// EnsurePresets creates any system preset that is not already installed.
// Existing rows are left alone so usage counters survive restarts.
func EnsurePresets(ctx context.Context, presetRepo repos.PresetRepo, log *logger.Logger) error {
	presets, err := SystemPresets()
	if err != nil {
		return err
	}
	created := 0
	for _, preset := range presets {
		existing, err := presetRepo.GetByName(ctx, nil, preset.Name)
		if err != nil {
			return fmt.Errorf("look up preset %q: %w", preset.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := presetRepo.Create(ctx, nil, []*types.Preset{preset}); err != nil {
			return fmt.Errorf("create preset %q: %w", preset.Name, err)
		}
		created++
	}
	if created > 0 {
		log.Info("Seeded system presets", "created", created)
	}
	return nil
}
