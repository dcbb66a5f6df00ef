package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Preset type choices.
const (
	PresetTypeDyslexia  = "dyslexia"
	PresetTypeLowVision = "low_vision"
	PresetTypeMotor     = "motor"
	PresetTypeCognitive = "cognitive"
	PresetTypeCustom    = "custom"
)

// Preset is a named, reusable bundle of profile field overrides. Settings
// keys follow the profile's mutable field names; unknown keys are tolerated
// by the merge so older presets survive field renames.
type Preset struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description;not null" json:"description"`
	PresetType  string         `gorm:"column:preset_type;not null" json:"preset_type"`
	Settings    datatypes.JSON `gorm:"type:jsonb;column:settings;not null" json:"settings"`
	System      bool           `gorm:"column:is_system;not null;default:true" json:"is_system"`
	CreatedByID *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	CreatedBy   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CreatedByID;references:ID" json:"-"`
	UsageCount  int            `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Preset) TableName() string {
	return "accessibility_preset"
}
