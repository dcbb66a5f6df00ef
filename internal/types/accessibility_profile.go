package types

import (
	"time"

	"github.com/google/uuid"
)

// Color blindness filter choices for AccessibilityProfile.ColorBlindnessFilter.
const (
	FilterNone         = "none"
	FilterProtanopia   = "protanopia"
	FilterDeuteranopia = "deuteranopia"
	FilterTritanopia   = "tritanopia"
)

// AccessibilityProfile is a user's versioned set of accessibility adjustment
// values. Exactly one row per user carries Active=true; superseded rows are
// deactivated, never deleted. Version starts at 1 and only ever increases.
type AccessibilityProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	// Visual adjustments
	ContrastLevel  int     `gorm:"column:contrast_level;not null;default:100" json:"contrast_level"`
	TextSize       float64 `gorm:"column:text_size;not null;default:1.0" json:"text_size"`
	LineHeight     float64 `gorm:"column:line_height;not null;default:1.5" json:"line_height"`
	LetterSpacing  float64 `gorm:"column:letter_spacing;not null;default:0.0" json:"letter_spacing"`
	HighlightLinks bool    `gorm:"column:highlight_links;not null;default:false" json:"highlight_links"`

	// Color and theme
	DarkMode             bool   `gorm:"column:dark_mode;not null;default:false" json:"dark_mode"`
	ColorBlindnessFilter string `gorm:"column:color_blindness_filter;not null;default:'none'" json:"color_blindness_filter"`

	// Behavior controls
	DyslexiaFont    bool `gorm:"column:dyslexia_font;not null;default:false" json:"dyslexia_font"`
	PauseAnimations bool `gorm:"column:pause_animations;not null;default:false" json:"pause_animations"`
	HideImages      bool `gorm:"column:hide_images;not null;default:false" json:"hide_images"`
	ReadingMode     bool `gorm:"column:reading_mode;not null;default:false" json:"reading_mode"`

	// Interface tools
	CursorSize         float64 `gorm:"column:cursor_size;not null;default:1.0" json:"cursor_size"`
	VoiceControl       bool    `gorm:"column:voice_control;not null;default:false" json:"voice_control"`
	AISuggestions      bool    `gorm:"column:ai_suggestions;not null;default:true" json:"ai_suggestions"`
	KeyboardNavigation bool    `gorm:"column:keyboard_navigation;not null;default:false" json:"keyboard_navigation"`

	// Metadata
	Version   int       `gorm:"column:version;not null;default:1" json:"version"`
	Active    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AccessibilityProfile) TableName() string {
	return "accessibility_profile"
}
