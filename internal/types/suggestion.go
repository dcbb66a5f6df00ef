package types

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion type choices.
const (
	SuggestionVisual    = "visual"
	SuggestionBehavior  = "behavior"
	SuggestionInterface = "interface"
	SuggestionPreset    = "preset"
)

// Suggestion priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Suggestion is a ranked, explainable recommendation derived from issues,
// score and profile state. The synthesizer creates rows; only the lifecycle
// operations (apply/dismiss/feedback) mutate them afterwards.
type Suggestion struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	Title          string `gorm:"column:title;not null" json:"title"`
	Description    string `gorm:"column:description;not null" json:"description"`
	SuggestionType string `gorm:"column:suggestion_type;not null" json:"suggestion_type"`

	Domain string `gorm:"column:domain" json:"domain"`
	URL    string `gorm:"column:url" json:"url"`

	Confidence float64 `gorm:"column:confidence_score;not null;default:0" json:"confidence_score"`
	Priority   string  `gorm:"column:priority;not null;default:'medium'" json:"priority"`

	Applied   bool       `gorm:"column:is_applied;not null;default:false" json:"is_applied"`
	Dismissed bool       `gorm:"column:is_dismissed;not null;default:false" json:"is_dismissed"`
	AppliedAt *time.Time `gorm:"column:applied_at" json:"applied_at,omitempty"`

	Feedback string `gorm:"column:user_feedback" json:"user_feedback"`
	Rating   *int   `gorm:"column:user_rating" json:"user_rating,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Suggestion) TableName() string {
	return "suggestion"
}
