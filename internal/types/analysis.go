package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Issue severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Issue kinds emitted by the detector rule set. The set is open ended; new
// rules add kinds without touching existing ones.
const (
	IssueMissingAltText    = "missing-alt-text"
	IssueMissingHeadings   = "missing-heading-structure"
	IssueEmptyLinkText     = "empty-link-text"
	IssueMissingFormLabels = "missing-form-labels"
)

// Issue is one typed, severity-ranked finding from an analysis run. Pure
// value type, serialized into the owning Analysis row.
type Issue struct {
	Kind         string `json:"type"`
	Severity     string `json:"severity"`
	Description  string `json:"description"`
	ElementCount int    `json:"element_count"`
}

// Analysis is the immutable record of one scoring run over a page's markup.
type Analysis struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	URL    string    `gorm:"column:url;not null" json:"url"`
	Domain string    `gorm:"column:domain;not null;index" json:"domain"`

	OverallScore    int `gorm:"column:overall_score;not null" json:"overall_score"`
	ContrastScore   int `gorm:"column:contrast_score;not null" json:"contrast_score"`
	StructureScore  int `gorm:"column:structure_score;not null" json:"structure_score"`
	NavigationScore int `gorm:"column:navigation_score;not null" json:"navigation_score"`
	ContentScore    int `gorm:"column:content_score;not null" json:"content_score"`

	Issues datatypes.JSON `gorm:"type:jsonb;column:issues" json:"issues"`

	AnalyzedByID *uuid.UUID `gorm:"type:uuid;column:analyzed_by" json:"analyzed_by,omitempty"`
	AnalyzedBy   *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:AnalyzedByID;references:ID" json:"-"`
	AnalyzedAt   time.Time  `gorm:"column:analyzed_at;not null" json:"analyzed_at"`
}

func (Analysis) TableName() string {
	return "website_analysis"
}
