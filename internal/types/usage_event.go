package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UsageEvent is a fire-and-forget feature-usage record. Recording one must
// never block or fail the operation that emitted it.
type UsageEvent struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Feature string         `gorm:"column:feature;not null;index" json:"feature"`
	Domain  string         `gorm:"column:domain" json:"domain"`
	URL     string         `gorm:"column:url" json:"url"`
	Data    datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UsageEvent) TableName() string {
	return "usage_event"
}
