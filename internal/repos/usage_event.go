package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/types"
)

type UsageEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.UsageEvent) ([]*types.UsageEvent, error)
}

type usageEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageEventRepo(db *gorm.DB, baseLog *logger.Logger) UsageEventRepo {
	repoLog := baseLog.With("repo", "UsageEventRepo")
	return &usageEventRepo{db: db, log: repoLog}
}

func (ur *usageEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.UsageEvent) ([]*types.UsageEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(events) == 0 {
		return []*types.UsageEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
