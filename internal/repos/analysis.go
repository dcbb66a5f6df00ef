package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/types"
)

type AnalysisRepo interface {
	Create(ctx context.Context, tx *gorm.DB, analysis *types.Analysis) (*types.Analysis, error)
	CountByDomain(ctx context.Context, tx *gorm.DB, domain string) (int64, error)
}

type analysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRepo {
	repoLog := baseLog.With("repo", "AnalysisRepo")
	return &analysisRepo{db: db, log: repoLog}
}

func (ar *analysisRepo) Create(ctx context.Context, tx *gorm.DB, analysis *types.Analysis) (*types.Analysis, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if err := transaction.WithContext(ctx).Create(analysis).Error; err != nil {
		return nil, err
	}
	return analysis, nil
}

func (ar *analysisRepo) CountByDomain(ctx context.Context, tx *gorm.DB, domain string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Analysis{}).
		Where("domain = ?", domain).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
