package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/types"
)

type PresetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, presets []*types.Preset) ([]*types.Preset, error)
	GetByID(ctx context.Context, tx *gorm.DB, presetID uuid.UUID) (*types.Preset, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Preset, error)
	// ListAvailable returns system presets plus the user's own, name order.
	ListAvailable(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Preset, error)
	// IncrementUsage bumps the usage counter without reading the row first.
	// Best effort: lost updates under contention are acceptable.
	IncrementUsage(ctx context.Context, tx *gorm.DB, presetID uuid.UUID) error
}

type presetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPresetRepo(db *gorm.DB, baseLog *logger.Logger) PresetRepo {
	repoLog := baseLog.With("repo", "PresetRepo")
	return &presetRepo{db: db, log: repoLog}
}

func (pr *presetRepo) Create(ctx context.Context, tx *gorm.DB, presets []*types.Preset) ([]*types.Preset, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(presets) == 0 {
		return []*types.Preset{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&presets).Error; err != nil {
		return nil, err
	}
	return presets, nil
}

func (pr *presetRepo) GetByID(ctx context.Context, tx *gorm.DB, presetID uuid.UUID) (*types.Preset, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Preset
	err := transaction.WithContext(ctx).
		Where("id = ?", presetID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *presetRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Preset, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Preset
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *presetRepo) ListAvailable(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Preset, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Preset
	if err := transaction.WithContext(ctx).
		Where("is_system = ? OR created_by = ?", true, userID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *presetRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, presetID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Preset{}).
		Where("id = ?", presetID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}
