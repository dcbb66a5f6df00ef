package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/types"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profile *types.AccessibilityProfile) (*types.AccessibilityProfile, error)
	GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AccessibilityProfile, error)
	// GetActiveForUpdate takes a row lock on the active profile so concurrent
	// merges serialize and version increments are never lost.
	GetActiveForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AccessibilityProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.AccessibilityProfile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.AccessibilityProfile) (*types.AccessibilityProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (pr *profileRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AccessibilityProfile, error) {
	return pr.getActive(ctx, tx, userID, false)
}

func (pr *profileRepo) GetActiveForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AccessibilityProfile, error) {
	return pr.getActive(ctx, tx, userID, true)
}

func (pr *profileRepo) getActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, forUpdate bool) (*types.AccessibilityProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true)
	// sqlite (used by the test suites) has no FOR UPDATE; its writes are
	// serialized by the database itself.
	if forUpdate && transaction.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result types.AccessibilityProfile
	err := query.First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *profileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.AccessibilityProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(profile).Error
}
