package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/types"
)

type SuggestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, suggestions []*types.Suggestion) ([]*types.Suggestion, error)
	// GetByIDForUser returns nil when the suggestion is missing or owned by
	// another user; ownership failures are indistinguishable from absence.
	GetByIDForUser(ctx context.Context, tx *gorm.DB, suggestionID, userID uuid.UUID) (*types.Suggestion, error)
	ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Suggestion, error)
	Save(ctx context.Context, tx *gorm.DB, suggestion *types.Suggestion) error
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	repoLog := baseLog.With("repo", "SuggestionRepo")
	return &suggestionRepo{db: db, log: repoLog}
}

func (sr *suggestionRepo) Create(ctx context.Context, tx *gorm.DB, suggestions []*types.Suggestion) ([]*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(suggestions) == 0 {
		return []*types.Suggestion{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (sr *suggestionRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, suggestionID, userID uuid.UUID) (*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Suggestion
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", suggestionID, userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *suggestionRepo) ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Suggestion
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND is_dismissed = ?", userID, false).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *suggestionRepo) Save(ctx context.Context, tx *gorm.DB, suggestion *types.Suggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(suggestion).Error
}
