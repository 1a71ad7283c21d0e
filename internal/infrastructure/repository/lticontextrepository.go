package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

type LTIContextRepositoryImpl struct {
	db *gorm.DB
}

func NewLTIContextRepository(db *gorm.DB) lticontext.Repository {
	return &LTIContextRepositoryImpl{db: db}
}

// Create inserts the context. Concurrent launches of the same course race
// on the (consumer_slug, lti_id) unique index; the loser gets a conflict
// error and retries as a lookup.
func (r *LTIContextRepositoryImpl) Create(ctx context.Context, ltiContext *lticontext.LTIContext) error {
	model := &models.LTIContextModel{
		ConsumerSlug:   ltiContext.ConsumerSlug(),
		LTIID:          ltiContext.LTIID(),
		IsMarkedLocked: ltiContext.IsMarkedLocked(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("lti context already exists")
		}
		return fmt.Errorf("failed to create lti context: %w", err)
	}

	return ltiContext.SetID(model.ID)
}

func (r *LTIContextRepositoryImpl) GetByID(ctx context.Context, id uint) (*lticontext.LTIContext, error) {
	var model models.LTIContextModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lti context: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *LTIContextRepositoryImpl) GetByConsumerAndLTIID(ctx context.Context, consumerSlug, ltiID string) (*lticontext.LTIContext, error) {
	var model models.LTIContextModel
	err := r.db.WithContext(ctx).
		Where("consumer_slug = ? AND lti_id = ?", consumerSlug, ltiID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lti context by lti id: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *LTIContextRepositoryImpl) SetLockFlag(ctx context.Context, id uint, locked bool) error {
	result := r.db.WithContext(ctx).Model(&models.LTIContextModel{}).
		Where("id = ?", id).
		Update("is_marked_locked", locked)

	if result.Error != nil {
		return fmt.Errorf("failed to set lock flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("lti context not found")
	}

	return nil
}

func (r *LTIContextRepositoryImpl) toEntity(model *models.LTIContextModel) *lticontext.LTIContext {
	return lticontext.ReconstructLTIContext(
		model.ID,
		model.ConsumerSlug,
		model.LTIID,
		model.IsMarkedLocked,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
