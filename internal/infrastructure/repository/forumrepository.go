package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/shared/constants"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

type ForumRepositoryImpl struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) forum.Repository {
	return &ForumRepositoryImpl{db: db}
}

func (r *ForumRepositoryImpl) Create(ctx context.Context, f *forum.Forum) error {
	model := &models.ForumModel{
		LTIID:    f.LTIID().String(),
		Type:     string(f.Type()),
		Name:     f.Name(),
		Archived: f.IsArchived(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create forum: %w", err)
	}

	return f.SetID(model.ID)
}

func (r *ForumRepositoryImpl) GetByID(ctx context.Context, id uint) (*forum.Forum, error) {
	var model models.ForumModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forum: %w", err)
	}

	return r.toEntity(&model)
}

func (r *ForumRepositoryImpl) GetByLTIIDAndContext(ctx context.Context, ltiID uuid.UUID, forumType forum.ForumType, contextID uint) (*forum.Forum, error) {
	var model models.ForumModel
	err := r.db.WithContext(ctx).
		Table(constants.TableForums).
		Joins("INNER JOIN "+constants.TableForumContexts+" ON "+constants.TableForums+".id = "+constants.TableForumContexts+".forum_id").
		Where(constants.TableForums+".lti_id = ? AND "+constants.TableForums+".type = ? AND "+constants.TableForumContexts+".lti_context_id = ?",
			ltiID.String(), string(forumType), contextID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forum by lti id: %w", err)
	}

	return r.toEntity(&model)
}

func (r *ForumRepositoryImpl) LatestNameByLTIID(ctx context.Context, ltiID uuid.UUID) (string, error) {
	var model models.ForumModel
	err := r.db.WithContext(ctx).
		Where("lti_id = ?", ltiID.String()).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest forum name: %w", err)
	}

	return model.Name, nil
}

func (r *ForumRepositoryImpl) AttachContext(ctx context.Context, forumID uint, ltiID uuid.UUID, contextID uint) error {
	link := &models.ForumLTIContextModel{
		ForumID:      forumID,
		LTIContextID: contextID,
		LTIID:        ltiID.String(),
	}

	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("forum already attached for this launch target")
		}
		return fmt.Errorf("failed to attach forum to context: %w", err)
	}

	return nil
}

func (r *ForumRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ForumModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete forum: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("forum not found")
	}
	return nil
}

func (r *ForumRepositoryImpl) ContextIDs(ctx context.Context, forumID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ForumLTIContextModel{}).
		Where("forum_id = ?", forumID).
		Pluck("lti_context_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list forum contexts: %w", err)
	}

	return ids, nil
}

func (r *ForumRepositoryImpl) ListByContext(ctx context.Context, contextID uint) ([]*forum.Forum, error) {
	var forumModels []*models.ForumModel
	err := r.db.WithContext(ctx).
		Table(constants.TableForums).
		Joins("INNER JOIN "+constants.TableForumContexts+" ON "+constants.TableForums+".id = "+constants.TableForumContexts+".forum_id").
		Where(constants.TableForumContexts+".lti_context_id = ?", contextID).
		Order(constants.TableForums + ".created_at ASC").
		Find(&forumModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list forums by context: %w", err)
	}

	return r.toEntities(forumModels)
}

func (r *ForumRepositoryImpl) ListAll(ctx context.Context) ([]*forum.Forum, error) {
	var forumModels []*models.ForumModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&forumModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list forums: %w", err)
	}

	return r.toEntities(forumModels)
}

func (r *ForumRepositoryImpl) Update(ctx context.Context, f *forum.Forum) error {
	result := r.db.WithContext(ctx).Model(&models.ForumModel{}).
		Where("id = ?", f.ID()).
		Updates(map[string]interface{}{
			"name":       f.Name(),
			"archived":   f.IsArchived(),
			"updated_at": f.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update forum: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("forum not found")
	}

	return nil
}

func (r *ForumRepositoryImpl) toEntity(model *models.ForumModel) (*forum.Forum, error) {
	ltiID, err := uuid.Parse(model.LTIID)
	if err != nil {
		return nil, fmt.Errorf("invalid forum lti id %q: %w", model.LTIID, err)
	}

	return forum.ReconstructForum(
		model.ID,
		ltiID,
		forum.ForumType(model.Type),
		model.Name,
		model.Archived,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (r *ForumRepositoryImpl) toEntities(forumModels []*models.ForumModel) ([]*forum.Forum, error) {
	forums := make([]*forum.Forum, 0, len(forumModels))
	for _, model := range forumModels {
		f, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		forums = append(forums, f)
	}
	return forums, nil
}
