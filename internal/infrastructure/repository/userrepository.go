package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepositoryImpl{db: db}
}

// Create inserts the user. When two launches race on the same identity the
// second insert loses on the (consumer_slug, lti_remote_user_id) unique
// index and the winner's row is returned through the fallback lookup.
func (r *UserRepositoryImpl) Create(ctx context.Context, u *user.User) error {
	model := &models.UserModel{
		ConsumerSlug:    u.ConsumerSlug(),
		LTIRemoteUserID: u.RemoteUserID(),
		Username:        u.Username(),
		PublicUsername:  u.PublicUsername(),
		Email:           u.Email(),
		IsActive:        u.IsActive(),
		IsSuperuser:     u.IsSuperuser(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return u.SetID(model.ID)
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *UserRepositoryImpl) GetByConsumerAndRemoteID(ctx context.Context, consumerSlug, remoteUserID string) (*user.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("consumer_slug = ? AND lti_remote_user_id = ?", consumerSlug, remoteUserID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by remote id: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u *user.User) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]interface{}{
			"public_username": u.PublicUsername(),
			"email":           u.Email(),
			"is_active":       u.IsActive(),
			"updated_at":      u.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("user not found")
	}

	return nil
}

func (r *UserRepositoryImpl) toEntity(model *models.UserModel) *user.User {
	return user.ReconstructUser(
		model.ID,
		model.ConsumerSlug,
		model.LTIRemoteUserID,
		model.Username,
		model.PublicUsername,
		model.Email,
		model.IsActive,
		model.IsSuperuser,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
