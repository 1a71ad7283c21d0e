package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
)

type PassportRepositoryImpl struct {
	db *gorm.DB
}

func NewPassportRepository(db *gorm.DB) lti.PassportRepository {
	return &PassportRepositoryImpl{db: db}
}

func (r *PassportRepositoryImpl) Create(ctx context.Context, passport *lti.Passport) error {
	model := &models.PassportModel{
		ConsumerSlug:     passport.ConsumerSlug(),
		Title:            passport.Title(),
		OAuthConsumerKey: passport.ConsumerKey(),
		SharedSecret:     passport.SharedSecret(),
		IsEnabled:        passport.IsEnabled(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create passport: %w", err)
	}

	return passport.SetID(model.ID)
}

func (r *PassportRepositoryImpl) GetByKey(ctx context.Context, consumerKey string) (*lti.Passport, error) {
	var model models.PassportModel
	if err := r.db.WithContext(ctx).Where("oauth_consumer_key = ?", consumerKey).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get passport: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *PassportRepositoryImpl) GetEnabledByKey(ctx context.Context, consumerKey string) (*lti.Passport, error) {
	var model models.PassportModel
	err := r.db.WithContext(ctx).
		Where("oauth_consumer_key = ? AND is_enabled = ?", consumerKey, true).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enabled passport: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *PassportRepositoryImpl) ListByConsumer(ctx context.Context, consumerSlug string) ([]*lti.Passport, error) {
	var passportModels []*models.PassportModel
	err := r.db.WithContext(ctx).
		Where("consumer_slug = ?", consumerSlug).
		Order("created_at DESC").
		Find(&passportModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list passports: %w", err)
	}

	passports := make([]*lti.Passport, 0, len(passportModels))
	for _, model := range passportModels {
		passports = append(passports, r.toEntity(model))
	}

	return passports, nil
}

func (r *PassportRepositoryImpl) toEntity(model *models.PassportModel) *lti.Passport {
	return lti.ReconstructPassport(
		model.ID,
		model.ConsumerSlug,
		model.Title,
		model.OAuthConsumerKey,
		model.SharedSecret,
		model.IsEnabled,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
