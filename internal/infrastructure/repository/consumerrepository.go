package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
)

type ConsumerRepositoryImpl struct {
	db *gorm.DB
}

func NewConsumerRepository(db *gorm.DB) lti.ConsumerRepository {
	return &ConsumerRepositoryImpl{db: db}
}

func (r *ConsumerRepositoryImpl) Create(ctx context.Context, consumer *lti.Consumer) error {
	model := &models.ConsumerModel{
		Slug:  consumer.Slug(),
		Title: consumer.Title(),
		URL:   consumer.URL(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	return nil
}

func (r *ConsumerRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*lti.Consumer, error) {
	var model models.ConsumerModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consumer: %w", err)
	}

	return lti.ReconstructConsumer(model.Slug, model.Title, model.URL, model.CreatedAt, model.UpdatedAt), nil
}

func (r *ConsumerRepositoryImpl) List(ctx context.Context) ([]*lti.Consumer, error) {
	var consumerModels []*models.ConsumerModel
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&consumerModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list consumers: %w", err)
	}

	consumers := make([]*lti.Consumer, 0, len(consumerModels))
	for _, model := range consumerModels {
		consumers = append(consumers, lti.ReconstructConsumer(model.Slug, model.Title, model.URL, model.CreatedAt, model.UpdatedAt))
	}

	return consumers, nil
}
