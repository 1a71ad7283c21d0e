package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

type TopicRepositoryImpl struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) forum.TopicRepository {
	return &TopicRepositoryImpl{db: db}
}

func (r *TopicRepositoryImpl) Create(ctx context.Context, topic *forum.Topic) error {
	model := &models.TopicModel{
		ForumID:  topic.ForumID(),
		PosterID: topic.PosterID(),
		Subject:  topic.Subject(),
		Locked:   topic.IsLocked(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	return topic.SetID(model.ID)
}

func (r *TopicRepositoryImpl) GetByID(ctx context.Context, id uint) (*forum.Topic, error) {
	var model models.TopicModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	return forum.ReconstructTopic(
		model.ID,
		model.ForumID,
		model.PosterID,
		model.Subject,
		model.Locked,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (r *TopicRepositoryImpl) Update(ctx context.Context, topic *forum.Topic) error {
	result := r.db.WithContext(ctx).Model(&models.TopicModel{}).
		Where("id = ?", topic.ID()).
		Updates(map[string]interface{}{
			"subject":    topic.Subject(),
			"locked":     topic.IsLocked(),
			"updated_at": topic.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update topic: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("topic not found")
	}

	return nil
}

func (r *TopicRepositoryImpl) ListByForum(ctx context.Context, forumID uint) ([]*forum.Topic, error) {
	var topicModels []*models.TopicModel
	err := r.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("updated_at DESC").
		Find(&topicModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	topics := make([]*forum.Topic, 0, len(topicModels))
	for _, model := range topicModels {
		topics = append(topics, forum.ReconstructTopic(
			model.ID,
			model.ForumID,
			model.PosterID,
			model.Subject,
			model.Locked,
			model.CreatedAt,
			model.UpdatedAt,
		))
	}

	return topics, nil
}

type PostRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) forum.PostRepository {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *forum.Post) error {
	model := &models.PostModel{
		TopicID:  post.TopicID(),
		PosterID: post.PosterID(),
		Content:  post.Content(),
		Approved: post.IsApproved(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return post.SetID(model.ID)
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, id uint) (*forum.Post, error) {
	var model models.PostModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return forum.ReconstructPost(
		model.ID,
		model.TopicID,
		model.PosterID,
		model.Content,
		model.Approved,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, post *forum.Post) error {
	result := r.db.WithContext(ctx).Model(&models.PostModel{}).
		Where("id = ?", post.ID()).
		Updates(map[string]interface{}{
			"content":    post.Content(),
			"approved":   post.IsApproved(),
			"updated_at": post.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("post not found")
	}

	return nil
}

func (r *PostRepositoryImpl) ListByTopic(ctx context.Context, topicID uint) ([]*forum.Post, error) {
	var postModels []*models.PostModel
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&postModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]*forum.Post, 0, len(postModels))
	for _, model := range postModels {
		posts = append(posts, forum.ReconstructPost(
			model.ID,
			model.TopicID,
			model.PosterID,
			model.Content,
			model.Approved,
			model.CreatedAt,
			model.UpdatedAt,
		))
	}

	return posts, nil
}
