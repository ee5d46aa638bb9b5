package repository

import (
	"context"

	"gorm.io/gorm"
	"needu.com/community/internal/entity"
)

type TopicRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Topic, error)
	FindByType(ctx context.Context, typeID uint) ([]entity.Topic, error)
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) FindByID(ctx context.Context, id uint) (*entity.Topic, error) {
	var topics []entity.Topic
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, nil
	}
	return &topics[0], nil
}

func (r *topicRepository) FindByType(ctx context.Context, typeID uint) ([]entity.Topic, error) {
	var topics []entity.Topic
	err := r.db.WithContext(ctx).
		Where("type_id = ?", typeID).
		Order("id ASC").
		Find(&topics).Error
	return topics, err
}
