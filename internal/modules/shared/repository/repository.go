package repository

import (
	"context"

	"gorm.io/gorm"
	"needu.com/community/internal/entity"
)

type SharedRepository interface {
	FindCareerTypes(ctx context.Context) ([]entity.CareerType, error)
	FindHashtags(ctx context.Context) ([]entity.ReviewHashtag, error)
	CreateReport(ctx context.Context, report *entity.Report) error
	CreateSubscribe(ctx context.Context, subscribe *entity.Subscribe) error
}

type sharedRepository struct {
	db *gorm.DB
}

func NewSharedRepository(db *gorm.DB) SharedRepository {
	return &sharedRepository{db: db}
}

func (r *sharedRepository) FindCareerTypes(ctx context.Context) ([]entity.CareerType, error) {
	var types []entity.CareerType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

func (r *sharedRepository) FindHashtags(ctx context.Context) ([]entity.ReviewHashtag, error) {
	var tags []entity.ReviewHashtag
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *sharedRepository) CreateReport(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *sharedRepository) CreateSubscribe(ctx context.Context, subscribe *entity.Subscribe) error {
	return r.db.WithContext(ctx).Create(subscribe).Error
}
