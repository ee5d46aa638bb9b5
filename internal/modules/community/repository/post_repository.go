package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"needu.com/community/internal/entity"
)

// PostDetail is a post joined with its author and topic.
type PostDetail struct {
	ID             uint
	TopicID        uint
	TopicName      string
	TopicTypeID    uint
	UserID         uint
	AuthorNickname string
	Title          string
	Content        string
	View           int
	Blind          int
	BlindTypeID    *uint
	IsDel          bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uint) (*entity.Post, error)
	FindDetail(ctx context.Context, id uint) (*PostDetail, error)
	Update(ctx context.Context, post *entity.Post) error
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	// IncrementView bumps the counter atomically. It reports false when the post is missing.
	IncrementView(ctx context.Context, id uint) (bool, error)
	FindBlindReason(ctx context.Context, blindTypeID uint) (string, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	// Find with a slice avoids gorm's record-not-found log noise.
	var posts []entity.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (r *postRepository) FindDetail(ctx context.Context, id uint) (*PostDetail, error) {
	var details []PostDetail
	err := r.db.WithContext(ctx).
		Table("posts").
		Select(`posts.id, posts.topic_id, COALESCE(topics.name, '') AS topic_name,
			COALESCE(topics.type_id, 0) AS topic_type_id, posts.user_id,
			COALESCE(users.nickname, '') AS author_nickname, posts.title, posts.content,
			posts.view, posts.blind, posts.blind_type_id, posts.is_del,
			posts.created_at, posts.updated_at`).
		Joins("LEFT JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN topics ON topics.id = posts.topic_id").
		Where("posts.id = ?", id).
		Limit(1).
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":      post.Title,
			"topic_id":   post.TopicID,
			"content":    post.Content,
			"updated_at": post.UpdatedAt,
		}).Error
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"is_del":     true,
			"updated_at": at,
		}).Error
}

func (r *postRepository) IncrementView(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", id).
		UpdateColumn("view", gorm.Expr("view + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) FindBlindReason(ctx context.Context, blindTypeID uint) (string, error) {
	var types []entity.BlindType
	if err := r.db.WithContext(ctx).Where("id = ?", blindTypeID).Limit(1).Find(&types).Error; err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "", nil
	}
	return types[0].Reason, nil
}
