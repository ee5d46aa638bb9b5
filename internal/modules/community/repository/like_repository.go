package repository

import (
	"context"

	"gorm.io/gorm"
	"needu.com/community/internal/entity"
)

type LikeRepository interface {
	Find(ctx context.Context, userID, postID uint) (*entity.PostLike, error)
	Create(ctx context.Context, like *entity.PostLike) error
	Delete(ctx context.Context, id uint) error
	CountByPost(ctx context.Context, postID uint) (likes int64, dislikes int64, err error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Find(ctx context.Context, userID, postID uint) (*entity.PostLike, error) {
	var likes []entity.PostLike
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return nil, nil
	}
	return &likes[0], nil
}

func (r *likeRepository) Create(ctx context.Context, like *entity.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.PostLike{}, id).Error
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, int64, error) {
	type result struct {
		Type  int
		Count int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.PostLike{}).
		Select("type, count(*) AS count").
		Where("post_id = ?", postID).
		Group("type").
		Scan(&results).Error
	if err != nil {
		return 0, 0, err
	}

	var likes, dislikes int64
	for _, res := range results {
		switch res.Type {
		case entity.LikeTypeLike:
			likes = res.Count
		case entity.LikeTypeDislike:
			dislikes = res.Count
		}
	}
	return likes, dislikes, nil
}
