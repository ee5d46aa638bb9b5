package repository

import (
	"context"

	"gorm.io/gorm"
	"needu.com/community/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*entity.User, error)
	// ExistsBy reports whether a user has value in column. column must come from a
	// fixed whitelist; it is never taken from request input directly.
	ExistsBy(ctx context.Context, column string, value string) (bool, error)
	UpdatePersonalInfo(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uint) error
	CareerTypeExists(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) FindByLoginID(ctx context.Context, loginID string) (*entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("login_id = ?", loginID).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) ExistsBy(ctx context.Context, column string, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where(map[string]any{column: value}).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdatePersonalInfo(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"nickname":       user.Nickname,
			"phonenumber":    user.Phonenumber,
			"career_type_id": user.CareerTypeID,
		}).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.User{}, id).Error
}

func (r *userRepository) CareerTypeExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CareerType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
