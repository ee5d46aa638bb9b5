package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"needu.com/community/internal/entity"
)

// HistoryEntry is one non-deleted ledger row joined with its activity type.
type HistoryEntry struct {
	ID        uint      `json:"id"`
	TypeID    uint      `json:"type_id"`
	TypeName  string    `json:"type_name"`
	Point     int       `json:"point"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type PointRepository interface {
	// Transaction runs fn against a repository bound to a single DB transaction.
	Transaction(ctx context.Context, fn func(repo PointRepository) error) error
	// LockUser loads the user row with a write lock. Returns nil when absent.
	LockUser(ctx context.Context, userID uint) (*entity.User, error)
	FindActivityType(ctx context.Context, typeID uint) (*entity.ActivityType, error)
	HasActiveLog(ctx context.Context, userID, typeID uint) (bool, error)
	HasActiveLogBetween(ctx context.Context, userID, typeID uint, from, to time.Time) (bool, error)
	CreateLog(ctx context.Context, log *entity.ActivityLog) error
	FindActiveLog(ctx context.Context, userID, typeID uint, reason *string) (*entity.ActivityLog, error)
	MarkLogDeleted(ctx context.Context, logID uint) error
	// RecalculateTotal sums every non-deleted log of the user and stores the result.
	RecalculateTotal(ctx context.Context, userID uint) (int, error)
	FindHistory(ctx context.Context, userID uint, offset, limit int) ([]HistoryEntry, int64, error)
	FindTopUsers(ctx context.Context, limit int) ([]entity.User, error)
	SumPointsSince(ctx context.Context, userIDs []uint, since time.Time) (map[uint]int, error)
}

type pointRepository struct {
	db *gorm.DB
}

func NewPointRepository(db *gorm.DB) PointRepository {
	return &pointRepository{db: db}
}

func (r *pointRepository) Transaction(ctx context.Context, fn func(repo PointRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pointRepository{db: tx})
	})
}

func (r *pointRepository) LockUser(ctx context.Context, userID uint) (*entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		Limit(1).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *pointRepository) FindActivityType(ctx context.Context, typeID uint) (*entity.ActivityType, error) {
	var types []entity.ActivityType
	if err := r.db.WithContext(ctx).Where("id = ?", typeID).Limit(1).Find(&types).Error; err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (r *pointRepository) HasActiveLog(ctx context.Context, userID, typeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Where("user_id = ? AND type_id = ? AND is_del = ?", userID, typeID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *pointRepository) HasActiveLogBetween(ctx context.Context, userID, typeID uint, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Where("user_id = ? AND type_id = ? AND is_del = ?", userID, typeID, false).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count > 0, err
}

func (r *pointRepository) CreateLog(ctx context.Context, log *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *pointRepository) FindActiveLog(ctx context.Context, userID, typeID uint, reason *string) (*entity.ActivityLog, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND type_id = ? AND is_del = ?", userID, typeID, false)

	if reason == nil {
		query = query.Where("reason IS NULL")
	} else {
		query = query.Where("reason = ?", *reason)
	}

	var logs []entity.ActivityLog
	if err := query.Order("id ASC").Limit(1).Find(&logs).Error; err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

func (r *pointRepository) MarkLogDeleted(ctx context.Context, logID uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.ActivityLog{}).
		Where("id = ?", logID).
		UpdateColumn("is_del", true).Error
}

func (r *pointRepository) RecalculateTotal(ctx context.Context, userID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("activity_logs").
		Select("COALESCE(SUM(activity_types.point), 0)").
		Joins("JOIN activity_types ON activity_types.id = activity_logs.type_id").
		Where("activity_logs.user_id = ? AND activity_logs.is_del = ?", userID, false).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	// UpdateColumn keeps modified_date untouched.
	err = r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("activity_points", total).Error
	if err != nil {
		return 0, err
	}

	return int(total), nil
}

func (r *pointRepository) FindHistory(ctx context.Context, userID uint, offset, limit int) ([]HistoryEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Table("activity_logs").
		Joins("JOIN activity_types ON activity_types.id = activity_logs.type_id").
		Where("activity_logs.user_id = ? AND activity_logs.is_del = ?", userID, false).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []HistoryEntry
	err := query.
		Select("activity_logs.id, activity_logs.type_id, activity_types.name AS type_name, activity_types.point, activity_logs.reason, activity_logs.created_at").
		Order("activity_logs.created_at DESC, activity_logs.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *pointRepository) FindTopUsers(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("activity_points DESC, id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *pointRepository) SumPointsSince(ctx context.Context, userIDs []uint, since time.Time) (map[uint]int, error) {
	sums := make(map[uint]int, len(userIDs))
	if len(userIDs) == 0 {
		return sums, nil
	}

	type result struct {
		UserID uint
		Total  int
	}
	var results []result

	err := r.db.WithContext(ctx).
		Table("activity_logs").
		Select("activity_logs.user_id, COALESCE(SUM(activity_types.point), 0) AS total").
		Joins("JOIN activity_types ON activity_types.id = activity_logs.type_id").
		Where("activity_logs.user_id IN ? AND activity_logs.is_del = ? AND activity_logs.created_at >= ?", userIDs, false, since).
		Group("activity_logs.user_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		sums[res.UserID] = res.Total
	}
	return sums, nil
}
