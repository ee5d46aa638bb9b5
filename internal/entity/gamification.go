package entity

import "time"

// Stable activity type ids. Point values live in the activity_types catalog.
const (
	ActivityTypeSignUp       uint = 1
	ActivityTypeDailyCheckIn uint = 2
	ActivityTypePostCreated  uint = 3
	ActivityTypePostLiked    uint = 4
	ActivityTypePersonalInfo uint = 8
)

type ActivityType struct {
	ID    uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Point int    `gorm:"not null" json:"point"`
}

// ActivityLog rows are never deleted; revoking a grant flips IsDel.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_activity_user_type,priority:1" json:"user_id"`
	TypeID    uint      `gorm:"not null;index:idx_activity_user_type,priority:2" json:"type_id"`
	Reason    *string   `gorm:"size:255" json:"reason"`
	IsDel     bool      `gorm:"not null;default:false" json:"is_del"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
