package bootstrap

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"needu.com/community/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.CareerType{},
		&entity.User{},
		&entity.ActivityType{},
		&entity.ActivityLog{},
		&entity.TopicType{},
		&entity.Topic{},
		&entity.BlindType{},
		&entity.Post{},
		&entity.PostLike{},
		&entity.Report{},
		&entity.Subscribe{},
		&entity.ReviewHashtag{},
	)
}

var (
	defaultActivityTypes = []entity.ActivityType{
		{ID: entity.ActivityTypeSignUp, Name: "sign up", Point: 100},
		{ID: entity.ActivityTypeDailyCheckIn, Name: "daily check-in", Point: 10},
		{ID: entity.ActivityTypePostCreated, Name: "community post written", Point: 20},
		{ID: entity.ActivityTypePostLiked, Name: "community post liked", Point: 5},
		{ID: entity.ActivityTypePersonalInfo, Name: "personal info added", Point: 50},
	}

	defaultTopicTypes = []entity.TopicType{
		{ID: 1, Name: "lounge"},
		{ID: 2, Name: "career"},
	}

	defaultTopics = []entity.Topic{
		{ID: 1, Name: "free talk", TypeID: 1},
		{ID: 2, Name: "hobby", TypeID: 1},
		{ID: 3, Name: "job hunting", TypeID: 2},
		{ID: 4, Name: "interview", TypeID: 2},
	}

	defaultBlindTypes = []entity.BlindType{
		{ID: 1, Reason: "under review"},
		{ID: 2, Reason: "abusive language"},
		{ID: 3, Reason: "spam or advertising"},
		{ID: 4, Reason: "personal information exposed"},
	}

	defaultCareerTypes = []entity.CareerType{
		{ID: 1, Name: "developer"},
		{ID: 2, Name: "designer"},
		{ID: 3, Name: "marketer"},
		{ID: 4, Name: "planner"},
	}

	defaultHashtags = []entity.ReviewHashtag{
		{ID: 1, Name: "friendly"},
		{ID: 2, Name: "practical"},
		{ID: 3, Name: "well-organized"},
		{ID: 4, Name: "career-changing"},
	}
)

// SeedCatalogs inserts the reference catalogs. Existing rows are left untouched.
func SeedCatalogs(db *gorm.DB) error {
	catalogs := []struct {
		name string
		rows any
	}{
		{"activity types", &defaultActivityTypes},
		{"topic types", &defaultTopicTypes},
		{"topics", &defaultTopics},
		{"blind types", &defaultBlindTypes},
		{"career types", &defaultCareerTypes},
		{"hashtags", &defaultHashtags},
	}

	for _, catalog := range catalogs {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(catalog.rows).Error; err != nil {
			return fmt.Errorf("failed to seed %s: %w", catalog.name, err)
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("login_id = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		LoginID:      "admin",
		PasswordHash: string(hashed),
		Nickname:     "administrator",
		Policy:       true,
		PersonalInfo: true,
		IsAdmin:      true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	slog.Info("admin user seeded", slog.String("login_id", admin.LoginID))
	return nil
}
