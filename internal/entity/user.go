package entity

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LoginID        string    `gorm:"column:login_id;size:50;uniqueIndex;not null" json:"login_id"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Nickname       string    `gorm:"size:50;uniqueIndex;not null" json:"nickname"`
	Phonenumber    string    `gorm:"size:20;index" json:"phonenumber"`
	Policy         bool      `gorm:"not null;default:false" json:"policy"`
	PersonalInfo   bool      `gorm:"not null;default:false" json:"personal_info"`
	MarketingEmail bool      `gorm:"not null;default:false" json:"marketing_email"`
	MarketingSMS   bool      `gorm:"column:marketing_sms;not null;default:false" json:"marketing_sms"`
	InfoPeriod     int       `gorm:"not null;default:1" json:"info_period"`
	CareerTypeID   *uint     `json:"career_type_id"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"-"`
	ActivityPoints int       `gorm:"not null;default:0" json:"activity_points"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	ModifiedDate   time.Time `gorm:"column:modified_date;autoUpdateTime" json:"modified_date"`
}
