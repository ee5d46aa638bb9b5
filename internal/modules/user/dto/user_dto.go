package dto

import (
	"time"

	"needu.com/community/internal/entity"
	commonDto "needu.com/community/pkg/dto"
)

type RegisterRequest struct {
	LoginID        string `json:"login_id" binding:"required,min=4,max=50,alphanum"`
	Password       string `json:"password" binding:"required,min=8,max=72"`
	Nickname       string `json:"nickname" binding:"required,min=2,max=50"`
	Phonenumber    string `json:"phonenumber" binding:"omitempty,numeric,max=20"`
	Policy         bool   `json:"policy" binding:"required"`
	PersonalInfo   bool   `json:"personal_info" binding:"required"`
	MarketingEmail bool   `json:"marketing_email"`
	MarketingSMS   bool   `json:"marketing_sms"`
	InfoPeriod     int    `json:"info_period" binding:"omitempty,min=1,max=5"`
}

type DuplicateCheckQuery struct {
	Item  string `form:"item" binding:"required,oneof=id login_id nickname phonenumber"`
	Value string `form:"value" binding:"required"`
}

type DuplicateCheckResponse struct {
	Available bool `json:"available"`
}

type LoginInput struct {
	LoginID  string `json:"login_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

type SendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SendVerificationResponse struct {
	VerificationID string `json:"verification_id"`
	ExpiresIn      int64  `json:"expires_in"`
}

type ConfirmVerificationRequest struct {
	VerificationID string `json:"verification_id" binding:"required,uuid"`
	Code           string `json:"code" binding:"required,len=6,numeric"`
}

type ConfirmVerificationResponse struct {
	Verified bool   `json:"verified"`
	Email    string `json:"email"`
}

type RemoveRequest struct {
	LoginID  string `json:"login_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdatePersonalInfoRequest leaves a field unchanged when it is omitted.
type UpdatePersonalInfoRequest struct {
	CareerTypeID *uint   `json:"career_type_id" binding:"omitempty,min=1"`
	Phonenumber  *string `json:"phonenumber" binding:"omitempty,numeric,max=20"`
	Nickname     *string `json:"nickname" binding:"omitempty,min=2,max=50"`
}

type UserResponse struct {
	ID             uint                  `json:"id"`
	LoginID        string                `json:"login_id"`
	Nickname       string                `json:"nickname"`
	Phonenumber    string                `json:"phonenumber"`
	CareerTypeID   *uint                 `json:"career_type_id"`
	MarketingEmail bool                  `json:"marketing_email"`
	MarketingSMS   bool                  `json:"marketing_sms"`
	ActivityPoints int                   `json:"activity_points"`
	RankStatus     *commonDto.RankStatus `json:"rank_status,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:             user.ID,
		LoginID:        user.LoginID,
		Nickname:       user.Nickname,
		Phonenumber:    user.Phonenumber,
		CareerTypeID:   user.CareerTypeID,
		MarketingEmail: user.MarketingEmail,
		MarketingSMS:   user.MarketingSMS,
		ActivityPoints: user.ActivityPoints,
		CreatedAt:      user.CreatedAt,
	}
}
