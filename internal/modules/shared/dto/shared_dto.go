package dto

import "time"

type CareerTypeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type HashtagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CreateReportRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	ReportType string `json:"report_type" binding:"required,max=50"`
	Target     string `json:"target" binding:"required,max=50"`
	TargetID   uint   `json:"target_id" binding:"required"`
	Comment    string `json:"comment" binding:"max=1000"`
}

type ReportResponse struct {
	Msg string `json:"msg"`
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=100"`
}

type SubscribeResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
