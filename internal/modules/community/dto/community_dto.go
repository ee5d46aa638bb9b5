package dto

import (
	"time"

	commonDto "needu.com/community/pkg/dto"
)

type CreatePostRequest struct {
	TopicID  uint   `json:"topic_id" binding:"required,min=1"`
	Title    string `json:"title" binding:"required,max=255"`
	Markdown string `json:"markdown" binding:"required,max=20000"`
	HTML     string `json:"html" binding:"max=40000"`
}

type UpdatePostRequest struct {
	TopicID  uint   `json:"topic_id" binding:"required,min=1"`
	Title    string `json:"title" binding:"required,max=255"`
	Markdown string `json:"markdown" binding:"required,max=20000"`
	HTML     string `json:"html" binding:"max=40000"`
}

type PostResponse struct {
	ID        uint      `json:"id"`
	TopicID   uint      `json:"topic_id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	View      int       `json:"view"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TopicResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	TypeID uint   `json:"type_id"`
}

type PostDetailResponse struct {
	ID           uint                     `json:"id"`
	Title        string                   `json:"title"`
	Content      string                   `json:"content"`
	View         int                      `json:"view"`
	Topic        TopicResponse            `json:"topic"`
	Author       commonDto.AuthorResponse `json:"author"`
	LikeCount    int64                    `json:"like_count"`
	DislikeCount int64                    `json:"dislike_count"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

const (
	PostStatusDeleted = "is_del"
	PostStatusBlinded = "is_blind"
)

// GetPostResponse carries either the post or a status explaining why it is hidden.
type GetPostResponse struct {
	Msg   string              `json:"msg,omitempty"`
	Blind string              `json:"blind,omitempty"`
	Post  *PostDetailResponse `json:"post,omitempty"`
}

type EditPostResponse struct {
	PostID  uint   `json:"post_id"`
	Title   string `json:"title"`
	TopicID uint   `json:"topic_id"`
	UserID  uint   `json:"user_id"`
	Content string `json:"content"`
	Type    uint   `json:"type"`
}

type TopicQuery struct {
	TypeID uint `form:"type_id" binding:"required,min=1"`
}

type PostLikeRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	PostID uint   `json:"post_id" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=like dislike"`
}

type ResultResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
