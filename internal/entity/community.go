package entity

import "time"

type TopicType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

type Topic struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:50;not null" json:"name"`
	TypeID uint   `gorm:"not null;index" json:"type_id"`
}

type BlindType struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Reason string `gorm:"size:255;not null" json:"reason"`
}

// BlindNone and BlindPending are visible; anything above is hidden from readers.
const (
	BlindNone    = 0
	BlindPending = 1
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TopicID     uint      `gorm:"not null;index" json:"topic_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	View        int       `gorm:"not null;default:0" json:"view"`
	Blind       int       `gorm:"not null;default:0" json:"blind"`
	BlindTypeID *uint     `json:"blind_type_id"`
	IsDel       bool      `gorm:"not null;default:false" json:"is_del"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) IsBlinded() bool {
	return p.Blind > BlindPending
}

const (
	LikeTypeLike    = 1
	LikeTypeDislike = -1
)

type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post,priority:2;index" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post,priority:1" json:"user_id"`
	Type      int       `gorm:"not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
