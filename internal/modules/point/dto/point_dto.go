package dto

import (
	pointRepo "needu.com/community/internal/modules/point/repository"
	commonDto "needu.com/community/pkg/dto"
)

type CheckInResponse struct {
	Granted        bool `json:"granted"`
	ActivityPoints int  `json:"activity_points"`
}

type HistoryFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginatedHistoryResponse struct {
	Data []pointRepo.HistoryEntry    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type LeaderboardFilter struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LeaderboardEntry is one ranked user. Position is 1-based.
type LeaderboardEntry struct {
	UserID     uint                 `json:"user_id"`
	Nickname   string               `json:"nickname"`
	Position   int                  `json:"position"`
	RankStatus commonDto.RankStatus `json:"rank_status"`
}

type RecalculateResponse struct {
	UserID         uint `json:"user_id"`
	ActivityPoints int  `json:"activity_points"`
}
