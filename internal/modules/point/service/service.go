package point

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"needu.com/community/internal/entity"
	pointDto "needu.com/community/internal/modules/point/dto"
	pointRepo "needu.com/community/internal/modules/point/repository"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/dto"
)

const (
	defaultHistoryLimit     = 20
	defaultLeaderboardLimit = 10
	weeklyWindow            = 7 * 24 * time.Hour
)

type PointService interface {
	// AddPoint grants one activity to the user and recomputes the total.
	// It reports whether a log row was written.
	AddPoint(ctx context.Context, userID, typeID uint, reason *string) (bool, error)
	// RevokePoint soft-deletes one matching grant and recomputes the total.
	// It reports whether a log row was revoked.
	RevokePoint(ctx context.Context, userID, typeID uint, reason *string) (bool, error)
	RecalculateTotal(ctx context.Context, userID uint) (*pointDto.RecalculateResponse, error)
	CheckIn(ctx context.Context, userID uint) (*pointDto.CheckInResponse, error)
	GetHistory(ctx context.Context, userID uint, filter pointDto.HistoryFilter) (*pointDto.PaginatedHistoryResponse, error)
	GetLeaderboard(ctx context.Context, limit int) ([]pointDto.LeaderboardEntry, error)
	GetRankStatus(ctx context.Context, userID uint, total int) (dto.RankStatus, error)
}

type pointService struct {
	repo pointRepo.PointRepository
	loc  *time.Location
	now  func() time.Time
}

// NewPointService builds the ledger. loc decides where a calendar day starts
// for the daily check-in.
func NewPointService(repo pointRepo.PointRepository, loc *time.Location) PointService {
	if loc == nil {
		loc = time.UTC
	}
	return &pointService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// Reason formats a grant reason so grant and revoke always match.
func Reason(format string, args ...any) *string {
	r := fmt.Sprintf(format, args...)
	return &r
}

func (s *pointService) AddPoint(ctx context.Context, userID, typeID uint, reason *string) (bool, error) {
	granted, _, err := s.grant(ctx, userID, typeID, reason)
	return granted, err
}

// grant returns whether a log was written and the user's total afterwards.
func (s *pointService) grant(ctx context.Context, userID, typeID uint, reason *string) (bool, int, error) {
	granted := false
	total := 0

	err := s.repo.Transaction(ctx, func(repo pointRepo.PointRepository) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NotFound("user not found")
		}
		total = user.ActivityPoints

		activityType, err := repo.FindActivityType(ctx, typeID)
		if err != nil {
			return err
		}
		if activityType == nil {
			slog.Warn("unknown activity type, skipping grant",
				slog.Uint64("user_id", uint64(userID)),
				slog.Uint64("type_id", uint64(typeID)),
			)
			return nil
		}

		now := s.now()

		switch typeID {
		case entity.ActivityTypeDailyCheckIn:
			from, to := s.dayBounds(now)
			exists, err := repo.HasActiveLogBetween(ctx, userID, typeID, from, to)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
		case entity.ActivityTypePersonalInfo:
			exists, err := repo.HasActiveLog(ctx, userID, typeID)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
		}

		log := &entity.ActivityLog{
			UserID:    userID,
			TypeID:    typeID,
			Reason:    reason,
			CreatedAt: now.UTC(),
		}
		if err := repo.CreateLog(ctx, log); err != nil {
			return err
		}

		total, err = repo.RecalculateTotal(ctx, userID)
		if err != nil {
			return err
		}

		granted = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return granted, total, nil
}

func (s *pointService) RevokePoint(ctx context.Context, userID, typeID uint, reason *string) (bool, error) {
	revoked := false

	err := s.repo.Transaction(ctx, func(repo pointRepo.PointRepository) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return nil
		}

		log, err := repo.FindActiveLog(ctx, userID, typeID, reason)
		if err != nil {
			return err
		}
		if log == nil {
			return nil
		}

		if err := repo.MarkLogDeleted(ctx, log.ID); err != nil {
			return err
		}
		if _, err := repo.RecalculateTotal(ctx, userID); err != nil {
			return err
		}

		revoked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return revoked, nil
}

func (s *pointService) RecalculateTotal(ctx context.Context, userID uint) (*pointDto.RecalculateResponse, error) {
	var total int

	err := s.repo.Transaction(ctx, func(repo pointRepo.PointRepository) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NotFound("user not found")
		}

		total, err = repo.RecalculateTotal(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &pointDto.RecalculateResponse{UserID: userID, ActivityPoints: total}, nil
}

func (s *pointService) CheckIn(ctx context.Context, userID uint) (*pointDto.CheckInResponse, error) {
	granted, total, err := s.grant(ctx, userID, entity.ActivityTypeDailyCheckIn, nil)
	if err != nil {
		return nil, err
	}

	return &pointDto.CheckInResponse{Granted: granted, ActivityPoints: total}, nil
}

func (s *pointService) GetHistory(ctx context.Context, userID uint, filter pointDto.HistoryFilter) (*pointDto.PaginatedHistoryResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultHistoryLimit
	}

	entries, total, err := s.repo.FindHistory(ctx, userID, (filter.Page-1)*filter.Limit, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load point history: %w", err)
	}
	if entries == nil {
		entries = []pointRepo.HistoryEntry{}
	}

	return &pointDto.PaginatedHistoryResponse{
		Data: entries,
		Meta: dto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *pointService) GetLeaderboard(ctx context.Context, limit int) ([]pointDto.LeaderboardEntry, error) {
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}

	users, err := s.repo.FindTopUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	weekly, err := s.repo.SumPointsSince(ctx, ids, s.now().Add(-weeklyWindow).UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly points: %w", err)
	}

	entries := make([]pointDto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, pointDto.LeaderboardEntry{
			UserID:     u.ID,
			Nickname:   u.Nickname,
			Position:   i + 1,
			RankStatus: GetRankStatusWithWeekly(u.ActivityPoints, weekly[u.ID]),
		})
	}

	return entries, nil
}

func (s *pointService) GetRankStatus(ctx context.Context, userID uint, total int) (dto.RankStatus, error) {
	weekly, err := s.repo.SumPointsSince(ctx, []uint{userID}, s.now().Add(-weeklyWindow).UTC())
	if err != nil {
		return dto.RankStatus{}, fmt.Errorf("failed to load weekly points: %w", err)
	}
	return GetRankStatusWithWeekly(total, weekly[userID]), nil
}

// dayBounds returns the UTC instants where the local calendar day of t starts and ends.
func (s *pointService) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
