package shared

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"needu.com/community/internal/entity"
	sharedDto "needu.com/community/internal/modules/shared/dto"
	sharedRepo "needu.com/community/internal/modules/shared/repository"
	userRepo "needu.com/community/internal/modules/user/repository"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/notifier"
)

const notifyTimeout = 10 * time.Second

type SharedService interface {
	GetCareerTypes(ctx context.Context) ([]sharedDto.CareerTypeResponse, error)
	GetHashtags(ctx context.Context) ([]sharedDto.HashtagResponse, error)
	CreateReport(ctx context.Context, callerID uint, req sharedDto.CreateReportRequest) (*sharedDto.ReportResponse, error)
	Subscribe(ctx context.Context, req sharedDto.SubscribeRequest) (*sharedDto.SubscribeResponse, error)
}

type sharedService struct {
	repo     sharedRepo.SharedRepository
	userRepo userRepo.UserRepository
	notifier notifier.Notifier
	// done is signalled after each report notification attempt; nil outside tests.
	done     chan<- struct{}
}

func NewSharedService(repo sharedRepo.SharedRepository, userRepo userRepo.UserRepository, notifier notifier.Notifier) SharedService {
	return &sharedService{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *sharedService) GetCareerTypes(ctx context.Context) ([]sharedDto.CareerTypeResponse, error) {
	types, err := s.repo.FindCareerTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load career types: %w", err)
	}

	res := make([]sharedDto.CareerTypeResponse, 0, len(types))
	for _, t := range types {
		res = append(res, sharedDto.CareerTypeResponse{ID: t.ID, Name: t.Name})
	}
	return res, nil
}

func (s *sharedService) GetHashtags(ctx context.Context) ([]sharedDto.HashtagResponse, error) {
	tags, err := s.repo.FindHashtags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hashtags: %w", err)
	}

	res := make([]sharedDto.HashtagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, sharedDto.HashtagResponse{ID: t.ID, Name: t.Name})
	}
	return res, nil
}

func (s *sharedService) CreateReport(ctx context.Context, callerID uint, req sharedDto.CreateReportRequest) (*sharedDto.ReportResponse, error) {
	if callerID == 0 || callerID != req.UserID {
		return nil, apperror.Unauthorized("unauthorized")
	}

	report := &entity.Report{
		UserID:     req.UserID,
		ReportType: req.ReportType,
		Target:     req.Target,
		TargetID:   req.TargetID,
		Comment:    req.Comment,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	if report.ID == 0 {
		return nil, apperror.BadRequest("failed to save report")
	}

	reporter, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reporter: %w", err)
	}

	loginID := fmt.Sprintf("#%d", req.UserID)
	if reporter != nil {
		loginID = reporter.LoginID
	}

	s.notifyAsync(notifier.ChannelReport, formatReport(loginID, report))

	return &sharedDto.ReportResponse{Msg: "report submitted"}, nil
}

func formatReport(loginID string, report *entity.Report) string {
	var b strings.Builder
	b.WriteString("======= user report =======\n")
	fmt.Fprintf(&b, "reporter: %s\n", loginID)
	fmt.Fprintf(&b, "type: %s\n", report.ReportType)
	fmt.Fprintf(&b, "comment: %s\n", report.Comment)
	fmt.Fprintf(&b, "target: %s\n", report.Target)
	fmt.Fprintf(&b, "target id: %d\n", report.TargetID)
	return b.String()
}

// notifyAsync delivers outside the request lifecycle. Failures are logged only.
func (s *sharedService) notifyAsync(channel, text string) {
	if s.notifier == nil {
		return
	}

	go func() {
		defer func() {
			if s.done != nil {
				s.done <- struct{}{}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, channel, text); err != nil {
			slog.Warn("failed to deliver notification",
				slog.String("channel", channel),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (s *sharedService) Subscribe(ctx context.Context, req sharedDto.SubscribeRequest) (*sharedDto.SubscribeResponse, error) {
	sub := &entity.Subscribe{Email: strings.TrimSpace(req.Email)}
	if err := s.repo.CreateSubscribe(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	return &sharedDto.SubscribeResponse{
		ID:        sub.ID,
		Email:     sub.Email,
		CreatedAt: sub.CreatedAt,
	}, nil
}
