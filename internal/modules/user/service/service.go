package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"needu.com/community/internal/entity"
	point "needu.com/community/internal/modules/point/service"
	"needu.com/community/internal/modules/user/dto"
	"needu.com/community/internal/modules/user/repository"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/mailer"
)

// duplicateColumns maps the client-facing item name to a users column.
var duplicateColumns = map[string]string{
	"id":          "login_id",
	"login_id":    "login_id",
	"nickname":    "nickname",
	"phonenumber": "phonenumber",
}

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	CheckDuplicate(ctx context.Context, item, value string) (*dto.DuplicateCheckResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	SendVerificationCode(ctx context.Context, email string) (*dto.SendVerificationResponse, error)
	ConfirmVerificationCode(ctx context.Context, req dto.ConfirmVerificationRequest) (*dto.ConfirmVerificationResponse, error)
	Remove(ctx context.Context, req dto.RemoveRequest) error
	UpdatePersonalInfo(ctx context.Context, userID uint, req dto.UpdatePersonalInfoRequest) (*dto.UserResponse, error)
	GetMe(ctx context.Context, userID uint) (*dto.UserResponse, error)
}

type Options struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	VerifyCodeTTL time.Duration
}

type userService struct {
	repo         repository.UserRepository
	codes        repository.VerificationStore
	mailer       mailer.Mailer
	pointService point.PointService
	opts         Options
}

func NewUserService(repo repository.UserRepository, codes repository.VerificationStore, mail mailer.Mailer, pointService point.PointService, opts Options) UserService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.VerifyCodeTTL <= 0 {
		opts.VerifyCodeTTL = 5 * time.Minute
	}

	return &userService{
		repo:         repo,
		codes:        codes,
		mailer:       mail,
		pointService: pointService,
		opts:         opts,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	taken, err := s.repo.ExistsBy(ctx, "login_id", req.LoginID)
	if err != nil {
		return nil, fmt.Errorf("failed to check login id: %w", err)
	}
	if taken {
		return nil, apperror.BadRequest("duplicate id")
	}

	taken, err = s.repo.ExistsBy(ctx, "nickname", req.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if taken {
		return nil, apperror.BadRequest("duplicate nickname")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	infoPeriod := req.InfoPeriod
	if infoPeriod == 0 {
		infoPeriod = 1
	}

	user := &entity.User{
		LoginID:        req.LoginID,
		PasswordHash:   string(hashed),
		Nickname:       req.Nickname,
		Phonenumber:    req.Phonenumber,
		Policy:         req.Policy,
		PersonalInfo:   req.PersonalInfo,
		MarketingEmail: req.MarketingEmail,
		MarketingSMS:   req.MarketingSMS,
		InfoPeriod:     infoPeriod,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "failed to create user", fmt.Errorf("%w: %v", apperror.ErrBadRequest, err))
	}

	if _, err := s.pointService.AddPoint(ctx, user.ID, entity.ActivityTypeSignUp, nil); err != nil {
		slog.Error("failed to grant sign-up points",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}

	return s.loadResponse(ctx, user.ID)
}

func (s *userService) CheckDuplicate(ctx context.Context, item, value string) (*dto.DuplicateCheckResponse, error) {
	column, ok := duplicateColumns[item]
	if !ok {
		return nil, apperror.BadRequest("invalid item")
	}

	taken, err := s.repo.ExistsBy(ctx, column, value)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate %s: %w", item, err)
	}

	return &dto.DuplicateCheckResponse{Available: !taken}, nil
}

func (s *userService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByLoginID(ctx, input.LoginID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, expiresIn, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *userService) SendVerificationCode(ctx context.Context, email string) (*dto.SendVerificationResponse, error) {
	if s.codes == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "email verification is not available", apperror.ErrUpstream)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	id := uuid.NewString()
	if err := s.codes.Save(ctx, id, repository.Verification{Email: email, Code: code}, s.opts.VerifyCodeTTL); err != nil {
		return nil, err
	}

	body, err := mailer.RenderVerificationEmail(code)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(ctx, email, mailer.VerificationSubject, body); err != nil {
		_ = s.codes.Delete(ctx, id)
		slog.Error("failed to send verification email", slog.String("error", err.Error()))
		return nil, apperror.New(http.StatusBadGateway, "failed to send verification email", fmt.Errorf("%w: %v", apperror.ErrUpstream, err))
	}

	return &dto.SendVerificationResponse{
		VerificationID: id,
		ExpiresIn:      int64(s.opts.VerifyCodeTTL.Seconds()),
	}, nil
}

func (s *userService) ConfirmVerificationCode(ctx context.Context, req dto.ConfirmVerificationRequest) (*dto.ConfirmVerificationResponse, error) {
	if s.codes == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "email verification is not available", apperror.ErrUpstream)
	}

	v, err := s.codes.Get(ctx, req.VerificationID)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.BadRequest("verification code expired")
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(req.Code)) != 1 {
		return nil, apperror.BadRequest("invalid verification code")
	}

	if err := s.codes.Delete(ctx, req.VerificationID); err != nil {
		slog.Warn("failed to delete verification code", slog.String("error", err.Error()))
	}

	return &dto.ConfirmVerificationResponse{Verified: true, Email: v.Email}, nil
}

func (s *userService) Remove(ctx context.Context, req dto.RemoveRequest) error {
	user, err := s.repo.FindByLoginID(ctx, req.LoginID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperror.Unauthorized("invalid credentials")
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return apperror.New(http.StatusBadRequest, "failed to delete user", fmt.Errorf("%w: %v", apperror.ErrBadRequest, err))
	}
	return nil
}

func (s *userService) UpdatePersonalInfo(ctx context.Context, userID uint, req dto.UpdatePersonalInfoRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	if req.Nickname != nil && *req.Nickname != user.Nickname {
		taken, err := s.repo.ExistsBy(ctx, "nickname", *req.Nickname)
		if err != nil {
			return nil, fmt.Errorf("failed to check nickname: %w", err)
		}
		if taken {
			return nil, apperror.BadRequest("duplicate nickname")
		}
		user.Nickname = *req.Nickname
	}

	if req.CareerTypeID != nil {
		ok, err := s.repo.CareerTypeExists(ctx, *req.CareerTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check career type: %w", err)
		}
		if !ok {
			return nil, apperror.BadRequest("invalid career type")
		}
		user.CareerTypeID = req.CareerTypeID
	}

	if req.Phonenumber != nil {
		user.Phonenumber = *req.Phonenumber
	}

	if err := s.repo.UpdatePersonalInfo(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update personal info: %w", err)
	}

	if user.CareerTypeID != nil && user.Phonenumber != "" {
		if _, err := s.pointService.AddPoint(ctx, user.ID, entity.ActivityTypePersonalInfo, nil); err != nil {
			return nil, err
		}
	}

	return s.GetMe(ctx, user.ID)
}

func (s *userService) GetMe(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	res, err := s.loadResponse(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.pointService.GetRankStatus(ctx, userID, res.ActivityPoints)
	if err != nil {
		return nil, err
	}
	res.RankStatus = &status

	return res, nil
}

func (s *userService) loadResponse(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.opts.TokenTTL.Seconds()), nil
}

// generateCode returns a six digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
