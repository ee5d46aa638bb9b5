package community

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"needu.com/community/internal/entity"
	communityDto "needu.com/community/internal/modules/community/dto"
	communityRepo "needu.com/community/internal/modules/community/repository"
	point "needu.com/community/internal/modules/point/service"
	search "needu.com/community/internal/modules/search/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/content"
	"needu.com/community/pkg/dto"
	"needu.com/community/pkg/moderation"
	"needu.com/community/pkg/ratelimiter"
)

const (
	DefaultToxicityThreshold = 0.35
	defaultSearchLimit       = 20
	rateLimitActionPost      = "post"
)

type CommunityService interface {
	CreatePost(ctx context.Context, userID uint, req communityDto.CreatePostRequest) (*communityDto.PostResponse, error)
	GetPost(ctx context.Context, postID uint) (*communityDto.GetPostResponse, error)
	UpdateView(ctx context.Context, postID uint) error
	GetPostForEdit(ctx context.Context, userID, postID uint) (*communityDto.EditPostResponse, error)
	UpdatePost(ctx context.Context, userID, postID uint, req communityDto.UpdatePostRequest) (*communityDto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uint) (*communityDto.ResultResponse, error)
	GetTopics(ctx context.Context, typeID uint) ([]communityDto.TopicResponse, error)
	UpdatePostLike(ctx context.Context, callerID uint, req communityDto.PostLikeRequest) (*communityDto.ResultResponse, error)
	SearchPosts(ctx context.Context, query string, limit int) ([]search.PostDocument, error)
}

type Options struct {
	ToxicityThreshold float64
	PostCooldown      time.Duration
}

type communityService struct {
	postRepo      communityRepo.PostRepository
	topicRepo     communityRepo.TopicRepository
	likeRepo      communityRepo.LikeRepository
	classifier    moderation.Classifier
	pointService  point.PointService
	searchService search.SearchService
	redisClient   *redis.Client
	opts          Options
	now           func() time.Time
}

// NewCommunityService wires the post lifecycle. searchService and redisClient may be nil.
func NewCommunityService(
	postRepo communityRepo.PostRepository,
	topicRepo communityRepo.TopicRepository,
	likeRepo communityRepo.LikeRepository,
	classifier moderation.Classifier,
	pointService point.PointService,
	searchService search.SearchService,
	redisClient *redis.Client,
	opts Options,
) CommunityService {
	if opts.ToxicityThreshold <= 0 {
		opts.ToxicityThreshold = DefaultToxicityThreshold
	}

	return &communityService{
		postRepo:      postRepo,
		topicRepo:     topicRepo,
		likeRepo:      likeRepo,
		classifier:    classifier,
		pointService:  pointService,
		searchService: searchService,
		redisClient:   redisClient,
		opts:          opts,
		now:           time.Now,
	}
}

func postReason(postID uint) *string {
	return point.Reason("post:%d", postID)
}

func likeReason(postID, likerID uint) *string {
	return point.Reason("like:%d:%d", postID, likerID)
}

func (s *communityService) CreatePost(ctx context.Context, userID uint, req communityDto.CreatePostRequest) (*communityDto.PostResponse, error) {
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, rateLimitActionPost, s.opts.PostCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, rateLimitActionPost)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one post every %.0f seconds. Please wait %.0f seconds", s.opts.PostCooldown.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	// Roll the cooldown back unless the post is stored.
	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(context.WithoutCancel(ctx), s.redisClient, userID, rateLimitActionPost)
		}
	}()

	topic, err := s.topicRepo.FindByID(ctx, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}
	if topic == nil {
		return nil, apperror.BadRequest("Invalid topic")
	}

	if err := s.moderate(ctx, req.Title, req.Markdown); err != nil {
		return nil, err
	}

	body, err := content.RenderPostHTML(req.Markdown, req.HTML)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		TopicID: req.TopicID,
		UserID:  userID,
		Title:   req.Title,
		Content: body,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	if post.ID == 0 {
		return nil, apperror.Internal("failed to create post")
	}
	creationFailed = false

	if _, err := s.pointService.AddPoint(ctx, userID, entity.ActivityTypePostCreated, postReason(post.ID)); err != nil {
		slog.Error("failed to grant post points",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}

	s.indexAsync(post.ID)

	return toPostResponse(post), nil
}

func (s *communityService) GetPost(ctx context.Context, postID uint) (*communityDto.GetPostResponse, error) {
	detail, err := s.postRepo.FindDetail(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if detail == nil {
		return nil, apperror.NotFound("post not found")
	}

	if detail.IsDel {
		return &communityDto.GetPostResponse{Msg: communityDto.PostStatusDeleted}, nil
	}

	if detail.Blind > entity.BlindPending {
		reason := ""
		if detail.BlindTypeID != nil {
			reason, err = s.postRepo.FindBlindReason(ctx, *detail.BlindTypeID)
			if err != nil {
				return nil, fmt.Errorf("failed to load blind reason: %w", err)
			}
		}
		return &communityDto.GetPostResponse{Msg: communityDto.PostStatusBlinded, Blind: reason}, nil
	}

	likes, dislikes, err := s.likeRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	return &communityDto.GetPostResponse{
		Post: &communityDto.PostDetailResponse{
			ID:      detail.ID,
			Title:   detail.Title,
			Content: detail.Content,
			View:    detail.View,
			Topic: communityDto.TopicResponse{
				ID:     detail.TopicID,
				Name:   detail.TopicName,
				TypeID: detail.TopicTypeID,
			},
			Author: dto.AuthorResponse{
				ID:       detail.UserID,
				Nickname: detail.AuthorNickname,
			},
			LikeCount:    likes,
			DislikeCount: dislikes,
			CreatedAt:    detail.CreatedAt,
			UpdatedAt:    detail.UpdatedAt,
		},
	}, nil
}

func (s *communityService) UpdateView(ctx context.Context, postID uint) error {
	found, err := s.postRepo.IncrementView(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to update view: %w", err)
	}
	if !found {
		return apperror.NotFound("post not found")
	}
	return nil
}

func (s *communityService) GetPostForEdit(ctx context.Context, userID, postID uint) (*communityDto.EditPostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil || post.IsDel {
		return nil, apperror.NotFound("post not found")
	}
	if post.UserID != userID {
		return nil, apperror.Forbidden("you can only edit your own post")
	}

	topic, err := s.topicRepo.FindByID(ctx, post.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}

	var typeID uint
	if topic != nil {
		typeID = topic.TypeID
	}

	return &communityDto.EditPostResponse{
		PostID:  post.ID,
		Title:   post.Title,
		TopicID: post.TopicID,
		UserID:  post.UserID,
		Content: post.Content,
		Type:    typeID,
	}, nil
}

func (s *communityService) UpdatePost(ctx context.Context, userID, postID uint, req communityDto.UpdatePostRequest) (*communityDto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil || post.IsDel {
		return nil, apperror.NotFound("post not found")
	}
	if post.UserID != userID {
		return nil, apperror.Forbidden("you can only update your own post")
	}

	if err := s.moderate(ctx, req.Title, req.Markdown); err != nil {
		return nil, err
	}

	if err := s.checkTopicMove(ctx, post.TopicID, req.TopicID); err != nil {
		return nil, err
	}

	body, err := content.RenderPostHTML(req.Markdown, req.HTML)
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.TopicID = req.TopicID
	post.Content = body
	post.UpdatedAt = s.now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.indexAsync(post.ID)

	return toPostResponse(post), nil
}

// checkTopicMove rejects moving a post into another top-level topic type.
func (s *communityService) checkTopicMove(ctx context.Context, currentTopicID, newTopicID uint) error {
	if currentTopicID == newTopicID {
		return nil
	}

	current, err := s.topicRepo.FindByID(ctx, currentTopicID)
	if err != nil {
		return fmt.Errorf("failed to load topic: %w", err)
	}
	next, err := s.topicRepo.FindByID(ctx, newTopicID)
	if err != nil {
		return fmt.Errorf("failed to load topic: %w", err)
	}

	if current == nil || next == nil || current.TypeID != next.TypeID {
		return apperror.BadRequest("Invalid topic")
	}
	return nil
}

func (s *communityService) DeletePost(ctx context.Context, userID, postID uint) (*communityDto.ResultResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, apperror.NotFound("post not found")
	}
	if post.UserID != userID {
		return nil, apperror.Forbidden("you can only delete your own post")
	}

	if err := s.postRepo.SoftDelete(ctx, postID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	if _, err := s.pointService.RevokePoint(ctx, post.UserID, entity.ActivityTypePostCreated, postReason(postID)); err != nil {
		slog.Error("failed to revoke post points",
			slog.Uint64("post_id", uint64(postID)),
			slog.String("error", err.Error()),
		)
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.DeletePost(postID); err != nil {
				slog.Warn("failed to remove post from search index", slog.Uint64("post_id", uint64(postID)), slog.String("error", err.Error()))
			}
		}()
	}

	return &communityDto.ResultResponse{Success: true, Msg: "deleted"}, nil
}

func (s *communityService) GetTopics(ctx context.Context, typeID uint) ([]communityDto.TopicResponse, error) {
	topics, err := s.topicRepo.FindByType(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}

	res := make([]communityDto.TopicResponse, 0, len(topics))
	for _, t := range topics {
		res = append(res, communityDto.TopicResponse{ID: t.ID, Name: t.Name, TypeID: t.TypeID})
	}
	return res, nil
}

func (s *communityService) UpdatePostLike(ctx context.Context, callerID uint, req communityDto.PostLikeRequest) (*communityDto.ResultResponse, error) {
	if callerID == 0 || callerID != req.UserID {
		return nil, apperror.Unauthorized("unauthorized")
	}

	post, err := s.postRepo.FindByID(ctx, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, apperror.NotFound("post not found")
	}

	likeType := entity.LikeTypeLike
	label := "like"
	if req.Type == "dislike" {
		likeType = entity.LikeTypeDislike
		label = "dislike"
	}

	existing, err := s.likeRepo.Find(ctx, req.UserID, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load like: %w", err)
	}

	switch {
	case existing == nil:
		like := &entity.PostLike{PostID: req.PostID, UserID: req.UserID, Type: likeType}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return nil, fmt.Errorf("failed to save like: %w", err)
		}
		if likeType == entity.LikeTypeLike {
			s.rewardAuthor(ctx, post, req.UserID, true)
		}
		return &communityDto.ResultResponse{Success: true, Msg: label}, nil

	case existing.Type == likeType:
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
		if likeType == entity.LikeTypeLike {
			s.rewardAuthor(ctx, post, req.UserID, false)
		}
		return &communityDto.ResultResponse{Success: true, Msg: label + " cancelled"}, nil

	default:
		return &communityDto.ResultResponse{Success: false, Msg: "type mismatch"}, nil
	}
}

// rewardAuthor grants or revokes the liked-post points. Self likes earn nothing.
func (s *communityService) rewardAuthor(ctx context.Context, post *entity.Post, likerID uint, grant bool) {
	if post.UserID == likerID {
		return
	}

	reason := likeReason(post.ID, likerID)
	var err error
	if grant {
		_, err = s.pointService.AddPoint(ctx, post.UserID, entity.ActivityTypePostLiked, reason)
	} else {
		_, err = s.pointService.RevokePoint(ctx, post.UserID, entity.ActivityTypePostLiked, reason)
	}
	if err != nil {
		slog.Error("failed to update like points",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.Bool("grant", grant),
			slog.String("error", err.Error()),
		)
	}
}

func (s *communityService) SearchPosts(ctx context.Context, query string, limit int) ([]search.PostDocument, error) {
	if s.searchService == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "search is not available", apperror.ErrUpstream)
	}
	if limit < 1 {
		limit = defaultSearchLimit
	}

	hits, err := s.searchService.SearchPosts(query, limit)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, "search unavailable", fmt.Errorf("%w: %v", apperror.ErrUpstream, err))
	}
	return hits, nil
}

// moderate scores title and body concurrently. A classifier failure is reported
// as an upstream error, never as a rejection.
func (s *communityService) moderate(ctx context.Context, title, body string) error {
	var titleScore, bodyScore float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		titleScore, err = s.classifier.Toxicity(gctx, title)
		return err
	})
	g.Go(func() error {
		var err error
		bodyScore, err = s.classifier.Toxicity(gctx, body)
		return err
	})

	if err := g.Wait(); err != nil {
		return apperror.New(http.StatusBadGateway, "moderation unavailable", fmt.Errorf("%w: %v", apperror.ErrUpstream, err))
	}

	if titleScore > s.opts.ToxicityThreshold {
		return apperror.BadRequest("Invalid title")
	}
	if bodyScore > s.opts.ToxicityThreshold {
		return apperror.BadRequest("Invalid content")
	}
	return nil
}

func (s *communityService) indexAsync(postID uint) {
	if s.searchService == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		detail, err := s.postRepo.FindDetail(ctx, postID)
		if err != nil || detail == nil {
			slog.Warn("failed to load post for indexing", slog.Uint64("post_id", uint64(postID)))
			return
		}

		post := &entity.Post{
			ID:        detail.ID,
			TopicID:   detail.TopicID,
			UserID:    detail.UserID,
			Title:     detail.Title,
			Content:   detail.Content,
			CreatedAt: detail.CreatedAt,
		}
		if err := s.searchService.IndexPost(post, detail.AuthorNickname); err != nil {
			slog.Warn("failed to index post", slog.Uint64("post_id", uint64(postID)), slog.String("error", err.Error()))
		}
	}()
}

func toPostResponse(post *entity.Post) *communityDto.PostResponse {
	return &communityDto.PostResponse{
		ID:        post.ID,
		TopicID:   post.TopicID,
		UserID:    post.UserID,
		Title:     post.Title,
		Content:   post.Content,
		View:      post.View,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
