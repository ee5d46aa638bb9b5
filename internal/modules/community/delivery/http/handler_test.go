package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	communityDto "needu.com/community/internal/modules/community/dto"
	community "needu.com/community/internal/modules/community/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/ratelimiter"
	"needu.com/community/pkg/response"
)

type fakeCommunityService struct {
	community.CommunityService
	createErr error
	likeReq   communityDto.PostLikeRequest
	caller    uint
	viewed    uint
}

func (f *fakeCommunityService) CreatePost(ctx context.Context, userID uint, req communityDto.CreatePostRequest) (*communityDto.PostResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &communityDto.PostResponse{ID: 1, UserID: userID, TopicID: req.TopicID, Title: req.Title}, nil
}

func (f *fakeCommunityService) GetPost(ctx context.Context, postID uint) (*communityDto.GetPostResponse, error) {
	if postID == 404 {
		return nil, apperror.NotFound("post not found")
	}
	return &communityDto.GetPostResponse{Msg: communityDto.PostStatusDeleted}, nil
}

func (f *fakeCommunityService) UpdateView(ctx context.Context, postID uint) error {
	f.viewed = postID
	return nil
}

func (f *fakeCommunityService) UpdatePostLike(ctx context.Context, callerID uint, req communityDto.PostLikeRequest) (*communityDto.ResultResponse, error) {
	f.caller = callerID
	f.likeReq = req
	return &communityDto.ResultResponse{Success: true, Msg: req.Type}, nil
}

func newRouter(svc community.CommunityService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCommunityHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(response.ContextUserIDKey, userID)
		}
		c.Next()
	})
	r.POST("/community/posts", h.CreatePost)
	r.POST("/community/posts/like", h.UpdatePostLike)
	r.GET("/community/posts/:post_id", h.GetPost)
	r.PUT("/community/posts/:post_id/view", h.UpdateView)
	r.GET("/community/topics", h.GetTopics)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePost(t *testing.T) {
	r := newRouter(&fakeCommunityService{}, 3)

	w := doJSON(r, http.MethodPost, "/community/posts", `{"topic_id":1,"title":"hi","markdown":"body"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body communityDto.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body.UserID)
}

func TestCreatePostValidation(t *testing.T) {
	r := newRouter(&fakeCommunityService{}, 3)

	w := doJSON(r, http.MethodPost, "/community/posts", `{"title":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r := newRouter(&fakeCommunityService{}, 0)

	w := doJSON(r, http.MethodPost, "/community/posts", `{"topic_id":1,"title":"hi","markdown":"body"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRateLimitSetsRetryAfter(t *testing.T) {
	svc := &fakeCommunityService{createErr: &ratelimiter.RateLimitError{Message: "slow down", RetryAfter: 12 * time.Second}}
	r := newRouter(svc, 3)

	w := doJSON(r, http.MethodPost, "/community/posts", `{"topic_id":1,"title":"hi","markdown":"body"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))
}

func TestCreatePostModerationUnavailable(t *testing.T) {
	svc := &fakeCommunityService{createErr: apperror.New(http.StatusBadGateway, "moderation unavailable", apperror.ErrUpstream)}
	r := newRouter(svc, 3)

	w := doJSON(r, http.MethodPost, "/community/posts", `{"topic_id":1,"title":"hi","markdown":"body"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetPost(t *testing.T) {
	r := newRouter(&fakeCommunityService{}, 0)

	w := doJSON(r, http.MethodGet, "/community/posts/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), communityDto.PostStatusDeleted)

	w = doJSON(r, http.MethodGet, "/community/posts/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/community/posts/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateView(t *testing.T) {
	svc := &fakeCommunityService{}
	r := newRouter(svc, 0)

	w := doJSON(r, http.MethodPut, "/community/posts/9/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 9, svc.viewed)
}

func TestUpdatePostLikePassesCaller(t *testing.T) {
	svc := &fakeCommunityService{}
	r := newRouter(svc, 4)

	w := doJSON(r, http.MethodPost, "/community/posts/like", `{"user_id":4,"post_id":2,"type":"dislike"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, svc.caller)
	assert.Equal(t, "dislike", svc.likeReq.Type)

	w = doJSON(r, http.MethodPost, "/community/posts/like", `{"user_id":4,"post_id":2,"type":"love"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTopicsRequiresType(t *testing.T) {
	r := newRouter(&fakeCommunityService{}, 0)

	w := doJSON(r, http.MethodGet, "/community/topics", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
