package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pointDto "needu.com/community/internal/modules/point/dto"
	point "needu.com/community/internal/modules/point/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/response"
)

type fakePointService struct {
	point.PointService
	checkInUser uint
	recalcUser  uint
	limit       int
}

func (f *fakePointService) CheckIn(ctx context.Context, userID uint) (*pointDto.CheckInResponse, error) {
	f.checkInUser = userID
	return &pointDto.CheckInResponse{Granted: true, ActivityPoints: 10}, nil
}

func (f *fakePointService) GetLeaderboard(ctx context.Context, limit int) ([]pointDto.LeaderboardEntry, error) {
	f.limit = limit
	return []pointDto.LeaderboardEntry{{UserID: 1, Nickname: "alice", Position: 1}}, nil
}

func (f *fakePointService) RecalculateTotal(ctx context.Context, userID uint) (*pointDto.RecalculateResponse, error) {
	f.recalcUser = userID
	if userID == 404 {
		return nil, apperror.NotFound("user not found")
	}
	return &pointDto.RecalculateResponse{UserID: userID, ActivityPoints: 5}, nil
}

func newRouter(svc point.PointService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPointHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(response.ContextUserIDKey, userID)
		}
		c.Next()
	})
	r.POST("/points/check-in", h.CheckIn)
	r.GET("/points/leaderboard", h.GetLeaderboard)
	r.POST("/admin/points/:user_id/recalculate", h.Recalculate)
	return r
}

func TestCheckInRequiresUser(t *testing.T) {
	r := newRouter(&fakePointService{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/points/check-in", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckIn(t *testing.T) {
	svc := &fakePointService{}
	r := newRouter(svc, 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/points/check-in", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, svc.checkInUser)

	var body pointDto.CheckInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Granted)
	assert.Equal(t, 10, body.ActivityPoints)
}

func TestGetLeaderboardValidatesLimit(t *testing.T) {
	svc := &fakePointService{}
	r := newRouter(svc, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/points/leaderboard?limit=1000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/points/leaderboard?limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.limit)
}

func TestRecalculate(t *testing.T) {
	svc := &fakePointService{}
	r := newRouter(svc, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/points/abc/recalculate", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/points/404/recalculate", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/points/12/recalculate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 12, svc.recalcUser)
}
