package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sharedDto "needu.com/community/internal/modules/shared/dto"
	shared "needu.com/community/internal/modules/shared/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/response"
)

type fakeSharedService struct {
	shared.SharedService
	subscribed string
}

func (f *fakeSharedService) GetCareerTypes(ctx context.Context) ([]sharedDto.CareerTypeResponse, error) {
	return []sharedDto.CareerTypeResponse{{ID: 1, Name: "developer"}}, nil
}

func (f *fakeSharedService) CreateReport(ctx context.Context, callerID uint, req sharedDto.CreateReportRequest) (*sharedDto.ReportResponse, error) {
	if callerID != req.UserID {
		return nil, apperror.Unauthorized("unauthorized")
	}
	return &sharedDto.ReportResponse{Msg: "report submitted"}, nil
}

func (f *fakeSharedService) Subscribe(ctx context.Context, req sharedDto.SubscribeRequest) (*sharedDto.SubscribeResponse, error) {
	f.subscribed = req.Email
	return &sharedDto.SubscribeResponse{ID: 1, Email: req.Email}, nil
}

func newRouter(svc shared.SharedService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSharedHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(response.ContextUserIDKey, userID)
		}
		c.Next()
	})
	r.GET("/shared/career-types", h.GetCareerTypes)
	r.POST("/shared/reports", h.CreateReport)
	r.POST("/shared/subscribe", h.Subscribe)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetCareerTypes(t *testing.T) {
	r := newRouter(&fakeSharedService{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shared/career-types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []sharedDto.CareerTypeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
}

func TestCreateReport(t *testing.T) {
	r := newRouter(&fakeSharedService{}, 2)

	w := post(r, "/shared/reports", `{"user_id":2,"report_type":"spam","target":"post","target_id":5}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = post(r, "/shared/reports", `{"user_id":3,"report_type":"spam","target":"post","target_id":5}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, "/shared/reports", `{"user_id":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReportRequiresAuth(t *testing.T) {
	r := newRouter(&fakeSharedService{}, 0)

	w := post(r, "/shared/reports", `{"user_id":2,"report_type":"spam","target":"post","target_id":5}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubscribeValidatesEmail(t *testing.T) {
	svc := &fakeSharedService{}
	r := newRouter(svc, 0)

	w := post(r, "/shared/subscribe", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid email")

	w = post(r, "/shared/subscribe", `{"email":"reader@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "reader@example.com", svc.subscribed)
}
