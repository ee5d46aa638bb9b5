package handler

import (
	"errors"
	"fmt"
	"net/http"

	communityDto "needu.com/community/internal/modules/community/dto"
	community "needu.com/community/internal/modules/community/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/ratelimiter"
	"needu.com/community/pkg/response"
	"needu.com/community/pkg/validator"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	service community.CommunityService
}

func NewCommunityHandler(service community.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: service}
}

func (h *CommunityHandler) GetTopics(c *gin.Context) {
	var query communityDto.TopicQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	topics, err := h.service.GetTopics(c.Request.Context(), query.TypeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": topics})
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req communityDto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		var rateErr *ratelimiter.RateLimitError
		if errors.As(err, &rateErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateErr.RetryAfter.Seconds()))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *CommunityHandler) GetPost(c *gin.Context) {
	postID, err := response.ParseUintParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommunityHandler) UpdateView(c *gin.Context) {
	postID, err := response.ParseUintParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.UpdateView(c.Request.Context(), postID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, communityDto.ResultResponse{Success: true, Msg: "viewed"})
}

func (h *CommunityHandler) GetPostForEdit(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := response.ParseUintParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetPostForEdit(c.Request.Context(), userID, postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := response.ParseUintParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req communityDto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), userID, postID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := response.ParseUintParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.DeletePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommunityHandler) UpdatePostLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req communityDto.PostLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.UpdatePostLike(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommunityHandler) SearchPosts(c *gin.Context) {
	var query communityDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	hits, err := h.service.SearchPosts(c.Request.Context(), query.Q, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": hits})
}
