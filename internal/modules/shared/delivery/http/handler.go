package handler

import (
	"net/http"

	sharedDto "needu.com/community/internal/modules/shared/dto"
	shared "needu.com/community/internal/modules/shared/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/response"
	"needu.com/community/pkg/validator"

	"github.com/gin-gonic/gin"
)

type SharedHandler struct {
	service shared.SharedService
}

func NewSharedHandler(service shared.SharedService) *SharedHandler {
	return &SharedHandler{service: service}
}

func (h *SharedHandler) GetCareerTypes(c *gin.Context) {
	types, err := h.service.GetCareerTypes(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (h *SharedHandler) GetHashtags(c *gin.Context) {
	tags, err := h.service.GetHashtags(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (h *SharedHandler) CreateReport(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req sharedDto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.CreateReport(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *SharedHandler) Subscribe(c *gin.Context) {
	var req sharedDto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.Subscribe(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
