package handler

import (
	"net/http"

	pointDto "needu.com/community/internal/modules/point/dto"
	point "needu.com/community/internal/modules/point/service"
	"needu.com/community/pkg/apperror"
	"needu.com/community/pkg/response"
	"needu.com/community/pkg/validator"

	"github.com/gin-gonic/gin"
)

type PointHandler struct {
	service point.PointService
}

func NewPointHandler(service point.PointService) *PointHandler {
	return &PointHandler{service: service}
}

func (h *PointHandler) CheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CheckIn(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PointHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter pointDto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.GetHistory(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PointHandler) GetLeaderboard(c *gin.Context) {
	var filter pointDto.LeaderboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	entries, err := h.service.GetLeaderboard(c.Request.Context(), filter.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *PointHandler) Recalculate(c *gin.Context) {
	userID, err := response.ParseUintParam(c, "user_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.RecalculateTotal(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
