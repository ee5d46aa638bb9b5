package response

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"needu.com/community/pkg/apperror"
)

// ContextUserIDKey is where the auth middleware stores the authenticated user id.
const ContextUserIDKey = "user_id"

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status", code),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// ParseUintParam reads a positive numeric path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Param(name), &id); err != nil || id == 0 {
		return 0, apperror.BadRequest(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
