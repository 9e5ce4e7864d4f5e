package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/middleware"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
)

// pageData collects the layout fields every page renders and consumes pending flash messages.
func pageData(c *gin.Context, logger *zap.Logger, title string) gin.H {
	data := gin.H{"title": title}
	if identity, ok := middleware.CurrentInstructor(c); ok {
		data["instructorName"] = identity.InstructorName
	}
	flash, err := session.FromContext(c).TakeFlash()
	if err != nil {
		logger.Warn("take flash failed", zap.Error(err))
	}
	if flash.Success != "" {
		data["success"] = flash.Success
	}
	if flash.Error != "" {
		data["error"] = flash.Error
	}
	return data
}

func addFlash(c *gin.Context, logger *zap.Logger, kind session.FlashKind, message string) {
	if err := session.FromContext(c).AddFlash(kind, message); err != nil {
		logger.Warn("store flash failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// renderError maps typed errors onto the error page.
func renderError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := appErrors.FromError(err)
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		response.NotFoundPage(c, appErr.Message)
	case errors.Is(err, appErrors.ErrValidation):
		response.ErrorPage(c, http.StatusBadRequest, appErr.Message, nil)
	default:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		response.ErrorPage(c, appErr.Status, appErr.Message, err)
	}
}
