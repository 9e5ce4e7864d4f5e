package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Instructor, error)
}

// AuthHandler serves the login page and the login/logout actions.
type AuthHandler struct {
	service authService
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, logger: logger}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	response.Page(c, http.StatusOK, "login.html", pageData(c, h.logger, "Login"))
}

// Login verifies the posted credentials and binds the instructor to the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		addFlash(c, h.logger, session.FlashError, "Please provide both email and password")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	instructor, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		addFlash(c, h.logger, session.FlashError, appErrors.FromError(err).Message)
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	identity := session.Identity{
		InstructorID:    instructor.ID,
		InstructorName:  instructor.Name,
		InstructorEmail: instructor.Email,
	}
	if err := session.FromContext(c).Login(identity); err != nil {
		h.logger.Error("persist session failed", zap.Int64("instructor_id", instructor.ID), zap.Error(err))
		addFlash(c, h.logger, session.FlashError, "An error occurred during login. Please try again.")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	h.logger.Info("instructor logged in", zap.Int64("instructor_id", instructor.ID))
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout destroys the session and always returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := session.FromContext(c).Destroy(); err != nil {
		h.logger.Warn("destroy session failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/auth/login")
}
