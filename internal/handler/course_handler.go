package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	"github.com/noah-isme/attendance-web/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
}

// CourseHandler renders the dashboard and the course selection page.
type CourseHandler struct {
	service courseService
	logger  *zap.Logger
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(svc courseService, logger *zap.Logger) *CourseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseHandler{service: svc, logger: logger}
}

// Dashboard lists courses. A failed lookup still renders the page, with no courses.
func (h *CourseHandler) Dashboard(c *gin.Context) {
	data := pageData(c, h.logger, "Dashboard")
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("load dashboard courses failed", zap.Error(err))
		courses = []models.Course{}
	}
	data["courses"] = courses
	response.Page(c, http.StatusOK, "dashboard.html", data)
}

// Courses renders the course selection page.
func (h *CourseHandler) Courses(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	data := pageData(c, h.logger, "Select Course")
	data["courses"] = courses
	response.Page(c, http.StatusOK, "courses.html", data)
}
