package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/middleware"
	"github.com/noah-isme/attendance-web/internal/service"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
)

type attendanceService interface {
	View(ctx context.Context, courseID int64, rawDate string) (*service.AttendanceView, error)
	Submit(ctx context.Context, in service.SubmitAttendanceInput) (int, error)
	Delete(ctx context.Context, id int64) error
}

// AttendanceHandler serves the roster page, submissions and record deletion.
type AttendanceHandler struct {
	service attendanceService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{service: svc, logger: logger, now: time.Now}
}

// View renders the roster for a course and date (default today).
func (h *AttendanceHandler) View(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		response.NotFoundPage(c, "Course not found")
		return
	}
	date := c.Query("date")
	if date == "" {
		date = service.Today(h.now())
	}

	view, err := h.service.View(c.Request.Context(), courseID, date)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}

	data := pageData(c, h.logger, "Attendance - "+view.Course.CourseCode)
	data["course"] = view.Course
	data["date"] = view.Date
	data["roster"] = view.Roster
	response.Page(c, http.StatusOK, "attendance.html", data)
}

// Submit replaces the day's attendance with the posted attendance[<student id>] values.
func (h *AttendanceHandler) Submit(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		response.NotFoundPage(c, "Course not found")
		return
	}
	identity, _ := middleware.CurrentInstructor(c)
	date := c.PostForm("date")

	written, err := h.service.Submit(c.Request.Context(), service.SubmitAttendanceInput{
		CourseID:     courseID,
		Date:         date,
		Statuses:     c.PostFormMap("attendance"),
		InstructorID: identity.InstructorID,
	})
	switch {
	case err == nil:
		addFlash(c, h.logger, session.FlashSuccess, fmt.Sprintf("Attendance recorded successfully for %d students", written))
	case errors.Is(err, appErrors.ErrValidation):
		addFlash(c, h.logger, session.FlashError, appErrors.FromError(err).Message)
	default:
		addFlash(c, h.logger, session.FlashError, "Error recording attendance: "+appErrors.Detail(err))
	}

	if date == "" {
		date = service.Today(h.now())
	}
	c.Redirect(http.StatusFound, attendancePath(courseID, date))
}

// Delete godoc
// @Summary Delete an attendance record
// @Description Removes one attendance row by id. Called from the attendance page script.
// @Tags Attendance
// @Produce json
// @Param id path int true "Attendance record id"
// @Success 200 {object} response.Result
// @Failure 400 {object} response.Result
// @Failure 401 {object} response.Result
// @Failure 404 {object} response.Result
// @Failure 500 {object} response.Result
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.JSON(c, http.StatusBadRequest, false, "Invalid attendance id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, true, "Attendance record deleted successfully")
}

func attendancePath(courseID int64, date string) string {
	return fmt.Sprintf("/attendance/%d?date=%s", courseID, url.QueryEscape(date))
}
