package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	"github.com/noah-isme/attendance-web/internal/service"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/response"
	"github.com/noah-isme/attendance-web/pkg/session"
)

type reportService interface {
	Generate(ctx context.Context, courseID int64, rawDate string) (string, error)
	List(ctx context.Context) ([]models.ReportFile, error)
	Download(ctx context.Context, filename string, asPDF bool) (*service.ReportDownload, error)
}

// ReportHandler generates, lists and serves attendance reports.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc reportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: svc, logger: logger, now: time.Now}
}

// Generate writes the report for the posted date and returns to the attendance page.
func (h *ReportHandler) Generate(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		response.NotFoundPage(c, "Course not found")
		return
	}
	date := c.PostForm("date")

	filename, err := h.service.Generate(c.Request.Context(), courseID, date)
	switch {
	case err == nil:
		addFlash(c, h.logger, session.FlashSuccess, "Report generated successfully: "+filename)
	case errors.Is(err, appErrors.ErrNotFound), errors.Is(err, appErrors.ErrValidation):
		addFlash(c, h.logger, session.FlashError, appErrors.FromError(err).Message)
	default:
		addFlash(c, h.logger, session.FlashError, "Error generating report. Please try again.")
	}
	if date == "" {
		date = service.Today(h.now())
	}
	c.Redirect(http.StatusFound, attendancePath(courseID, date))
}

// List renders stored reports, newest first.
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context())
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	data := pageData(c, h.logger, "Generated Reports")
	data["reports"] = reports
	response.Page(c, http.StatusOK, "reports.html", data)
}

// Download sends a stored report as an attachment; ?format=pdf renders it as PDF first.
func (h *ReportHandler) Download(c *gin.Context) {
	asPDF := c.Query("format") == "pdf"
	download, err := h.service.Download(c.Request.Context(), c.Param("filename"), asPDF)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Data(http.StatusOK, download.ContentType, download.Data)
}
