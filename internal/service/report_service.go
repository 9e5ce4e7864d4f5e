package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/storage"
)

// ReportSuffix is the extension of generated report files.
const ReportSuffix = ".txt"

const generatedLayout = "2006-01-02 15:04:05"

var unsafeCodeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

type reportRowRepository interface {
	ReportRows(ctx context.Context, courseID int64, date time.Time) ([]models.ReportRow, error)
}

type reportStore interface {
	Save(filename string, data []byte) (string, error)
	ReadFile(filename string) ([]byte, error)
	Stat(filename string) (storage.FileInfo, error)
	List(suffix string) ([]storage.FileInfo, error)
}

type textRenderer interface {
	RenderText(text, title string) ([]byte, error)
}

// ReportDownload is a resolved report ready to be sent to the client.
type ReportDownload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService formats, stores and serves attendance reports.
type ReportService struct {
	courses *CourseService
	rows    reportRowRepository
	store   reportStore
	pdf     textRenderer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs a ReportService. pdf may be nil to disable PDF downloads.
func NewReportService(courses *CourseService, rows reportRowRepository, store reportStore, pdf textRenderer, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		courses: courses,
		rows:    rows,
		store:   store,
		pdf:     pdf,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ReportFileName derives the stored file name for a course and date.
func ReportFileName(courseCode, date string) string {
	code := unsafeCodeChars.ReplaceAllString(courseCode, "_")
	return fmt.Sprintf("attendance_%s_%s%s", code, date, ReportSuffix)
}

// Summarize counts present and absent rows. Anything other than present counts as absent.
func Summarize(rows []models.ReportRow) models.ReportSummary {
	summary := models.ReportSummary{Total: len(rows)}
	for _, row := range rows {
		if row.Status == models.AttendanceStatusPresent {
			summary.Present++
		} else {
			summary.Absent++
		}
	}
	return summary
}

// FormatReport renders the fixed-layout plain-text report.
func FormatReport(course models.Course, rows []models.ReportRow, date string, generatedAt time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("-", 50)

	b.WriteString("\nUNIVERSITY ATTENDANCE REPORT\n")
	b.WriteString("============================\n\n")
	fmt.Fprintf(&b, "Course: %s - %s\n", course.CourseCode, course.CourseName)
	fmt.Fprintf(&b, "Date: %s\n", date)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(generatedLayout))
	b.WriteString("ATTENDANCE SUMMARY\n")
	b.WriteString("==================\n")
	b.WriteString("\nSTUDENT ATTENDANCE:\n")
	b.WriteString(rule + "\n")

	for _, row := range rows {
		name := row.LastName + ", " + row.FirstName
		fmt.Fprintf(&b, "%-10s | %-25s | %s\n", row.StudentID, name, strings.ToUpper(string(row.Status)))
	}

	summary := Summarize(rows)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "TOTAL STUDENTS: %d\n", summary.Total)
	fmt.Fprintf(&b, "PRESENT: %d\n", summary.Present)
	fmt.Fprintf(&b, "ABSENT: %d\n", summary.Absent)
	if summary.Total == 0 {
		b.WriteString("ATTENDANCE RATE: 0%\n")
	} else {
		fmt.Fprintf(&b, "ATTENDANCE RATE: %.1f%%\n", summary.Rate())
	}
	return b.String()
}

// Generate writes the report for (courseID, date) and returns its file name.
func (s *ReportService) Generate(ctx context.Context, courseID int64, rawDate string) (string, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return "", err
	}
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return "", err
	}
	rows, err := s.rows.ReportRows(ctx, courseID, date)
	if err != nil {
		s.logger.Error("load report rows failed", zap.Int64("course_id", courseID), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating report. Please try again.")
	}

	day := date.Format(models.DateLayout)
	content := FormatReport(*course, rows, day, s.now())
	filename, err := s.store.Save(ReportFileName(course.CourseCode, day), []byte(content))
	if err != nil {
		s.logger.Error("write report failed", zap.Int64("course_id", courseID), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating report. Please try again.")
	}

	s.metrics.RecordReportGenerated()
	s.logger.Info("report generated", zap.String("filename", filename), zap.Int("rows", len(rows)))
	return filename, nil
}

// List returns stored reports, newest first.
func (s *ReportService) List(ctx context.Context) ([]models.ReportFile, error) {
	files, err := s.store.List(ReportSuffix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error loading reports")
	}
	reports := make([]models.ReportFile, 0, len(files))
	for _, f := range files {
		reports = append(reports, models.ReportFile{Filename: f.Filename, Created: f.Created, Size: f.Size})
	}
	return reports, nil
}

// Download resolves a stored report by name. When asPDF is set the text is rendered to PDF.
func (s *ReportService) Download(ctx context.Context, filename string, asPDF bool) (*ReportDownload, error) {
	if storage.ValidateName(filename) != nil || !strings.HasSuffix(filename, ReportSuffix) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid report name")
	}
	if _, err := s.store.Stat(filename); err != nil {
		return nil, downloadError(err)
	}
	data, err := s.store.ReadFile(filename)
	if err != nil {
		return nil, downloadError(err)
	}
	if !asPDF {
		return &ReportDownload{Filename: filename, ContentType: "text/plain; charset=utf-8", Data: data}, nil
	}
	if s.pdf == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "PDF export is not available")
	}
	rendered, err := s.pdf.RenderText(string(data), strings.TrimSuffix(filename, ReportSuffix))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error downloading report")
	}
	return &ReportDownload{
		Filename:    strings.TrimSuffix(filename, ReportSuffix) + ".pdf",
		ContentType: "application/pdf",
		Data:        rendered,
	}, nil
}

func downloadError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return appErrors.Clone(appErrors.ErrNotFound, "Report not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error downloading report")
}
