package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
)

type attendanceRepository interface {
	Roster(ctx context.Context, courseID int64, date time.Time) ([]models.RosterEntry, error)
	ReplaceDay(ctx context.Context, courseID int64, date time.Time, entries []models.AttendanceEntry, recordedBy int64) (int, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// SubmitAttendanceInput is the raw form data of one submission.
type SubmitAttendanceInput struct {
	CourseID     int64
	Date         string
	Statuses     map[string]string
	InstructorID int64
}

// AttendanceView is everything the attendance page renders.
type AttendanceView struct {
	Course *models.Course
	Date   string
	Roster []models.RosterEntry
}

// AttendanceService implements roster viewing, full-replace submission and record deletion.
type AttendanceService struct {
	courses *CourseService
	repo    attendanceRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(courses *CourseService, repo attendanceRepository, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{courses: courses, repo: repo, metrics: metrics, logger: logger}
}

// ParseDate parses a YYYY-MM-DD value. Empty input is a validation error.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "Date is required")
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// Today returns the UTC calendar date of now in YYYY-MM-DD.
func Today(now time.Time) string {
	return now.UTC().Format(models.DateLayout)
}

// View loads the course and its roster for date.
func (s *AttendanceService) View(ctx context.Context, courseID int64, rawDate string) (*AttendanceView, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	roster, err := s.repo.Roster(ctx, courseID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error loading attendance page")
	}
	return &AttendanceView{Course: course, Date: date.Format(models.DateLayout), Roster: roster}, nil
}

// ValidEntries keeps mapping entries with an integer student id and a present/absent status,
// ordered by student id.
func ValidEntries(statuses map[string]string) []models.AttendanceEntry {
	entries := make([]models.AttendanceEntry, 0, len(statuses))
	for rawID, rawStatus := range statuses {
		status := models.AttendanceStatus(rawStatus)
		if !status.Valid() {
			continue
		}
		studentID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || studentID <= 0 {
			continue
		}
		entries = append(entries, models.AttendanceEntry{StudentID: studentID, Status: status})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StudentID < entries[j].StudentID })
	return entries
}

// Submit replaces the course's attendance for the date with the submitted mapping.
// Validation failures touch nothing; a failed transaction leaves the prior rows in place.
func (s *AttendanceService) Submit(ctx context.Context, in SubmitAttendanceInput) (int, error) {
	if len(in.Statuses) == 0 {
		s.metrics.RecordSubmission(SubmissionOutcomeInvalid, 0)
		return 0, appErrors.Clone(appErrors.ErrValidation, "Please mark attendance for at least one student")
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		s.metrics.RecordSubmission(SubmissionOutcomeInvalid, 0)
		return 0, err
	}
	entries := ValidEntries(in.Statuses)
	if len(entries) == 0 {
		s.metrics.RecordSubmission(SubmissionOutcomeInvalid, 0)
		return 0, appErrors.Clone(appErrors.ErrValidation, "Please mark attendance for at least one student")
	}

	written, err := s.repo.ReplaceDay(ctx, in.CourseID, date, entries, in.InstructorID)
	if err != nil {
		s.metrics.RecordSubmission(SubmissionOutcomeRolledBack, 0)
		s.logger.Error("attendance submission rolled back",
			zap.Int64("course_id", in.CourseID),
			zap.String("date", in.Date),
			zap.Int("entries", len(entries)),
			zap.Int64("instructor_id", in.InstructorID),
			zap.Error(err),
		)
		return 0, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "Error recording attendance")
	}

	s.metrics.RecordSubmission(SubmissionOutcomeSuccess, written)
	s.logger.Info("attendance recorded",
		zap.Int64("course_id", in.CourseID),
		zap.String("date", in.Date),
		zap.Int("records", written),
		zap.Int64("instructor_id", in.InstructorID),
	)
	return written, nil
}

// Delete removes one attendance record by id.
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Error("delete attendance failed", zap.Int64("attendance_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting attendance record")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
	}
	return nil
}
