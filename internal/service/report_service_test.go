package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
	"github.com/noah-isme/attendance-web/pkg/export"
	"github.com/noah-isme/attendance-web/pkg/storage"
)

type fakeReportRows struct {
	rows []models.ReportRow
	err  error
}

func (f *fakeReportRows) ReportRows(ctx context.Context, courseID int64, date time.Time) ([]models.ReportRow, error) {
	return f.rows, f.err
}

func reportRows(present, absent int) []models.ReportRow {
	rows := make([]models.ReportRow, 0, present+absent)
	for i := 0; i < present+absent; i++ {
		status := models.AttendanceStatusPresent
		if i >= present {
			status = models.AttendanceStatusAbsent
		}
		rows = append(rows, models.ReportRow{
			StudentID: fmt.Sprintf("S%03d", i+1),
			FirstName: "Student",
			LastName:  fmt.Sprintf("Number%d", i+1),
			Status:    status,
		})
	}
	return rows
}

func newReportFixture(t *testing.T, rows *fakeReportRows) (*ReportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	courses := NewCourseService(&mockCourseRepo{courses: []models.Course{
		{ID: 1, CourseCode: "CS101", CourseName: "Intro to Computing"},
		{ID: 2, CourseCode: "../etc/pass wd", CourseName: "Sneaky"},
	}})
	svc := NewReportService(courses, rows, store, export.NewPDFExporter(), NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC) }
	return svc, store
}

func TestFormatReportLayout(t *testing.T) {
	course := models.Course{CourseCode: "CS101", CourseName: "Intro to Computing"}
	rows := []models.ReportRow{
		{StudentID: "S001", FirstName: "Jane", LastName: "Doe", Status: models.AttendanceStatusPresent},
		{StudentID: "S002", FirstName: "John", LastName: "Roe", Status: models.AttendanceStatusAbsent},
	}
	generated := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	want := "\nUNIVERSITY ATTENDANCE REPORT\n" +
		"============================\n\n" +
		"Course: CS101 - Intro to Computing\n" +
		"Date: 2024-03-01\n" +
		"Generated: 2024-03-01 14:05:09\n\n" +
		"ATTENDANCE SUMMARY\n" +
		"==================\n" +
		"\nSTUDENT ATTENDANCE:\n" +
		strings.Repeat("-", 50) + "\n" +
		"S001       | Doe, Jane                 | PRESENT\n" +
		"S002       | Roe, John                 | ABSENT\n" +
		strings.Repeat("-", 50) + "\n" +
		"TOTAL STUDENTS: 2\n" +
		"PRESENT: 1\n" +
		"ABSENT: 1\n" +
		"ATTENDANCE RATE: 50.0%\n"

	assert.Equal(t, want, FormatReport(course, rows, "2024-03-01", generated))
}

func TestFormatReportSummary(t *testing.T) {
	course := models.Course{CourseCode: "CS101", CourseName: "Intro"}

	report := FormatReport(course, reportRows(3, 2), "2024-03-01", time.Now())
	assert.Contains(t, report, "TOTAL STUDENTS: 5\n")
	assert.Contains(t, report, "PRESENT: 3\n")
	assert.Contains(t, report, "ABSENT: 2\n")
	assert.Contains(t, report, "ATTENDANCE RATE: 60.0%\n")

	empty := FormatReport(course, nil, "2024-03-01", time.Now())
	assert.Contains(t, empty, "TOTAL STUDENTS: 0\n")
	assert.Contains(t, empty, "ATTENDANCE RATE: 0%\n")

	assert.Contains(t, FormatReport(course, reportRows(2, 1), "2024-03-01", time.Now()), "ATTENDANCE RATE: 66.7%\n")
}

func TestReportFileNameSanitizesCourseCode(t *testing.T) {
	assert.Equal(t, "attendance_CS101_2024-03-01.txt", ReportFileName("CS101", "2024-03-01"))
	assert.Equal(t, "attendance____etc_pass_wd_2024-03-01.txt", ReportFileName("../etc/pass wd", "2024-03-01"))
	assert.NoError(t, storage.ValidateName(ReportFileName("a/b\\..", "2024-03-01")))
}

func TestReportServiceGenerateWritesAndOverwrites(t *testing.T) {
	rows := &fakeReportRows{rows: reportRows(3, 2)}
	svc, store := newReportFixture(t, rows)
	ctx := context.Background()

	filename, err := svc.Generate(ctx, 1, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "attendance_CS101_2024-03-01.txt", filename)

	rows.rows = reportRows(1, 0)
	_, err = svc.Generate(ctx, 1, "2024-03-01")
	require.NoError(t, err)

	data, err := store.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TOTAL STUDENTS: 1\n")

	reports, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, filename, reports[0].Filename)
}

func TestReportServiceGenerateErrors(t *testing.T) {
	svc, _ := newReportFixture(t, &fakeReportRows{})

	_, err := svc.Generate(context.Background(), 99, "2024-03-01")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Generate(context.Background(), 1, "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	svc.rows = &fakeReportRows{err: errors.New("boom")}
	_, err = svc.Generate(context.Background(), 1, "2024-03-01")
	assert.Equal(t, "Error generating report. Please try again.", appErrors.FromError(err).Message)
}

func TestReportServiceGenerateSanitizedNameStaysInStore(t *testing.T) {
	svc, store := newReportFixture(t, &fakeReportRows{rows: reportRows(1, 1)})

	filename, err := svc.Generate(context.Background(), 2, "2024-03-01")
	require.NoError(t, err)
	_, err = store.Stat(filename)
	assert.NoError(t, err)
}

func TestReportServiceDownload(t *testing.T) {
	svc, store := newReportFixture(t, &fakeReportRows{})
	_, err := store.Save("attendance_CS101_2024-03-01.txt", []byte("hello report\n"))
	require.NoError(t, err)
	ctx := context.Background()

	plain, err := svc.Download(ctx, "attendance_CS101_2024-03-01.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "hello report\n", string(plain.Data))
	assert.Equal(t, "attendance_CS101_2024-03-01.txt", plain.Filename)

	pdf, err := svc.Download(ctx, "attendance_CS101_2024-03-01.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "attendance_CS101_2024-03-01.pdf", pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Data), "%PDF-"))

	for _, name := range []string{"../secret.txt", "a/b.txt", `a\b.txt`, "notes.md", ".."} {
		_, err = svc.Download(ctx, name, false)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), name)
	}

	_, err = svc.Download(ctx, "missing.txt", false)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceDownloadDirectoryIsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.txt"), 0o755))
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewReportService(NewCourseService(&mockCourseRepo{}), &fakeReportRows{}, store, export.NewPDFExporter(), NewMetricsService(), zap.NewNop())

	_, err = svc.Download(context.Background(), "folder.txt", false)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "Report not found", appErrors.FromError(err).Message)
}
