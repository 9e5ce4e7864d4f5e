package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-web/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Roster returns every student enrolled in the course with that day's record, if one exists.
// The LEFT JOIN keeps students without a record; their status is nil.
func (r *AttendanceRepository) Roster(ctx context.Context, courseID int64, date time.Time) ([]models.RosterEntry, error) {
	const query = `SELECT s.id, s.student_id, s.first_name, s.last_name, s.email, a.id AS attendance_id, a.status
FROM students s
JOIN course_enrollments ce ON s.id = ce.student_id
LEFT JOIN attendance a ON s.id = a.student_id AND a.course_id = $1 AND a.attendance_date = $2
WHERE ce.course_id = $1
ORDER BY s.last_name, s.first_name`
	rows := make([]models.RosterEntry, 0)
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date.Format(models.DateLayout)); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return rows, nil
}

// ReplaceDay swaps the course's records for date with entries inside one transaction.
// On any failure the transaction is rolled back and prior rows remain; the connection is
// returned to the pool on every path.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, courseID int64, date time.Time, entries []models.AttendanceEntry, recordedBy int64) (written int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attendance transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback attendance transaction: %w", rbErr))
		}
	}()

	day := date.Format(models.DateLayout)
	const deleteQuery = `DELETE FROM attendance WHERE course_id = $1 AND attendance_date = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, courseID, day); err != nil {
		return 0, fmt.Errorf("clear attendance: %w", err)
	}

	const insertQuery = `INSERT INTO attendance (course_id, student_id, attendance_date, status, recorded_by) VALUES ($1, $2, $3, $4, $5)`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, insertQuery, courseID, entry.StudentID, day, entry.Status, recordedBy); err != nil {
			return 0, fmt.Errorf("insert attendance for student %d: %w", entry.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attendance: %w", err)
	}
	committed = true
	return len(entries), nil
}

// ReportRows returns recorded attendance for (course, date) joined with student identity.
func (r *AttendanceRepository) ReportRows(ctx context.Context, courseID int64, date time.Time) ([]models.ReportRow, error) {
	const query = `SELECT s.student_id, s.first_name, s.last_name, a.status, a.created_at
FROM attendance a
JOIN students s ON a.student_id = s.id
WHERE a.course_id = $1 AND a.attendance_date = $2
ORDER BY s.last_name, s.first_name`
	rows := make([]models.ReportRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date.Format(models.DateLayout)); err != nil {
		return nil, fmt.Errorf("load report rows: %w", err)
	}
	return rows, nil
}

// DeleteByID removes one record and reports whether a row existed.
func (r *AttendanceRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM attendance WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete attendance rows affected: %w", err)
	}
	return affected > 0, nil
}
