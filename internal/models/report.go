package models

import "time"

// ReportRow is one attendance line of a generated report.
type ReportRow struct {
	StudentID string           `db:"student_id"`
	FirstName string           `db:"first_name"`
	LastName  string           `db:"last_name"`
	Status    AttendanceStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}

// ReportSummary holds the counts printed at the end of a report.
type ReportSummary struct {
	Total   int
	Present int
	Absent  int
}

// Rate returns present/total as a percentage, 0 when there are no rows.
func (s ReportSummary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total) * 100
}

// ReportFile describes a generated report in the report store.
type ReportFile struct {
	Filename string    `json:"filename"`
	Created  time.Time `json:"created"`
	Size     int64     `json:"size"`
}
