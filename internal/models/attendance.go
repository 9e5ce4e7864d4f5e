package models

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// DateLayout is the wire and storage format for attendance dates.
const DateLayout = "2006-01-02"

// AttendanceEntry is one validated student/status pair of a submission.
type AttendanceEntry struct {
	StudentID int64
	Status    AttendanceStatus
}

// RosterEntry is an enrolled student with the attendance recorded for the viewed date, if any.
type RosterEntry struct {
	Student
	AttendanceID *int64            `db:"attendance_id" json:"attendance_id,omitempty"`
	Status       *AttendanceStatus `db:"status" json:"status,omitempty"`
}

// StatusValue returns the recorded status or an empty string.
func (r RosterEntry) StatusValue() string {
	if r.Status == nil {
		return ""
	}
	return string(*r.Status)
}
