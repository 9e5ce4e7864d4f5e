package models

// Student is read-only from this application's perspective.
type Student struct {
	ID        int64   `db:"id" json:"id"`
	StudentID string  `db:"student_id" json:"student_id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     *string `db:"email" json:"email,omitempty"`
}

// FullName returns "last, first" as printed on rosters and reports.
func (s Student) FullName() string {
	return s.LastName + ", " + s.FirstName
}
