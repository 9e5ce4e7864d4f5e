package models

// Course is a class offering instructors record attendance for.
type Course struct {
	ID         int64  `db:"id" json:"id"`
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
}
