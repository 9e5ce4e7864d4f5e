package models

import "time"

// Instructor is an authenticated user of the application. Rows are provisioned externally.
type Instructor struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LoginRequest holds credentials submitted from the login form.
type LoginRequest struct {
	Email    string `form:"email" validate:"required,emailtld"`
	Password string `form:"password" validate:"required"`
}
