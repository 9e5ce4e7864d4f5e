package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-web/internal/models"
)

// InstructorRepository provides database access for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new instance of InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByEmail returns an instructor by normalised email. sql.ErrNoRows is returned unwrapped.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	const query = `SELECT id, email, password, name, created_at FROM instructors WHERE LOWER(email) = $1 LIMIT 1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor by email: %w", err)
	}
	return &instructor, nil
}
