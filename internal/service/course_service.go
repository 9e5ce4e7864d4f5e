package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/attendance-web/internal/models"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// CourseService exposes read access to courses.
type CourseService struct {
	repo courseRepository
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository) *CourseService {
	return &CourseService{repo: repo}
}

// List returns all courses ordered by course code.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error loading courses")
	}
	return courses, nil
}

// Get returns one course or a not-found error.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error loading course")
	}
	return course, nil
}
