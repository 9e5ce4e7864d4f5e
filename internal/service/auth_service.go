package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/attendance-web/internal/models"
	"github.com/noah-isme/attendance-web/pkg/database"
	appErrors "github.com/noah-isme/attendance-web/pkg/errors"
)

const (
	msgMissingCredentials = "Please provide both email and password"
	msgInvalidEmail       = "Please provide a valid email address"
	msgInvalidCredentials = "Invalid email or password"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type instructorRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Instructor, error)
}

// AuthService verifies instructor credentials.
type AuthService struct {
	repo      instructorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService and registers the emailtld rule on validate.
func NewAuthService(repo instructorRepository, validate *validator.Validate, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	err := validate.RegisterValidation("emailtld", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register emailtld validation: %w", err)
	}
	return &AuthService{repo: repo, validator: validate, logger: logger}, nil
}

// NormalizeEmail trims and lower-cases an address before lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login returns the instructor for valid credentials. Unknown email and wrong password yield
// the same error so callers cannot tell them apart.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Instructor, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}

	instructor, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, msgInvalidCredentials)
		}
		category := database.Classify(err)
		s.logger.Error("instructor lookup failed", zap.String("category", string(category)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, category.Message())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(instructor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, msgInvalidCredentials)
	}

	return instructor, nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return msgMissingCredentials
			}
		}
		return msgInvalidEmail
	}
	return msgMissingCredentials
}
