package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yutthachai69/newjobflow/internal/models"
	pkgauth "github.com/yutthachai69/newjobflow/pkg/auth"
)

// CreateUserInput carries the fields for creating a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UserService handles user management business logic
type UserService struct {
	repo   UserRepository
	events SecurityEventLogger
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, events SecurityEventLogger, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Get returns a single user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a single user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns a page of users. Limits outside (0, 100] fall back to 50.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, limit, offset)
}

// Create adds a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", models.ErrBadRequest)
	}

	role := input.Role
	if role == "" {
		role = models.RoleClient
	}
	switch role {
	case models.RoleAdmin, models.RoleTechnician, models.RoleClient:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrBadRequest, role)
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Status:       models.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role))

	return user, nil
}

// Delete removes a user and records the deletion in the security event stream.
func (s *UserService) Delete(ctx context.Context, id, deletedBy string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.events.LogEvent(ctx, models.EventUserDeleted, models.Metadata{
		"user_id":    id,
		"deleted_by": deletedBy,
	})

	return nil
}
