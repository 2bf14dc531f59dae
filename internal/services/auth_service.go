package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/models"
	pkgauth "github.com/yutthachai69/newjobflow/pkg/auth"
	pkglogger "github.com/yutthachai69/newjobflow/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// LockStatusChecker reports whether an account is currently locked.
type LockStatusChecker interface {
	Status(ctx context.Context, userID string) (bool, *models.AccountLock, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	repo    UserRepository
	lockout LockStatusChecker
	events  SecurityEventLogger
	tm      *auth.TokenManager
	timing  *auth.TimingDelay
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, lockout LockStatusChecker, events SecurityEventLogger, tm *auth.TokenManager, timing *auth.TimingDelay, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		lockout: lockout,
		events:  events,
		tm:      tm,
		timing:  timing,
		logger:  logger,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

// Login authenticates a user and returns tokens. Failures all surface as
// ErrUnauthorized except locked and disabled accounts, which return their
// own sentinels.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := s.login(ctx, email, password)
	s.timing.Wait(err == nil)
	return resp, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		s.logger.Warn("login attempt with empty email")
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Do not reveal whether the email exists
			s.logger.Info("login failed: invalid credentials",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			s.events.LogEvent(ctx, models.EventLoginFailure, models.Metadata{
				"reason": "invalid_credentials",
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	locked, lock, err := s.lockout.Status(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to check account lock", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if locked {
		s.logger.Info("login blocked: account locked",
			slog.String("user_id", user.ID),
			slog.String("reason", lock.Reason))
		s.events.LogEvent(ctx, models.EventLoginFailure, models.Metadata{
			"user_id": user.ID,
			"reason":  "account_locked",
		})
		return nil, models.ErrAccountLocked
	}

	if user.Status != models.StatusActive {
		s.logger.Info("login blocked: account disabled", slog.String("user_id", user.ID))
		s.events.LogEvent(ctx, models.EventLoginFailure, models.Metadata{
			"user_id": user.ID,
			"reason":  "account_disabled",
		})
		return nil, models.ErrAccountDisabled
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.events.LogEvent(ctx, models.EventLoginFailure, models.Metadata{
			"user_id": user.ID,
			"reason":  "invalid_credentials",
		})
		return nil, models.ErrUnauthorized
	}

	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userModelToResponse(user),
	}, nil
}

// RefreshToken generates a new token pair from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	if claims.Type != "refresh" {
		s.logger.Warn("refresh attempt with non-refresh token", slog.String("user_id", claims.UserID))
		return nil, models.ErrUnauthorized
	}

	// Fetch fresh user data
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found for token refresh", slog.String("user_id", claims.UserID))
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	locked, _, err := s.lockout.Status(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to check account lock", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if locked || user.Status != models.StatusActive {
		s.logger.Info("token refresh blocked due to account state", slog.String("user_id", user.ID))
		return nil, models.ErrUnauthorized
	}

	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         userModelToResponse(user),
	}, nil
}
