package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/services"
	pkgauth "github.com/yutthachai69/newjobflow/pkg/auth"
	pkghttp "github.com/yutthachai69/newjobflow/pkg/http"
)

// UserServiceInterface defines the interface for user business logic
type UserServiceInterface interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, input services.CreateUserInput) (*models.User, error)
	Delete(ctx context.Context, id, deletedBy string) error
}

// LockoutServiceInterface defines the interface for account lock operations
type LockoutServiceInterface interface {
	Lock(ctx context.Context, userID, reason, lockedBy string, duration time.Duration) (*models.AccountLock, error)
	LockIndefinite(ctx context.Context, userID, reason, lockedBy string) (*models.AccountLock, error)
	Unlock(ctx context.Context, userID, unlockedBy string) error
	Status(ctx context.Context, userID string) (bool, *models.AccountLock, error)
}

// AuthorizerInterface exposes the role and lock-target policy checks
type AuthorizerInterface interface {
	ValidateLockTarget(actor, target *models.User) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	users   UserServiceInterface
	lockout LockoutServiceInterface
	authz   AuthorizerInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserServiceInterface, lockout LockoutServiceInterface, authz AuthorizerInterface) *UserHandler {
	return &UserHandler{
		users:   users,
		lockout: lockout,
		authz:   authz,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN TECHNICIAN CLIENT"`
}

// LockUserRequest represents the request body for locking a user account
type LockUserRequest struct {
	Reason          string `json:"reason" validate:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=0"`
	Indefinite      bool   `json:"indefinite"`
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Locked    bool   `json:"locked"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListUsersResponse represents a page of users
type ListUsersResponse struct {
	Users  []*UserResponse `json:"users"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func userToResponse(user *models.User, locked bool) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Status:    user.Status,
		Locked:    locked,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	locked, _, err := h.lockout.Status(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, userToResponse(user, locked))
}

// ListUsers handles GET /users with pagination
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid offset")
			return
		}
		offset = parsed
	}

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		locked, _, err := h.lockout.Status(r.Context(), user.ID)
		if err != nil {
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
		responses = append(responses, userToResponse(user, locked))
	}

	writeJSON(w, http.StatusOK, ListUsersResponse{
		Users:  responses,
		Limit:  limit,
		Offset: offset,
	})
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := pkgauth.ValidatePassword(req.Password); err != nil {
		pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		return
	}

	user, err := h.users.Create(r.Context(), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Email already in use")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid user")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, userToResponse(user, false))
}

// DeleteUser handles DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if claims.UserID == userID {
		pkghttp.WriteConflict(w, "Cannot delete your own account")
		return
	}

	if err := h.users.Delete(r.Context(), userID, claims.UserID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LockUser handles POST /users/{id}/lock
func (h *UserHandler) LockUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	var req LockUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	actor, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	target, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	// Lock policy lives here, in front of the lockout service
	if err := h.authz.ValidateLockTarget(actor, target); err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, err.Error())
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Forbidden")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	var lock *models.AccountLock
	if req.Indefinite {
		lock, err = h.lockout.LockIndefinite(r.Context(), target.ID, req.Reason, actor.ID)
	} else {
		duration := time.Duration(req.DurationMinutes) * time.Minute
		lock, err = h.lockout.Lock(r.Context(), target.ID, req.Reason, actor.ID, duration)
	}
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, lock)
}

// UnlockUser handles DELETE /users/{id}/lock
func (h *UserHandler) UnlockUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.lockout.Unlock(r.Context(), userID, claims.UserID); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
