package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// AccountLockStore defines the persistence surface the lockout service needs.
type AccountLockStore interface {
	Upsert(ctx context.Context, lock *models.AccountLock) (*models.AccountLock, error)
	GetByUserID(ctx context.Context, userID string) (*models.AccountLock, error)
	Delete(ctx context.Context, userID string) error
}

// LockoutConfig holds lockout service configuration
type LockoutConfig struct {
	// DefaultLockDuration applies when a lock request carries no duration
	// or a non-positive one.
	DefaultLockDuration time.Duration

	// Now is the clock source. Defaults to time.Now; tests inject their own.
	Now func() time.Time
}

// LockoutService manages durable account locks. It decides nothing about WHO
// may be locked; callers run those policy checks before calling in.
type LockoutService struct {
	store  AccountLockStore
	events SecurityEventLogger
	config LockoutConfig
	logger *slog.Logger
}

func NewLockoutService(store AccountLockStore, events SecurityEventLogger, config LockoutConfig, logger *slog.Logger) *LockoutService {
	if config.DefaultLockDuration <= 0 {
		config.DefaultLockDuration = 15 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &LockoutService{
		store:  store,
		events: events,
		config: config,
		logger: logger,
	}
}

// Lock places a timed lock on the account. A non-positive duration falls back
// to the configured default. Locking an already-locked account replaces the
// existing lock.
func (s *LockoutService) Lock(ctx context.Context, userID, reason, lockedBy string, duration time.Duration) (*models.AccountLock, error) {
	if duration <= 0 {
		duration = s.config.DefaultLockDuration
	}

	now := s.config.Now()
	expiresAt := now.Add(duration)

	return s.applyLock(ctx, &models.AccountLock{
		UserID:    userID,
		Reason:    reason,
		LockedBy:  lockedBy,
		LockedAt:  now,
		ExpiresAt: &expiresAt,
	})
}

// LockIndefinite places a lock with no expiry. Only an explicit unlock
// releases it.
func (s *LockoutService) LockIndefinite(ctx context.Context, userID, reason, lockedBy string) (*models.AccountLock, error) {
	return s.applyLock(ctx, &models.AccountLock{
		UserID:   userID,
		Reason:   reason,
		LockedBy: lockedBy,
		LockedAt: s.config.Now(),
	})
}

func (s *LockoutService) applyLock(ctx context.Context, lock *models.AccountLock) (*models.AccountLock, error) {
	if lock.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrBadRequest)
	}

	result, err := s.store.Upsert(ctx, lock)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	payload := models.Metadata{
		"user_id":   result.UserID,
		"reason":    result.Reason,
		"locked_by": result.LockedBy,
	}
	if result.ExpiresAt != nil {
		payload["expires_at"] = result.ExpiresAt.Format(time.RFC3339)
	} else {
		payload["indefinite"] = true
	}
	s.events.LogEvent(ctx, models.EventAccountLocked, payload)

	return result, nil
}

// Unlock releases the lock on an account. Unlocking an account that is not
// locked succeeds without effect.
func (s *LockoutService) Unlock(ctx context.Context, userID, unlockedBy string) error {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check account lock: %w", err)
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to unlock account: %w", err)
	}

	s.events.LogEvent(ctx, models.EventAccountUnlocked, models.Metadata{
		"user_id":     userID,
		"unlocked_by": unlockedBy,
		"reason":      existing.Reason,
	})

	return nil
}

// Status reports whether the account is currently locked. Expiry is passive:
// an expired lock simply reads as unlocked, no write happens here.
func (s *LockoutService) Status(ctx context.Context, userID string) (bool, *models.AccountLock, error) {
	lock, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to check account lock: %w", err)
	}

	if lock.Expired(s.config.Now()) {
		return false, nil, nil
	}

	return true, lock, nil
}
