package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/models"
	pkgauth "github.com/yutthachai69/newjobflow/pkg/auth"
)

// mockLockStatus implements LockStatusChecker for testing
type mockLockStatus struct {
	locked bool
	lock   *models.AccountLock
	err    error
}

func (m *mockLockStatus) Status(ctx context.Context, userID string) (bool, *models.AccountLock, error) {
	return m.locked, m.lock, m.err
}

func newAuthService(t *testing.T, repo UserRepository, lockout LockStatusChecker, events SecurityEventLogger) *AuthService {
	t.Helper()
	tm := auth.NewTokenManager("test-secret-at-least-16", 15*time.Minute, 24*time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	return NewAuthService(repo, lockout, events, tm, timing, slog.Default())
}

func testUserWithPassword(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)
	user := NewTestUser("user123", "user@example.com", "Test User", models.RoleTechnician)
	user.PasswordHash = hash
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(t, repo, &mockLockStatus{}, &RecordingEventLogger{})

	resp, err := svc.Login(context.Background(), "user@example.com", "Correct-Horse-1!")

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	events := &RecordingEventLogger{}
	svc := newAuthService(t, repo, &mockLockStatus{}, events)

	_, err := svc.Login(context.Background(), "user@example.com", "wrong")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Len(t, events.Events, 1)
	assert.Equal(t, models.EventLoginFailure, events.Events[0].EventType)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	events := &RecordingEventLogger{}
	svc := newAuthService(t, &MockUserRepository{}, &mockLockStatus{}, events)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Len(t, events.Events, 1)
}

func TestAuthService_Login_LockedAccount(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	lockout := &mockLockStatus{
		locked: true,
		lock:   &models.AccountLock{UserID: user.ID, Reason: "brute force"},
	}
	events := &RecordingEventLogger{}
	svc := newAuthService(t, repo, lockout, events)

	_, err := svc.Login(context.Background(), "user@example.com", "Correct-Horse-1!")

	assert.ErrorIs(t, err, models.ErrAccountLocked)
	assert.Len(t, events.Events, 1)
	assert.Equal(t, "account_locked", events.Events[0].Payload["reason"])
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	user.Status = models.StatusDisabled
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(t, repo, &mockLockStatus{}, &RecordingEventLogger{})

	_, err := svc.Login(context.Background(), "user@example.com", "Correct-Horse-1!")

	assert.ErrorIs(t, err, models.ErrAccountDisabled)
}

func TestAuthService_Login_EmptyEmail(t *testing.T) {
	svc := newAuthService(t, &MockUserRepository{}, &mockLockStatus{}, &RecordingEventLogger{})

	_, err := svc.Login(context.Background(), "   ", "whatever")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	tm := auth.NewTokenManager("test-secret-at-least-16", 15*time.Minute, 24*time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	svc := NewAuthService(repo, &mockLockStatus{}, &RecordingEventLogger{}, tm, timing, slog.Default())

	refreshToken, err := tm.GenerateRefreshToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), refreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	tm := auth.NewTokenManager("test-secret-at-least-16", 15*time.Minute, 24*time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	svc := NewAuthService(repo, &mockLockStatus{}, &RecordingEventLogger{}, tm, timing, slog.Default())

	accessToken, err := tm.GenerateAccessToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), accessToken)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_RefreshToken_LockedAccount(t *testing.T) {
	user := testUserWithPassword(t, "Correct-Horse-1!")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	tm := auth.NewTokenManager("test-secret-at-least-16", 15*time.Minute, 24*time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	svc := NewAuthService(repo, &mockLockStatus{locked: true}, &RecordingEventLogger{}, tm, timing, slog.Default())

	refreshToken, err := tm.GenerateRefreshToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), refreshToken)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc := newAuthService(t, &MockUserRepository{}, &mockLockStatus{}, &RecordingEventLogger{})

	_, err := svc.RefreshToken(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
