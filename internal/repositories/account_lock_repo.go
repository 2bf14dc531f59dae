package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yutthachai69/newjobflow/internal/database"
	"github.com/yutthachai69/newjobflow/internal/models"
)

// AccountLockRepository handles durable account lock state.
type AccountLockRepository struct {
	db *database.DB
}

// NewAccountLockRepository creates a new AccountLockRepository
func NewAccountLockRepository(db *database.DB) *AccountLockRepository {
	return &AccountLockRepository{db: db}
}

func scanAccountLockRow(row rowScanner) (*models.AccountLock, error) {
	var lock models.AccountLock

	err := row.Scan(
		&lock.ID, &lock.UserID, &lock.Reason, &lock.LockedBy,
		&lock.LockedAt, &lock.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &lock, nil
}

// Upsert creates or replaces the active lock for a user. The unique
// constraint on user_id guarantees at most one active lock per user and
// serializes concurrent lock calls on the row.
func (r *AccountLockRepository) Upsert(ctx context.Context, lock *models.AccountLock) (*models.AccountLock, error) {
	if lock.ID == "" {
		lock.ID = uuid.New().String()
	}

	query := `
		INSERT INTO account_locks (id, user_id, reason, locked_by, locked_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET reason = EXCLUDED.reason,
		    locked_by = EXCLUDED.locked_by,
		    locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at
		RETURNING id, user_id, reason, locked_by, locked_at, expires_at
	`

	result, err := scanAccountLockRow(r.db.Pool.QueryRow(ctx, query,
		lock.ID, lock.UserID, lock.Reason, lock.LockedBy, lock.LockedAt, lock.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account lock: %w", err)
	}

	return result, nil
}

// GetByUserID returns the active lock for a user, or ErrNotFound.
func (r *AccountLockRepository) GetByUserID(ctx context.Context, userID string) (*models.AccountLock, error) {
	query := `
		SELECT id, user_id, reason, locked_by, locked_at, expires_at
		FROM account_locks WHERE user_id = $1
	`

	return scanAccountLockRow(r.db.Pool.QueryRow(ctx, query, userID))
}

// Delete clears the lock for a user. Deleting a non-existent lock is a
// no-op, which keeps unlock idempotent.
func (r *AccountLockRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM account_locks WHERE user_id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, userID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// DeleteExpired removes locks whose expiry has passed. Expiry is otherwise
// passive; this only bounds table growth.
func (r *AccountLockRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM account_locks WHERE expires_at IS NOT NULL AND expires_at <= CURRENT_TIMESTAMP`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired locks: %w", err)
	}

	return result.RowsAffected(), nil
}
