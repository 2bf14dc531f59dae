package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/yutthachai69/newjobflow/internal/ratelimit"
	"github.com/yutthachai69/newjobflow/internal/repositories"
)

// CleanupManager periodically evicts stale rate-limit counters, drops expired
// account locks and prunes old security events.
type CleanupManager struct {
	limiter       *ratelimit.Limiter
	lockRepo      *repositories.AccountLockRepository
	eventRepo     *repositories.SecurityEventRepository
	retentionDays int
	logger        *slog.Logger
	interval      time.Duration
	stopCh        chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	limiter *ratelimit.Limiter,
	lockRepo *repositories.AccountLockRepository,
	eventRepo *repositories.SecurityEventRepository,
	retentionDays int,
	interval time.Duration,
	logger *slog.Logger,
) *CleanupManager {
	return &CleanupManager{
		limiter:       limiter,
		lockRepo:      lockRepo,
		eventRepo:     eventRepo,
		retentionDays: retentionDays,
		logger:        logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if evicted := cm.limiter.Sweep(); evicted > 0 {
		cm.logger.Info("rate limit counters evicted", slog.Int("count", evicted))
	}

	locksDeleted, err := cm.lockRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to delete expired account locks", slog.Any("error", err))
	} else if locksDeleted > 0 {
		cm.logger.Info("expired account locks deleted", slog.Int64("count", locksDeleted))
	}

	eventsDeleted, err := cm.eventRepo.Cleanup(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("failed to prune security events", slog.Any("error", err))
	} else if eventsDeleted > 0 {
		cm.logger.Info("old security events pruned", slog.Int64("count", eventsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
