package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/session"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// staleCartAge is how long an untouched persisted cart survives.
const staleCartAge = 90 * 24 * time.Hour

// CleanupScheduler prunes expired browser sessions and abandoned carts
// nightly.
type CleanupScheduler struct {
	cron         *cron.Cron
	sessionStore *session.Store
	cartRepo     repository.CartRepository
}

func NewCleanupScheduler(sessionStore *session.Store, cartRepo repository.CartRepository) *CleanupScheduler {
	return &CleanupScheduler{
		cron:         cron.New(),
		sessionStore: sessionStore,
		cartRepo:     cartRepo,
	}
}

// Start schedules the nightly cleanup at 03:30.
func (s *CleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("30 3 * * *", func() {
		logger.Info("Starting scheduled session and cart cleanup", nil)

		pruned, err := s.sessionStore.PruneExpired()
		if err != nil {
			logger.Error("Failed to prune expired sessions", err)
		} else if pruned > 0 {
			logger.Info("Pruned expired sessions", map[string]interface{}{
				"count": pruned,
			})
		}

		deleted, err := s.cartRepo.DeleteStale(time.Now().Add(-staleCartAge))
		if err != nil {
			logger.Error("Failed to delete stale carts", err)
		} else if deleted > 0 {
			logger.Info("Deleted stale carts", map[string]interface{}{
				"count": deleted,
			})
		}

		logger.Info("Finished scheduled cleanup", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cleanup scheduler started (daily at 3:30 AM)", nil)

	return nil
}

func (s *CleanupScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Cleanup scheduler stopped", nil)
}
