/**
 * @description
 * Scheduled maintenance jobs. The sweeper bulk-expires lapsed subscriptions
 * and deactivates expired pay-per-view purchases so rows do not linger as
 * "active" until the next read triggers the lazy write-back.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SweepRepository defines the bulk-expiry operations the sweeper needs.
type SweepRepository interface {
	ExpireLapsedSubscriptions(ctx context.Context) (int64, error)
	DeactivateExpiredPurchases(ctx context.Context) (int64, error)
}

// Sweeper runs periodic expiry passes over subscriptions and purchases.
type Sweeper struct {
	repo   SweepRepository
	logger *slog.Logger
}

// NewSweeper creates a sweeper.
func NewSweeper(repo SweepRepository, logger *slog.Logger) *Sweeper {
	return &Sweeper{repo: repo, logger: logger}
}

// Run executes one expiry pass.
func (s *Sweeper) Run() {
	ctx := context.Background()

	subs, err := s.repo.ExpireLapsedSubscriptions(ctx)
	if err != nil {
		s.logger.Error("subscription expiry sweep failed", "error", err)
	} else if subs > 0 {
		s.logger.Info("expired lapsed subscriptions", "count", subs)
	}

	purchases, err := s.repo.DeactivateExpiredPurchases(ctx)
	if err != nil {
		s.logger.Error("purchase expiry sweep failed", "error", err)
	} else if purchases > 0 {
		s.logger.Info("deactivated expired purchases", "count", purchases)
	}
}

// Schedule registers the sweeper on a cron instance with the given spec and
// starts it. The returned cron should be stopped on shutdown.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.Run); err != nil {
		return nil, err
	}
	c.Start()
	s.logger.Info("expiry sweeper scheduled", "spec", spec)
	return c, nil
}
