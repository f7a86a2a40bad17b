package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

// Sweeper sends the reminders for a single look-ahead window.
type Sweeper interface {
	SweepWindow(ctx context.Context, now time.Time, window models.ReminderWindow) (int, error)
}

// Locker grants a lease on a key for ttl. Acquire reports false when
// another instance already holds it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker takes leases with SET NX so several API replicas share one
// sweep per interval.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", key, err)
	}
	return ok, nil
}

// NoopLocker always grants the lease. Used for single-instance deployments.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

const leasePrefix = "eventhub:reminder-sweep:"

// Scheduler runs every reminder window on a fixed interval.
type Scheduler struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func New(sweeper Sweeper, locker Locker, interval time.Duration, logger *slog.Logger) *Scheduler {
	if locker == nil {
		locker = NoopLocker{}
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// LeaseKey names the lease for the interval slot containing now.
func (s *Scheduler) LeaseKey(now time.Time) string {
	slot := now.UTC().Truncate(s.interval)
	return fmt.Sprintf("%s%d", leasePrefix, slot.Unix())
}

// Tick sweeps all windows once. A failing window does not stop the others.
// It returns the number of reminders created and every window error joined.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (int, error) {
	key := s.LeaseKey(now)
	ok, err := s.locker.Acquire(ctx, key, s.interval)
	if err != nil {
		// running twice is safe, reminders are de-duplicated on insert
		s.logger.Warn("reminder lease unavailable, sweeping anyway", "key", key, "error", err)
	} else if !ok {
		s.logger.Debug("reminder sweep held by another instance", "key", key)
		return 0, nil
	}

	start := time.Now()
	total := 0
	var errs []error
	for _, w := range models.ReminderWindows {
		sent, err := s.sweeper.SweepWindow(ctx, now, w)
		total += sent
		if err != nil {
			s.logger.Error("reminder window failed", "window", w.Tag, "sent", sent, "error", err)
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("reminder window swept", "window", w.Tag, "sent", sent)
	}

	s.logger.Info("reminder sweep finished",
		"sent", total,
		"failed_windows", len(errs),
		"duration", time.Since(start).String(),
	)
	return total, errors.Join(errs...)
}

// Run sweeps immediately, then once per interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("reminder scheduler started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}
