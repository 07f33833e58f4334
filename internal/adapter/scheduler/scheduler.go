package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"user-pref-service/pkg/metrics"
)

// PurgeJob is the metrics and log name of the soft-delete purge.
const PurgeJob = "purge_deleted_users"

// Purger hard-deletes users soft-deleted longer than retention ago.
type Purger interface {
	PurgeDeletedUsers(ctx context.Context, retention time.Duration) (int, error)
}

// Config holds the scheduler settings.
type Config struct {
	PurgeSchedule string
	Retention     time.Duration
	JobTimeout    time.Duration
}

// Scheduler runs the maintenance jobs on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	purger Purger
	cfg    Config
	log    *zap.Logger
}

// New registers the jobs. Overlapping runs of a job are skipped and panics are recovered.
func New(cfg Config, purger Purger, log *zap.Logger) (*Scheduler, error) {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}

	cl := cronLogger{log: log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		purger: purger,
		cfg:    cfg,
		log:    log,
	}

	if _, err := s.cron.AddFunc(cfg.PurgeSchedule, func() { _ = s.Purge(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", cfg.PurgeSchedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", zap.String("purge_schedule", s.cfg.PurgeSchedule))
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// Purge runs the soft-delete purge once.
func (s *Scheduler) Purge(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.purger.PurgeDeletedUsers(ctx, s.cfg.Retention)
	metrics.RecordJobRun(PurgeJob, err == nil, time.Since(start))
	if err != nil {
		s.log.Error("purge of deleted users failed", zap.Error(err))
		return err
	}

	s.log.Info("purged deleted users", zap.Int("count", n), zap.Duration("retention", s.cfg.Retention))
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
