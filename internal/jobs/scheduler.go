// AngelaMos | 2026
// scheduler.go

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manufacto/booking/internal/config"
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	purger  TokenPurger
	logger  *slog.Logger
	timeout time.Duration
}

func NewScheduler(purger TokenPurger, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		purger:  purger,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Register adds the housekeeping jobs enabled by cfg.
func (s *Scheduler) Register(cfg config.JobsConfig) error {
	if cfg.TokenPurgeSchedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(cfg.TokenPurgeSchedule, s.PurgeTokens); err != nil {
		return fmt.Errorf("schedule token purge %q: %w", cfg.TokenPurgeSchedule, err)
	}

	s.logger.Info("job scheduled", "job", "token_purge", "schedule", cfg.TokenPurgeSchedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("jobs still running at shutdown")
	}
}

// PurgeTokens deletes refresh tokens past their expiry.
func (s *Scheduler) PurgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("job started", "job", "token_purge")

	n, err := s.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		s.logger.Error("job failed", "job", "token_purge", "error", err)
		return
	}

	s.logger.Info("job finished",
		"job", "token_purge",
		"deleted", n,
		"duration", time.Since(start).String(),
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
