package scheduler

import (
	"log/slog"
	"time"

	"profileimport/internal/config"
	"profileimport/internal/db"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the periodic maintenance jobs: the daily usage counter
// reset and the purge of expired import sessions.
type Scheduler struct {
	db     db.Service
	cfg    config.SchedulerConfig
	logger *slog.Logger
	c      *cron.Cron
}

func NewScheduler(dbService db.Service, cfg config.SchedulerConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     dbService,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
		c:      cron.New(),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.c.AddFunc(s.cfg.UsageResetSchedule, func() {
		s.logger.Info("Resetting daily credential usage counters")
		if err := s.db.ResetDailyUsage(); err != nil {
			s.logger.Error("Failed to reset daily usage", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.c.AddFunc(s.cfg.SessionPurgeSchedule, func() {
		deleted, err := s.db.DeleteExpiredSessions(time.Now())
		if err != nil {
			s.logger.Error("Failed to purge expired sessions", "error", err)
			return
		}
		if deleted > 0 {
			s.logger.Info("Purged expired import sessions", "count", deleted)
		}
	})
	if err != nil {
		return err
	}

	s.c.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
