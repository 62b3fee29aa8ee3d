package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// Scheduler runs the recurring engine jobs on cron schedules: the daily
// close after market hours and period consolidation after month end.
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

// NewScheduler registers the close and consolidation jobs from the engine
// configuration.
func NewScheduler(service interfaces.PerformanceService, config *common.Config, logger *common.Logger) (*Scheduler, error) {
	c := cron.New()

	// The derived overall record consolidates alongside the real accounts.
	accounts := append([]string{}, config.Accounts...)
	accounts = append(accounts, models.OverallAccount)

	if _, err := c.AddFunc(config.Engine.CloseSchedule, func() {
		runDailyClose(service, logger)
	}); err != nil {
		return nil, fmt.Errorf("invalid close schedule %q: %w", config.Engine.CloseSchedule, err)
	}

	if _, err := c.AddFunc(config.Engine.ConsolidateSchedule, func() {
		runConsolidation(service, accounts, logger)
	}); err != nil {
		return nil, fmt.Errorf("invalid consolidate schedule %q: %w", config.Engine.ConsolidateSchedule, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

func runDailyClose(service interfaces.PerformanceService, logger *common.Logger) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := service.RunDailyClose(ctx, time.Now()); err != nil {
		logger.Error().Err(err).Msg("Scheduled daily close failed")
		return
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("Scheduled daily close complete")
}

func runConsolidation(service interfaces.PerformanceService, accounts []string, logger *common.Logger) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now()
	total := 0
	for _, account := range accounts {
		written, err := service.ConsolidateClosed(ctx, account, now)
		if err != nil {
			logger.Error().Err(err).Str("account", account).Msg("Scheduled consolidation failed")
			continue
		}
		total += written
	}
	logger.Info().
		Int("records", total).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled consolidation complete")
}
