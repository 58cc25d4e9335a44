package service

import (
	"context"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the configured backtest batch on a cron cadence, for
// keeping the persisted run history fresh without manual requests.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunOnce(ctx context.Context) error
}

type schedulerService struct {
	cfg      *config.Config
	log      *logger.Logger
	backtest BacktestService
	cron     *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, backtest BacktestService) SchedulerService {
	return &schedulerService{
		cfg:      cfg,
		log:      log,
		backtest: backtest,
		cron:     cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled, skipping")
		return nil
	}
	if len(s.cfg.Scheduler.Symbols) == 0 {
		s.log.Warn("Scheduler enabled but no symbols configured, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Scheduler.CronSpec, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.log.ErrorContext(ctx, "Scheduled backtest batch failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.StringField("cron_spec", s.cfg.Scheduler.CronSpec),
		logger.StringField("style", s.cfg.Scheduler.Style),
		logger.IntField("symbols", len(s.cfg.Scheduler.Symbols)))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("Scheduler stop timed out waiting for running batch")
	}
}

// RunOnce executes the configured batch immediately.
func (s *schedulerService) RunOnce(ctx context.Context) error {
	start := time.Now()
	resp, err := s.backtest.Run(ctx, dto.BacktestRequest{
		EngineStyle: dto.TradingStyle(s.cfg.Scheduler.Style),
		HorizonDays: s.cfg.Scheduler.HorizonDays,
		Symbols:     s.cfg.Scheduler.Symbols,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range resp.Results {
		if r.Error != "" {
			failed++
		}
	}
	s.log.InfoContext(ctx, "Scheduled backtest batch finished",
		logger.IntField("symbols", len(resp.Results)),
		logger.IntField("failed", failed),
		logger.StringField("elapsed", time.Since(start).String()))

	if retention := s.cfg.Scheduler.RetentionDays; retention > 0 {
		cutoff := time.Now().AddDate(0, 0, -retention)
		deleted, err := s.backtest.PruneHistory(ctx, cutoff)
		if err != nil {
			s.log.WarnContext(ctx, "Run history retention prune failed", logger.ErrorField(err))
		} else if deleted > 0 {
			s.log.InfoContext(ctx, "Pruned old backtest runs",
				logger.IntField("deleted", int(deleted)),
				logger.IntField("retention_days", retention))
		}
	}
	return nil
}
