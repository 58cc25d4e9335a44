package service

import (
	"golang-backtest/config"
	"golang-backtest/internal/repository"
	"golang-backtest/pkg/logger"
)

type Service struct {
	BacktestService  BacktestService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	backtestService := NewBacktestService(cfg, log, repo.CandleRepo, repo.BacktestRunRepo)
	schedulerService := NewSchedulerService(cfg, log, backtestService)

	return &Service{
		BacktestService:  backtestService,
		SchedulerService: schedulerService,
	}
}
