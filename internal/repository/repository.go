package repository

import (
	"golang-backtest/config"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	BinanceRepo      BinanceRepository
	YahooFinanceRepo YahooFinanceRepository
	CandleRepo       CandleRepository
	BacktestRunRepo  BacktestRunRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, memCache cache.Cache, log *logger.Logger) (*Repository, error) {
	binanceRepo := NewBinanceRepository(cfg, log)
	yahooRepo := NewYahooFinanceRepository(cfg, log)

	return &Repository{
		BinanceRepo:      binanceRepo,
		YahooFinanceRepo: yahooRepo,
		CandleRepo:       NewCandleRepository(cfg, binanceRepo, yahooRepo, memCache, log),
		BacktestRunRepo:  NewBacktestRunRepository(db),
	}, nil
}
