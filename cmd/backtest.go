package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	backtestStyle    string
	backtestVersion  string
	backtestExchange string
	backtestHorizon  int
	backtestSymbols  []string
)

// backtestCmd runs one batch and prints the response as JSON. It never touches
// the database so it works without Postgres running.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a one-shot backtest batch and print the result",
	Run:   RunBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestStyle, "style", "swing", "trading style: daytrading, swing or investor")
	backtestCmd.Flags().StringVar(&backtestVersion, "version", "", "engine generation, empty selects the default")
	backtestCmd.Flags().StringVar(&backtestExchange, "exchange", "", "exchange routing hint, empty defaults to BINANCE")
	backtestCmd.Flags().IntVar(&backtestHorizon, "horizon-days", 0, "history window in days, 0 selects the style default")
	backtestCmd.Flags().StringSliceVar(&backtestSymbols, "symbols", nil, "symbols to test, comma separated")
	_ = backtestCmd.MarkFlagRequired("symbols")
}

func RunBacktest(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Backtest.PersistResults = false

	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	memCache := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	binanceRepo := repository.NewBinanceRepository(cfg, appLog)
	yahooRepo := repository.NewYahooFinanceRepository(cfg, appLog)
	candleRepo := repository.NewCandleRepository(cfg, binanceRepo, yahooRepo, memCache, appLog)

	backtestService := service.NewBacktestService(cfg, appLog, candleRepo, nil)

	resp, err := backtestService.Run(ctx, dto.BacktestRequest{
		EngineStyle:   dto.TradingStyle(backtestStyle),
		EngineVersion: backtestVersion,
		HorizonDays:   backtestHorizon,
		Symbols:       backtestSymbols,
		Exchange:      backtestExchange,
	})
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode response: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
