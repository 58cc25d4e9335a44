package helper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"
)

func TestCalculateBatchSummary(t *testing.T) {
	log, err := logger.New("error", "json")
	assert.NoError(t, err)

	results := []dto.SymbolResult{
		{
			Symbol: "BTCUSDT",
			Stats: dto.BacktestStats{
				TotalTrades:   10,
				WinningTrades: 6,
				AvgR:          0.5,
				TotalPnL:      800,
			},
		},
		{
			Symbol: "ETHUSDT",
			Stats: dto.BacktestStats{
				TotalTrades:   5,
				WinningTrades: 1,
				AvgR:          -0.2,
				TotalPnL:      -300,
			},
		},
		{
			Symbol: "BROKEN",
			Error:  "insufficient data",
			Stats:  dto.BacktestStats{TotalTrades: 99, WinningTrades: 99},
		},
	}

	got := CalculateBatchSummary(context.Background(), log, results)

	assert.Equal(t, 3, got.Symbols)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 15, got.TotalTrades, "failed symbols are excluded")
	assert.Equal(t, 7, got.WinningTrades)
	assert.InDelta(t, 100.0*7/15, got.WinRate, 1e-9)
	// trade-weighted: (10*0.5 + 5*-0.2) / 15
	assert.InDelta(t, 4.0/15, got.AvgR, 1e-9)
	assert.InDelta(t, 500.0, got.TotalPnL, 1e-9)
	assert.Equal(t, "BTCUSDT", got.BestSymbol)
	assert.Equal(t, "ETHUSDT", got.WorstSymbol)
}

func TestCalculateBatchSummaryAllFailed(t *testing.T) {
	log, err := logger.New("error", "json")
	assert.NoError(t, err)

	got := CalculateBatchSummary(context.Background(), log, []dto.SymbolResult{
		{Symbol: "A", Error: "boom"},
		{Symbol: "B", Error: "boom"},
	})

	assert.Equal(t, 2, got.Symbols)
	assert.Equal(t, 2, got.Failed)
	assert.Equal(t, 0, got.TotalTrades)
	assert.Equal(t, 0.0, got.WinRate)
	assert.Empty(t, got.BestSymbol)
	assert.Empty(t, got.WorstSymbol)
}

func TestCalculateBatchSummaryEmpty(t *testing.T) {
	log, err := logger.New("error", "json")
	assert.NoError(t, err)

	got := CalculateBatchSummary(context.Background(), log, nil)
	assert.Equal(t, dto.BatchSummary{}, got)
}
