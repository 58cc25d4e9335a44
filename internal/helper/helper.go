package helper

import (
	"context"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"
)

// CalculateBatchSummary folds the per-symbol results of a batch into one
// aggregate block. Failed symbols count toward Failed only; their zero stats
// never dilute the aggregate metrics.
func CalculateBatchSummary(ctx context.Context, log *logger.Logger, results []dto.SymbolResult) dto.BatchSummary {
	summary := dto.BatchSummary{Symbols: len(results)}

	totalR := 0.0
	bestPnL, worstPnL := 0.0, 0.0
	for _, r := range results {
		if r.Error != "" {
			log.WarnContext(ctx, "Symbol excluded from batch summary",
				logger.StringField("symbol", r.Symbol),
				logger.StringField("error", r.Error))
			summary.Failed++
			continue
		}

		summary.TotalTrades += r.Stats.TotalTrades
		summary.WinningTrades += r.Stats.WinningTrades
		summary.TotalPnL += r.Stats.TotalPnL
		totalR += r.Stats.AvgR * float64(r.Stats.TotalTrades)

		if summary.BestSymbol == "" || r.Stats.TotalPnL > bestPnL {
			summary.BestSymbol = r.Symbol
			bestPnL = r.Stats.TotalPnL
		}
		if summary.WorstSymbol == "" || r.Stats.TotalPnL < worstPnL {
			summary.WorstSymbol = r.Symbol
			worstPnL = r.Stats.TotalPnL
		}
	}

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
		summary.AvgR = totalR / float64(summary.TotalTrades)
	}
	return summary
}
