package simulation

import "golang-backtest/internal/dto"

// Summarize reduces a run's trade list and equity curve into the summary
// metrics exposed in the batch response.
func Summarize(result *dto.ExecutionResult, initialBalance float64) dto.BacktestStats {
	stats := dto.BacktestStats{FinalBalance: initialBalance}
	if result == nil {
		return stats
	}

	var totalR, grossProfit, grossLoss float64
	for i, t := range result.Trades {
		stats.TotalTrades++
		stats.TotalPnL += t.PnL
		totalR += t.RMultiple

		if t.Win {
			stats.WinningTrades++
			grossProfit += t.PnL
		} else {
			stats.LosingTrades++
			grossLoss += t.PnL // negative
		}

		if i == 0 || t.RMultiple > stats.BestTradeR {
			stats.BestTradeR = t.RMultiple
		}
		if i == 0 || t.RMultiple < stats.WorstTradeR {
			stats.WorstTradeR = t.RMultiple
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
		stats.AvgR = totalR / float64(stats.TotalTrades)
	}
	if grossLoss != 0 {
		stats.ProfitFactor = grossProfit / -grossLoss
	}

	stats.MaxDrawdown = maxDrawdown(result.EquityCurve)
	if n := len(result.EquityCurve); n > 0 {
		stats.FinalBalance = result.EquityCurve[n-1].Balance
	}
	return stats
}

// maxDrawdown is the largest peak-to-trough decline of the equity curve,
// expressed as a fraction of the peak.
func maxDrawdown(curve []dto.EquityPoint) float64 {
	var peak, worst float64
	for i, p := range curve {
		if i == 0 || p.Balance > peak {
			peak = p.Balance
		}
		if peak > 0 {
			dd := (peak - p.Balance) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
