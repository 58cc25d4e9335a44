package simulation

import (
	"golang-backtest/internal/dto"
	"golang-backtest/internal/gate"
)

// positionSize computes the fill size for an accepted signal. Daytrading and
// swing size off risk; investor sizes off a fixed allocation. A zero risk
// distance yields size zero, never a division panic.
func positionSize(policy gate.Policy, style dto.TradingStyle, balance, entry, stop float64) float64 {
	if balance <= 0 || entry <= 0 {
		return 0
	}
	if style == dto.StyleInvestor {
		return balance * policy.AllocationPct / entry
	}
	risk := entry - stop
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 {
		return 0
	}
	return balance * policy.RiskPerTradePct / risk
}

// rMultiple expresses the trade outcome as a multiple of the initial risk.
// Allocation-sized trades use portfolio return over the allocation fraction.
func rMultiple(policy gate.Policy, style dto.TradingStyle, pos *openPosition, exitPrice float64) float64 {
	signed := exitPrice - pos.entryPrice
	if pos.direction == dto.DirectionShort {
		signed = -signed
	}
	if style == dto.StyleInvestor {
		if pos.balanceAtEntry <= 0 || policy.AllocationPct <= 0 {
			return 0
		}
		pnl := signed * pos.size
		return (pnl / pos.balanceAtEntry) / policy.AllocationPct
	}
	if pos.riskPerUnit == 0 {
		return 0
	}
	return signed / pos.riskPerUnit
}

// fillPrice worsens a raw price by slippage plus spread against the given
// direction: buys fill higher, sells fill lower.
func fillPrice(policy gate.Policy, raw float64, dir dto.Direction, isEntry bool) float64 {
	adj := policy.SlippagePct + policy.SpreadPct
	buying := (dir == dto.DirectionLong) == isEntry
	if buying {
		return raw * (1 + adj)
	}
	return raw * (1 - adj)
}
