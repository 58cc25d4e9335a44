package analysis

import (
	"golang-backtest/internal/dto"
)

// VolatilityConfig holds the ATR-to-price thresholds separating regimes.
type VolatilityConfig struct {
	ATRPeriod    int
	LowRatio     float64 // below: low volatility
	NormalRatio  float64 // below: normal
	HighRatio    float64 // below: high, above: extreme
}

func DefaultVolatilityConfig() VolatilityConfig {
	return VolatilityConfig{
		ATRPeriod:   14,
		LowRatio:    0.008,
		NormalRatio: 0.025,
		HighRatio:   0.05,
	}
}

// VolatilityEngine classifies the regime from ATR(14) relative to price and
// derives the stability score consumed by the selector and the exit filters.
type VolatilityEngine struct {
	cfg VolatilityConfig
}

func NewVolatilityEngine(cfg VolatilityConfig) *VolatilityEngine {
	return &VolatilityEngine{cfg: cfg}
}

// Analyze reads bars up to and including evalIdx.
func (e *VolatilityEngine) Analyze(bars []dto.Candle, evalIdx int) dto.VolatilityReport {
	report := dto.VolatilityReport{State: dto.VolatilityNormal, Stability: 50}
	if evalIdx < 0 || evalIdx >= len(bars) {
		return report
	}
	atr := ATRAt(bars, e.cfg.ATRPeriod, evalIdx)
	price := bars[evalIdx].Close
	if atr <= 0 || price <= 0 {
		return report
	}

	report.ATR = atr
	report.ATRRatio = atr / price

	switch {
	case report.ATRRatio < e.cfg.LowRatio:
		report.State = dto.VolatilityLow
	case report.ATRRatio < e.cfg.NormalRatio:
		report.State = dto.VolatilityNormal
	case report.ATRRatio < e.cfg.HighRatio:
		report.State = dto.VolatilityHigh
	default:
		report.State = dto.VolatilityExtreme
	}

	report.Stability = stabilityScore(report.State, report.ATRRatio, e.cfg)
	return report
}

// stabilityScore peaks in the normal band and falls toward both tails. Low
// volatility is tradable but offers little range; extreme is near-untradable.
func stabilityScore(state dto.VolatilityState, ratio float64, cfg VolatilityConfig) float64 {
	switch state {
	case dto.VolatilityLow:
		if cfg.LowRatio <= 0 {
			return 60
		}
		return Clamp100(60 + 30*(ratio/cfg.LowRatio))
	case dto.VolatilityNormal:
		return 90
	case dto.VolatilityHigh:
		span := cfg.HighRatio - cfg.NormalRatio
		if span <= 0 {
			return 50
		}
		frac := (ratio - cfg.NormalRatio) / span
		return Clamp100(80 - 50*frac)
	default:
		return 10
	}
}
