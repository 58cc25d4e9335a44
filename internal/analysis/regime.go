package analysis

import "golang-backtest/internal/dto"

// ClassifyRegime maps trend strength and volatility state to the coarse
// regime label used by gate overrides. Pure function, no hidden state.
func ClassifyRegime(trendStrength float64, vol dto.VolatilityState) dto.Regime {
	strong := trendStrength >= 55

	switch vol {
	case dto.VolatilityExtreme:
		return dto.RegimeContra
	case dto.VolatilityHigh:
		if strong {
			return dto.RegimeExpansion
		}
		return dto.RegimeContra
	default:
		if strong {
			return dto.RegimeTrend
		}
		return dto.RegimeRange
	}
}
