package dto

// SignalMetadata carries the per-engine readings behind a signal so that gate
// decisions and audits can be reconstructed without re-running the engines.
type SignalMetadata struct {
	Structure   StructureReport      `json:"structure"`
	Trend       TrendReport          `json:"trend"`
	Volume      VolumeReport         `json:"volume"`
	Volatility  VolatilityReport     `json:"volatility"`
	Regime      Regime               `json:"regime"`
	Fundamental *FundamentalSnapshot `json:"fundamental,omitempty"`
}

// EngineSignal is the selector output for one evaluated bar index. Produced
// fresh per index, never mutated.
type EngineSignal struct {
	Direction  Direction      `json:"direction"`
	Confidence float64        `json:"confidence"` // 0..100
	Entry      float64        `json:"entry"`      // reference price, close of the signal bar
	StopLoss   float64        `json:"stop_loss"`
	TakeProfit float64        `json:"take_profit"`
	Metadata   SignalMetadata `json:"metadata"`
}

// RiskReward returns reward over risk, 0 when the stop distance is zero.
func (s EngineSignal) RiskReward() float64 {
	var risk, reward float64
	switch s.Direction {
	case DirectionLong:
		risk = s.Entry - s.StopLoss
		reward = s.TakeProfit - s.Entry
	case DirectionShort:
		risk = s.StopLoss - s.Entry
		reward = s.Entry - s.TakeProfit
	default:
		return 0
	}
	if risk <= 0 {
		return 0
	}
	return reward / risk
}
