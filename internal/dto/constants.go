package dto

// TradingStyle selects the timeframe set, minimum history and sizing model
// used by a backtest run.
type TradingStyle string

const (
	StyleDayTrading TradingStyle = "daytrading"
	StyleSwing      TradingStyle = "swing"
	StyleInvestor   TradingStyle = "investor"
)

func (s TradingStyle) Valid() bool {
	switch s {
	case StyleDayTrading, StyleSwing, StyleInvestor:
		return true
	}
	return false
}

// Timeframe labels follow the exchange kline convention.
const (
	Timeframe1Min  = "1m"
	Timeframe5Min  = "5m"
	Timeframe15Min = "15m"
	Timeframe1Hour = "1h"
	Timeframe4Hour = "4h"
	Timeframe1Day  = "1d"
)

// PrimaryTimeframe returns the timeframe whose bars drive the simulation loop
// for a style. The remaining timeframes feed the trend engine.
func (s TradingStyle) PrimaryTimeframe() string {
	switch s {
	case StyleDayTrading:
		return Timeframe15Min
	case StyleSwing:
		return Timeframe1Day
	default:
		return Timeframe1Day
	}
}

// AuxTimeframes returns the supporting timeframes fetched alongside the
// primary one.
func (s TradingStyle) AuxTimeframes() []string {
	switch s {
	case StyleDayTrading:
		return []string{Timeframe1Hour, Timeframe4Hour, Timeframe1Day}
	case StyleSwing:
		return []string{Timeframe4Hour, Timeframe1Hour}
	default:
		return []string{Timeframe4Hour}
	}
}

// MinBars is the minimum sanitized bar count below which a run is rejected.
func (s TradingStyle) MinBars() int {
	switch s {
	case StyleDayTrading:
		return 300
	case StyleSwing:
		return 40
	default:
		return 200
	}
}

// Direction of a signal or an open position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionNone  Direction = "none"
)

// Exit reasons recorded on closed trades.
const (
	ExitReasonStopLoss    = "stop_loss"
	ExitReasonTakeProfit  = "take_profit"
	ExitReasonStopLossTie = "stop_loss_same_bar"
	ExitReasonTrailing    = "trailing_stop"
	ExitReasonBreakeven   = "breakeven_stop"
	ExitReasonStructural  = "structural_exit"
	ExitReasonMaxHold     = "max_hold"
	ExitReasonEndOfData   = "end_of_data"
)

// Filter reason keys. These are stable identifiers used for tuning audits;
// renaming one breaks historical comparisons.
const (
	FilterNoDirection        = "no_direction"
	FilterConfidenceBelowMin = "confidence_below_min"
	FilterStructureBelowMin  = "structure_below_min"
	FilterTrendBelowMin      = "trend_below_min"
	FilterVolumeBelowMin     = "volume_below_min"
	FilterVolatilityExtreme  = "volatility_extreme"
	FilterHighVolWeakStruct  = "high_vol_weak_structure"
	FilterBOSDisplacement    = "bos_displacement_below_min"
	FilterCHoCHRange         = "choch_range_below_min"
	FilterOrderBlockQuality  = "order_block_quality"
	FilterRiskRewardBelowMin = "risk_reward_below_min"
	FilterZeroRiskDistance   = "zero_risk_distance"
)

// Volatility states classified from the ATR-to-price ratio.
type VolatilityState string

const (
	VolatilityLow     VolatilityState = "low"
	VolatilityNormal  VolatilityState = "normal"
	VolatilityHigh    VolatilityState = "high"
	VolatilityExtreme VolatilityState = "extreme"
)

// Regime is the coarse market condition used by gate overrides.
type Regime string

const (
	RegimeTrend     Regime = "TREND"
	RegimeRange     Regime = "RANGE"
	RegimeExpansion Regime = "EXPANSION"
	RegimeContra    Regime = "CONTRA"
)

// Liquidity event types.
const (
	LiquidityEqualHighs    = "eq_highs"
	LiquidityEqualLows     = "eq_lows"
	LiquiditySweepBuySide  = "sweep_buy_side"
	LiquiditySweepSellSide = "sweep_sell_side"
)

// Premium/discount zone labels.
const (
	ZonePremium     = "premium"
	ZoneDiscount    = "discount"
	ZoneEquilibrium = "equilibrium"
)
