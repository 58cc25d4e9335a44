package dto

// TimeframeTrend is the trend reading for one timeframe.
type TimeframeTrend struct {
	Timeframe string    `json:"timeframe"`
	Direction Direction `json:"direction"`
	FastEMA   float64   `json:"fast_ema"`
	SlowEMA   float64   `json:"slow_ema"`
	Slope     float64   `json:"slope"`    // normalized fast-EMA slope, per bar
	Strength  float64   `json:"strength"` // 0..100
	Bars      int       `json:"bars"`
}

// TrendReport fuses the per-timeframe readings. Direction prefers
// higher-timeframe agreement and falls back to none on conflict.
type TrendReport struct {
	Direction  Direction        `json:"direction"`
	Strength   float64          `json:"strength"` // 0..100
	Exhaustion bool             `json:"exhaustion"`
	Timeframes []TimeframeTrend `json:"timeframes"`
}

// VolumeReport scores participation on the primary timeframe.
type VolumeReport struct {
	Score          float64 `json:"score"` // 0..100
	LastZScore     float64 `json:"last_z_score"`
	SpikeCount     int     `json:"spike_count"`
	SustainedBars  int     `json:"sustained_bars"`
	AboveMeanRatio float64 `json:"above_mean_ratio"`
	Climax         bool    `json:"climax"`
	MedianVolume   float64 `json:"median_volume"`
}

// VolatilityReport classifies the regime from a rolling true-range measure.
type VolatilityReport struct {
	ATR       float64         `json:"atr"`
	ATRRatio  float64         `json:"atr_ratio"` // ATR / close
	State     VolatilityState `json:"state"`
	Stability float64         `json:"stability"` // 0..100, high when tradable
}

// FundamentalSnapshot is an optional read-only input for the investor style.
// Absence degrades gracefully: the signal is still computable without it.
type FundamentalSnapshot struct {
	Symbol         string  `json:"symbol"`
	TrailingPE     float64 `json:"trailing_pe"`
	ForwardPE      float64 `json:"forward_pe"`
	PriceToBook    float64 `json:"price_to_book"`
	ReturnOnEquity float64 `json:"return_on_equity"`
	DebtToEquity   float64 `json:"debt_to_equity"`
	EarningsGrowth float64 `json:"earnings_growth"`
}
