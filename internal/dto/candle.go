package dto

import "time"

// Candle is a single closed OHLCV bar. Timestamp is the bar open time.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

func (c Candle) IsBullish() bool { return c.Close > c.Open }
func (c Candle) IsBearish() bool { return c.Close < c.Open }

// Body is the absolute open-to-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range is the full high-to-low distance.
func (c Candle) Range() float64 { return c.High - c.Low }

func (c Candle) UpperWick() float64 {
	top := c.Close
	if c.Open > c.Close {
		top = c.Open
	}
	return c.High - top
}

func (c Candle) LowerWick() float64 {
	bottom := c.Close
	if c.Open < c.Close {
		bottom = c.Open
	}
	return bottom - c.Low
}

// WickRatio is total wick length over full range, 0 when the bar has no range.
func (c Candle) WickRatio() float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	return (c.UpperWick() + c.LowerWick()) / r
}

// TimeframeData maps a timeframe label to its ordered bar sequence. All series
// are clipped to a common wall-clock window before a run starts and are
// treated as read-only afterwards.
type TimeframeData map[string][]Candle

// ClipBefore returns the prefix of bars whose timestamp is at or before t.
// Bars are assumed sorted ascending; the scan is a binary search.
func ClipBefore(bars []Candle, t time.Time) []Candle {
	lo, hi := 0, len(bars)
	for lo < hi {
		mid := (lo + hi) / 2
		if bars[mid].Timestamp.After(t) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return bars[:lo]
}

// GetCandleParam identifies one series request against the market-data layer.
type GetCandleParam struct {
	Symbol      string
	Exchange    string
	Timeframe   string
	HorizonDays int
	// MinBars is the caller's floor for a usable series; fewer bars is a
	// typed insufficient-data error. Zero disables the check.
	MinBars int
}
