package analysis

import (
	"math"
	"sort"
	"time"

	"golang-backtest/internal/dto"
)

// emaPair is the fast/slow EMA pairing per timeframe.
type emaPair struct {
	fast int
	slow int
}

var timeframeEMAPairs = map[string]emaPair{
	dto.Timeframe1Day:  {fast: 20, slow: 50},
	dto.Timeframe4Hour: {fast: 34, slow: 89},
	dto.Timeframe1Hour: {fast: 13, slow: 34},
	dto.Timeframe15Min: {fast: 8, slow: 21},
	dto.Timeframe5Min:  {fast: 8, slow: 21},
	dto.Timeframe1Min:  {fast: 8, slow: 21},
}

// MinTrendBars returns the fewest bars a timeframe needs before its EMA pair
// produces a directional read. Unknown timeframes return zero.
func MinTrendBars(tf string) int {
	pair, ok := timeframeEMAPairs[tf]
	if !ok {
		return 0
	}
	return pair.slow + 1
}

// timeframeRank orders timeframes from highest to lowest so the final
// direction can prefer higher-timeframe agreement.
var timeframeRank = map[string]int{
	dto.Timeframe1Day:  6,
	dto.Timeframe4Hour: 5,
	dto.Timeframe1Hour: 4,
	dto.Timeframe15Min: 3,
	dto.Timeframe5Min:  2,
	dto.Timeframe1Min:  1,
}

// TrendConfig tunes slope scaling and the fast-vs-slow separation required
// before a timeframe stops reading as sideways.
type TrendConfig struct {
	SeparationPct  float64 // min |fast/slow - 1| for a directional read
	SlopeUnitPct   float64 // per-bar fast-EMA slope (as fraction of price) for full strength
	ExhaustionBars int
}

func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		SeparationPct:  0.001,
		SlopeUnitPct:   0.002,
		ExhaustionBars: 4,
	}
}

// TrendEngine computes directional bias, strength and exhaustion from moving
// average slopes across the supplied timeframes.
type TrendEngine struct {
	cfg TrendConfig
}

func NewTrendEngine(cfg TrendConfig) *TrendEngine {
	return &TrendEngine{cfg: cfg}
}

// Analyze reads every timeframe series clipped to evalTime so that no bar
// after the evaluated primary bar leaks into the result.
func (e *TrendEngine) Analyze(data dto.TimeframeData, evalTime time.Time) dto.TrendReport {
	report := dto.TrendReport{Direction: dto.DirectionNone}

	labels := make([]string, 0, len(data))
	for tf := range data {
		labels = append(labels, tf)
	}
	sort.Slice(labels, func(i, j int) bool {
		return timeframeRank[labels[i]] > timeframeRank[labels[j]]
	})

	var strengthSum float64
	counted := 0
	for _, tf := range labels {
		bars := dto.ClipBefore(data[tf], evalTime)
		tt := e.analyzeTimeframe(tf, bars)
		report.Timeframes = append(report.Timeframes, tt)
		if tt.Bars > 0 {
			strengthSum += tt.Strength
			counted++
		}
	}
	if counted > 0 {
		report.Strength = strengthSum / float64(counted)
	}

	report.Direction = e.fuseDirection(report.Timeframes)
	report.Exhaustion = e.detectExhaustion(data, labels, evalTime, report.Direction)
	return report
}

func (e *TrendEngine) analyzeTimeframe(tf string, bars []dto.Candle) dto.TimeframeTrend {
	tt := dto.TimeframeTrend{Timeframe: tf, Direction: dto.DirectionNone}
	pair, ok := timeframeEMAPairs[tf]
	if !ok || len(bars) < pair.slow+1 {
		return tt
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := EMA(closes, pair.fast)
	slow := EMA(closes, pair.slow)

	last := len(bars) - 1
	tt.FastEMA = fast[last]
	tt.SlowEMA = slow[last]
	tt.Bars = len(bars)
	if math.IsNaN(tt.FastEMA) || math.IsNaN(tt.SlowEMA) || tt.SlowEMA == 0 {
		return tt
	}

	sep := tt.FastEMA/tt.SlowEMA - 1
	switch {
	case sep > e.cfg.SeparationPct:
		tt.Direction = dto.DirectionLong
	case sep < -e.cfg.SeparationPct:
		tt.Direction = dto.DirectionShort
	}

	price := closes[last]
	if price > 0 && !math.IsNaN(fast[last-1]) {
		tt.Slope = (fast[last] - fast[last-1]) / price
	}
	slopeScore := Clamp01(math.Abs(tt.Slope)/e.cfg.SlopeUnitPct) * 55
	sepScore := Clamp01(math.Abs(sep)/(4*e.cfg.SeparationPct)) * 45
	tt.Strength = Clamp100(slopeScore + sepScore)
	return tt
}

// fuseDirection prefers agreement among the two highest ranked timeframes
// with usable data, falling back to sideways on conflict. Timeframes are
// already sorted highest first.
func (e *TrendEngine) fuseDirection(tfs []dto.TimeframeTrend) dto.Direction {
	var top []dto.TimeframeTrend
	for _, tt := range tfs {
		if tt.Bars == 0 {
			continue
		}
		top = append(top, tt)
		if len(top) == 2 {
			break
		}
	}
	switch len(top) {
	case 0:
		return dto.DirectionNone
	case 1:
		return top[0].Direction
	}

	a, b := top[0].Direction, top[1].Direction
	if a == b {
		return a
	}
	if a != dto.DirectionNone && b == dto.DirectionNone {
		return a
	}
	if b != dto.DirectionNone && a == dto.DirectionNone {
		return b
	}
	return dto.DirectionNone
}

// detectExhaustion checks the highest usable timeframe for a fast EMA that is
// rolling over (uptrend) or rolling up (downtrend) across the last few bars.
func (e *TrendEngine) detectExhaustion(data dto.TimeframeData, labels []string, evalTime time.Time, dir dto.Direction) bool {
	if dir == dto.DirectionNone {
		return false
	}
	n := e.cfg.ExhaustionBars
	for _, tf := range labels {
		pair, ok := timeframeEMAPairs[tf]
		if !ok {
			continue
		}
		bars := dto.ClipBefore(data[tf], evalTime)
		if len(bars) < pair.slow+n+1 {
			continue
		}
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		fast := EMA(closes, pair.fast)
		last := len(fast) - 1

		// deltas over the last n bars
		shrinking := true
		for i := 0; i < n-1; i++ {
			d0 := fast[last-i] - fast[last-i-1]
			d1 := fast[last-i-1] - fast[last-i-2]
			if dir == dto.DirectionLong && d0 >= d1 {
				shrinking = false
				break
			}
			if dir == dto.DirectionShort && d0 <= d1 {
				shrinking = false
				break
			}
		}
		return shrinking
	}
	return false
}
