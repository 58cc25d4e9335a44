package analysis

import (
	"golang-backtest/internal/dto"
)

// SelectorWeights is the confluence table fusing the engines into one
// confidence value. Weights sum to 1.
type SelectorWeights struct {
	Structure  float64
	Trend      float64
	Volume     float64
	Volatility float64
	Liquidity  float64
}

func DefaultSelectorWeights() SelectorWeights {
	return SelectorWeights{
		Structure:  0.35,
		Trend:      0.30,
		Volume:     0.15,
		Volatility: 0.10,
		Liquidity:  0.10,
	}
}

// SelectorConfig tunes stop/target placement and the fundamentals nudge.
type SelectorConfig struct {
	Weights          SelectorWeights
	StopATRMult      float64
	TargetATRMult    float64
	OrderBlockReach  float64 // max ATR multiples to an aligned order block stop
	EventRecencyBars int     // structure events older than this stop steering direction
	SweepRecencyBars int
	FundamentalBoost float64 // max +/- confidence points from fundamentals
}

func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Weights:          DefaultSelectorWeights(),
		StopATRMult:      1.5,
		TargetATRMult:    3.0,
		OrderBlockReach:  2.0,
		EventRecencyBars: 20,
		SweepRecencyBars: 10,
		FundamentalBoost: 10,
	}
}

// SignalSelector fuses the four engines into one directional signal with
// confidence, stop and target.
type SignalSelector struct {
	cfg SelectorConfig
}

func NewSignalSelector(cfg SelectorConfig) *SignalSelector {
	return &SignalSelector{cfg: cfg}
}

// SelectorInput carries the engine outputs for one evaluated bar.
type SelectorInput struct {
	Bars        []dto.Candle
	EvalIdx     int
	Structure   dto.StructureReport
	Trend       dto.TrendReport
	Volume      dto.VolumeReport
	Volatility  dto.VolatilityReport
	Fundamental *dto.FundamentalSnapshot
}

// Select produces the signal for one bar index. The result is fresh per call.
func (s *SignalSelector) Select(in SelectorInput) dto.EngineSignal {
	signal := dto.EngineSignal{
		Direction: dto.DirectionNone,
		Metadata: dto.SignalMetadata{
			Structure:   in.Structure,
			Trend:       in.Trend,
			Volume:      in.Volume,
			Volatility:  in.Volatility,
			Regime:      ClassifyRegime(in.Trend.Strength, in.Volatility.State),
			Fundamental: in.Fundamental,
		},
	}
	if in.EvalIdx < 0 || in.EvalIdx >= len(in.Bars) {
		return signal
	}
	signal.Entry = in.Bars[in.EvalIdx].Close

	signal.Direction = s.pickDirection(in)
	if signal.Direction == dto.DirectionNone {
		return signal
	}

	liquidityScore := s.liquidityScore(in, signal.Direction)
	signal.Confidence = s.confidence(in, liquidityScore)
	signal.StopLoss, signal.TakeProfit = s.levels(in, signal.Direction, signal.Entry)
	return signal
}

// pickDirection prefers the structure engine's last event, falling back to
// the trend bias. An outright conflict yields no direction.
func (s *SignalSelector) pickDirection(in SelectorInput) dto.Direction {
	var structDir dto.Direction = dto.DirectionNone
	if ev := in.Structure.RecentEvent(s.cfg.EventRecencyBars); ev != nil {
		structDir = ev.Direction
	}
	trendDir := in.Trend.Direction

	switch {
	case structDir == dto.DirectionNone && trendDir == dto.DirectionNone:
		return dto.DirectionNone
	case structDir == dto.DirectionNone:
		return trendDir
	case trendDir == dto.DirectionNone || trendDir == structDir:
		return structDir
	default:
		return dto.DirectionNone
	}
}

// liquidityScore rewards a recent sweep of the side a new position would
// fade: a sell-side sweep supports longs, a buy-side sweep supports shorts.
func (s *SignalSelector) liquidityScore(in SelectorInput, dir dto.Direction) float64 {
	want := dto.LiquiditySweepSellSide
	if dir == dto.DirectionShort {
		want = dto.LiquiditySweepBuySide
	}
	best := 0.0
	for _, liq := range in.Structure.Liquidity {
		if liq.Type != want {
			continue
		}
		age := in.EvalIdx - liq.Index
		if age < 0 || age > s.cfg.SweepRecencyBars {
			continue
		}
		rec := 1 - float64(age)/float64(s.cfg.SweepRecencyBars+1)
		if rec > best {
			best = rec
		}
	}
	return best * 100
}

func (s *SignalSelector) confidence(in SelectorInput, liquidityScore float64) float64 {
	w := s.cfg.Weights
	conf := w.Structure*in.Structure.Strength +
		w.Trend*in.Trend.Strength +
		w.Volume*in.Volume.Score +
		w.Volatility*in.Volatility.Stability +
		w.Liquidity*liquidityScore

	if in.Trend.Exhaustion {
		conf -= 10
	}
	if in.Fundamental != nil {
		conf += s.fundamentalNudge(in.Fundamental)
	}
	return Clamp100(conf)
}

// fundamentalNudge maps a valuation/quality snapshot to a bounded confidence
// adjustment. Missing snapshot fields read as zero and contribute nothing.
func (s *SignalSelector) fundamentalNudge(f *dto.FundamentalSnapshot) float64 {
	nudge := 0.0
	if f.TrailingPE > 0 && f.TrailingPE < 15 {
		nudge += 0.4
	} else if f.TrailingPE > 40 {
		nudge -= 0.4
	}
	if f.ReturnOnEquity > 0.15 {
		nudge += 0.3
	}
	if f.DebtToEquity > 2 {
		nudge -= 0.3
	}
	if f.EarningsGrowth > 0.10 {
		nudge += 0.3
	}
	if nudge > 1 {
		nudge = 1
	}
	if nudge < -1 {
		nudge = -1
	}
	return nudge * s.cfg.FundamentalBoost
}

// levels derives the stop from a nearby aligned order block when one exists
// within reach, otherwise from an ATR multiple. The target is ATR-relative.
func (s *SignalSelector) levels(in SelectorInput, dir dto.Direction, entry float64) (stop, target float64) {
	atr := in.Volatility.ATR
	if atr <= 0 {
		atr = entry * 0.01
	}

	if dir == dto.DirectionLong {
		stop = entry - s.cfg.StopATRMult*atr
		for _, ob := range in.Structure.ActiveOrderBlocks(dto.DirectionLong) {
			if ob.Bottom < entry && entry-ob.Bottom <= s.cfg.OrderBlockReach*atr && ob.Bottom > stop {
				stop = ob.Bottom
			}
		}
		target = entry + s.cfg.TargetATRMult*atr
		return stop, target
	}

	stop = entry + s.cfg.StopATRMult*atr
	for _, ob := range in.Structure.ActiveOrderBlocks(dto.DirectionShort) {
		if ob.Top > entry && ob.Top-entry <= s.cfg.OrderBlockReach*atr && ob.Top < stop {
			stop = ob.Top
		}
	}
	target = entry - s.cfg.TargetATRMult*atr
	return stop, target
}
