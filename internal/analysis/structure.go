package analysis

import (
	"math"

	"golang-backtest/internal/dto"
)

// StructureConfig bounds the rolling window and tunes the detectors.
type StructureConfig struct {
	SwingLookback       int     // symmetric bars a swing must dominate
	WindowBars          int     // rolling window ending at the evaluated bar
	FVGMinPricePct      float64 // gap floor as fraction of price
	FVGMinATRMult       float64 // gap floor as multiple of ATR(14)
	ATRPeriod           int
	EqualLevelTolerance float64 // relative tolerance for equal highs/lows
	EquilibriumBand     float64 // range fraction around the midpoint treated as neutral
}

func DefaultStructureConfig() StructureConfig {
	return StructureConfig{
		SwingLookback:       5,
		WindowBars:          800,
		FVGMinPricePct:      0.0005,
		FVGMinATRMult:       0.2,
		ATRPeriod:           14,
		EqualLevelTolerance: 0.001,
		EquilibriumBand:     0.10,
	}
}

// StructureWeights is the explicit scoring table behind the strength score.
// Each component contributes its weight scaled by recency; the sum is clamped
// to 0..100.
type StructureWeights struct {
	BOS         float64
	CHoCH       float64
	OrderBlock  float64
	FVG         float64
	Sweep       float64
	Zone        float64
	RecencyBars int // full weight at age 0, linear decay to 0 at this age
}

func DefaultStructureWeights() StructureWeights {
	return StructureWeights{
		BOS:         25,
		CHoCH:       15,
		OrderBlock:  20,
		FVG:         15,
		Sweep:       15,
		Zone:        10,
		RecencyBars: 40,
	}
}

// StructureEngine detects swings, structure breaks, order blocks, fair value
// gaps and liquidity events on a bounded rolling window. An engine instance
// holds configuration only; all scratch state lives inside Analyze so
// concurrent runs never interfere.
type StructureEngine struct {
	cfg     StructureConfig
	weights StructureWeights
}

func NewStructureEngine(cfg StructureConfig, weights StructureWeights) *StructureEngine {
	return &StructureEngine{cfg: cfg, weights: weights}
}

// Analyze computes the structure report for the bar at evalIdx using only
// bars with index <= evalIdx, restricted to the rolling window.
func (e *StructureEngine) Analyze(bars []dto.Candle, evalIdx int) dto.StructureReport {
	report := dto.StructureReport{EvaluatedIndex: evalIdx}
	if evalIdx < 0 || evalIdx >= len(bars) {
		return report
	}

	start := evalIdx - e.cfg.WindowBars + 1
	if start < 0 {
		start = 0
	}
	window := bars[start : evalIdx+1]
	report.WindowStart = start

	atr := ATRSeq(window, e.cfg.ATRPeriod)

	swings := e.detectSwings(window, start)
	report.Swings = swings

	events := e.detectEvents(window, start, swings)
	report.Events = events
	if len(events) > 0 {
		last := events[len(events)-1]
		report.LastEvent = &last
	}

	report.OrderBlocks = e.detectOrderBlocks(window, start, events)
	report.FairValueGaps = e.detectFairValueGaps(window, start, atr)
	report.Liquidity = e.detectLiquidity(window, start, swings)

	report.Zone, report.ZonePosition = e.classifyZone(window)
	report.Strength = e.scoreStrength(&report)
	return report
}

// detectSwings finds bars whose high/low strictly dominates the symmetric
// lookback window. Bars too close to the window edge cannot be confirmed.
func (e *StructureEngine) detectSwings(window []dto.Candle, offset int) []dto.SwingPoint {
	lb := e.cfg.SwingLookback
	if len(window) < 2*lb+1 {
		return nil
	}
	var out []dto.SwingPoint
	for i := lb; i < len(window)-lb; i++ {
		isHigh, isLow := true, true
		for j := i - lb; j <= i+lb; j++ {
			if j == i {
				continue
			}
			if window[j].High >= window[i].High {
				isHigh = false
			}
			if window[j].Low <= window[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			out = append(out, dto.SwingPoint{
				Index:  offset + i,
				Time:   window[i].Timestamp,
				Price:  window[i].High,
				IsHigh: true,
			})
		} else if isLow {
			out = append(out, dto.SwingPoint{
				Index:  offset + i,
				Time:   window[i].Timestamp,
				Price:  window[i].Low,
				IsHigh: false,
			})
		}
	}
	return out
}

// detectEvents scans forward through the window comparing each close against
// the most recent unbroken swing point that precedes it. A close beyond that
// level is a BOS; a BOS opposite the previous one is a CHoCH. Swing points
// with index at or after the current bar are never consulted.
func (e *StructureEngine) detectEvents(window []dto.Candle, offset int, swings []dto.SwingPoint) []dto.StructureEvent {
	if len(swings) == 0 {
		return nil
	}
	brokenHigh := make([]bool, len(swings))
	brokenLow := make([]bool, len(swings))

	var events []dto.StructureEvent
	var prevDir dto.Direction

	for i := 0; i < len(window); i++ {
		global := offset + i
		c := window[i]

		hiIdx, loIdx := -1, -1
		for s := len(swings) - 1; s >= 0; s-- {
			if swings[s].Index >= global {
				continue
			}
			if swings[s].IsHigh {
				if hiIdx == -1 && !brokenHigh[s] {
					hiIdx = s
				}
			} else {
				if loIdx == -1 && !brokenLow[s] {
					loIdx = s
				}
			}
			if hiIdx != -1 && loIdx != -1 {
				break
			}
		}

		if hiIdx != -1 && c.Close > swings[hiIdx].Price {
			brokenHigh[hiIdx] = true
			ev := dto.StructureEvent{
				Index:        global,
				Time:         c.Timestamp,
				Price:        c.Close,
				Direction:    dto.DirectionLong,
				BrokenLevel:  swings[hiIdx].Price,
				Displacement: c.Close - swings[hiIdx].Price,
				BarRange:     c.Range(),
			}
			ev.IsCHoCH = prevDir == dto.DirectionShort
			prevDir = dto.DirectionLong
			events = append(events, ev)
			continue
		}
		if loIdx != -1 && c.Close < swings[loIdx].Price {
			brokenLow[loIdx] = true
			ev := dto.StructureEvent{
				Index:        global,
				Time:         c.Timestamp,
				Price:        c.Close,
				Direction:    dto.DirectionShort,
				BrokenLevel:  swings[loIdx].Price,
				Displacement: swings[loIdx].Price - c.Close,
				BarRange:     c.Range(),
			}
			ev.IsCHoCH = prevDir == dto.DirectionLong
			prevDir = dto.DirectionShort
			events = append(events, ev)
		}
	}
	return events
}

// detectOrderBlocks walks backward from each breakout bar to the last candle
// of opposite color. The walk is capped at the window start; when no origin
// candle exists the event yields no order block.
func (e *StructureEngine) detectOrderBlocks(window []dto.Candle, offset int, events []dto.StructureEvent) []dto.OrderBlock {
	var blocks []dto.OrderBlock
	seen := make(map[int]bool) // one zone per origin candle

	for _, ev := range events {
		local := ev.Index - offset
		origin := -1
		for i := local - 1; i >= 0; i-- {
			c := window[i]
			if ev.Direction == dto.DirectionLong && c.IsBearish() {
				origin = i
				break
			}
			if ev.Direction == dto.DirectionShort && c.IsBullish() {
				origin = i
				break
			}
		}
		if origin == -1 || seen[origin] {
			continue
		}
		seen[origin] = true

		c := window[origin]
		ob := dto.OrderBlock{
			Direction: ev.Direction,
			Index:     offset + origin,
			OpenTime:  c.Timestamp,
			CloseTime: c.Timestamp,
			Volume:    c.Volume,
			WickRatio: c.WickRatio(),
		}
		if ev.Direction == dto.DirectionLong {
			ob.Top = c.Open
			ob.Bottom = c.Low
		} else {
			ob.Top = c.High
			ob.Bottom = c.Open
		}
		if ob.Top < ob.Bottom {
			ob.Top, ob.Bottom = ob.Bottom, ob.Top
		}

		e.markMitigation(&ob, window, offset, local)
		blocks = append(blocks, ob)
	}
	return blocks
}

// markMitigation scans forward once from the breakout bar and flags the zone
// on the first revisit that closes inside it with an opposite-color candle.
func (e *StructureEngine) markMitigation(ob *dto.OrderBlock, window []dto.Candle, offset, breakoutLocal int) {
	for i := breakoutLocal + 1; i < len(window); i++ {
		c := window[i]
		if !ob.Contains(c.Close) {
			continue
		}
		opposite := (ob.Direction == dto.DirectionLong && c.IsBearish()) ||
			(ob.Direction == dto.DirectionShort && c.IsBullish())
		if opposite {
			t := c.Timestamp
			ob.Mitigated = true
			ob.MitigationTime = &t
			return
		}
	}
}

// detectFairValueGaps records 3-candle gaps whose size clears
// max(FVGMinPricePct * price, FVGMinATRMult * ATR).
func (e *StructureEngine) detectFairValueGaps(window []dto.Candle, offset int, atr []float64) []dto.FairValueGap {
	var gaps []dto.FairValueGap
	for i := 2; i < len(window); i++ {
		floor := e.cfg.FVGMinPricePct * window[i].Close
		if !math.IsNaN(atr[i]) {
			if m := e.cfg.FVGMinATRMult * atr[i]; m > floor {
				floor = m
			}
		}

		if window[i].Low > window[i-2].High {
			size := window[i].Low - window[i-2].High
			if size > floor {
				gaps = append(gaps, dto.FairValueGap{
					Direction:  dto.DirectionLong,
					StartIndex: offset + i - 2,
					EndIndex:   offset + i,
					GapTop:     window[i].Low,
					GapBottom:  window[i-2].High,
					Size:       size,
				})
			}
		} else if window[i].High < window[i-2].Low {
			size := window[i-2].Low - window[i].High
			if size > floor {
				gaps = append(gaps, dto.FairValueGap{
					Direction:  dto.DirectionShort,
					StartIndex: offset + i - 2,
					EndIndex:   offset + i,
					GapTop:     window[i-2].Low,
					GapBottom:  window[i].High,
					Size:       size,
				})
			}
		}
	}
	return gaps
}

// detectLiquidity finds equal highs/lows among swing points and single-bar
// sweeps where a wick breaches the prior extreme but the body closes back
// inside.
func (e *StructureEngine) detectLiquidity(window []dto.Candle, offset int, swings []dto.SwingPoint) []dto.LiquidityEvent {
	var out []dto.LiquidityEvent

	var prevHigh, prevLow *dto.SwingPoint
	for i := range swings {
		s := swings[i]
		if s.IsHigh {
			if prevHigh != nil && relDiff(s.Price, prevHigh.Price) <= e.cfg.EqualLevelTolerance {
				out = append(out, dto.LiquidityEvent{
					Type: dto.LiquidityEqualHighs, Index: s.Index, Time: s.Time, Price: s.Price,
				})
			}
			prevHigh = &swings[i]
		} else {
			if prevLow != nil && relDiff(s.Price, prevLow.Price) <= e.cfg.EqualLevelTolerance {
				out = append(out, dto.LiquidityEvent{
					Type: dto.LiquidityEqualLows, Index: s.Index, Time: s.Time, Price: s.Price,
				})
			}
			prevLow = &swings[i]
		}
	}

	for i := 0; i < len(window); i++ {
		global := offset + i
		c := window[i]

		var lastHigh, lastLow *dto.SwingPoint
		for s := len(swings) - 1; s >= 0; s-- {
			if swings[s].Index >= global {
				continue
			}
			if swings[s].IsHigh && lastHigh == nil {
				lastHigh = &swings[s]
			}
			if !swings[s].IsHigh && lastLow == nil {
				lastLow = &swings[s]
			}
			if lastHigh != nil && lastLow != nil {
				break
			}
		}

		if lastHigh != nil && c.High > lastHigh.Price && c.Close < lastHigh.Price {
			out = append(out, dto.LiquidityEvent{
				Type: dto.LiquiditySweepBuySide, Index: global, Time: c.Timestamp, Price: lastHigh.Price,
			})
		}
		if lastLow != nil && c.Low < lastLow.Price && c.Close > lastLow.Price {
			out = append(out, dto.LiquidityEvent{
				Type: dto.LiquiditySweepSellSide, Index: global, Time: c.Timestamp, Price: lastLow.Price,
			})
		}
	}
	return out
}

// classifyZone places the current close relative to the midpoint of the
// window's min/max range.
func (e *StructureEngine) classifyZone(window []dto.Candle) (string, float64) {
	if len(window) == 0 {
		return dto.ZoneEquilibrium, 0.5
	}
	hi, lo := window[0].High, window[0].Low
	for _, c := range window {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	if hi <= lo {
		return dto.ZoneEquilibrium, 0.5
	}
	pos := (window[len(window)-1].Close - lo) / (hi - lo)
	half := e.cfg.EquilibriumBand / 2
	switch {
	case pos > 0.5+half:
		return dto.ZonePremium, pos
	case pos < 0.5-half:
		return dto.ZoneDiscount, pos
	default:
		return dto.ZoneEquilibrium, pos
	}
}

// scoreStrength applies the weight table. Components contribute their weight
// scaled by recency; presence-only components contribute flat weight.
func (e *StructureEngine) scoreStrength(r *dto.StructureReport) float64 {
	w := e.weights
	score := 0.0

	recency := func(idx int) float64 {
		age := r.EvaluatedIndex - idx
		if age < 0 || w.RecencyBars <= 0 || age >= w.RecencyBars {
			return 0
		}
		return 1 - float64(age)/float64(w.RecencyBars)
	}

	var lastBOS, lastCHoCH *dto.StructureEvent
	for i := range r.Events {
		ev := &r.Events[i]
		if ev.IsCHoCH {
			lastCHoCH = ev
		} else {
			lastBOS = ev
		}
	}
	if lastBOS != nil {
		score += w.BOS * recency(lastBOS.Index)
	}
	if lastCHoCH != nil {
		score += w.CHoCH * recency(lastCHoCH.Index)
	}

	active := 0
	for _, ob := range r.OrderBlocks {
		if !ob.Mitigated {
			active++
		}
	}
	if active > 0 {
		frac := float64(active) / 3.0
		if frac > 1 {
			frac = 1
		}
		score += w.OrderBlock * frac
	}

	bestFVG := 0.0
	for _, gap := range r.FairValueGaps {
		if rec := recency(gap.EndIndex); rec > bestFVG {
			bestFVG = rec
		}
	}
	score += w.FVG * bestFVG

	bestSweep := 0.0
	for _, liq := range r.Liquidity {
		if liq.Type != dto.LiquiditySweepBuySide && liq.Type != dto.LiquiditySweepSellSide {
			continue
		}
		if rec := recency(liq.Index); rec > bestSweep {
			bestSweep = rec
		}
	}
	score += w.Sweep * bestSweep

	if r.Zone != dto.ZoneEquilibrium {
		score += w.Zone
	}

	return Clamp100(score)
}

func relDiff(a, b float64) float64 {
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return 0
	}
	return math.Abs(a-b) / base
}
