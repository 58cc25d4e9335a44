package gate

import (
	"math"

	"golang-backtest/internal/dto"
)

// Policy is one engine generation for one trading style, expressed purely as
// configuration. The execution loop never branches on version strings; it
// consumes whichever Policy the registry hands it.
type Policy struct {
	Version string
	Style   dto.TradingStyle

	// acceptance floors
	MinConfidence     float64
	MinStructureScore float64
	MinTrendStrength  float64
	MinVolumeScore    float64
	MinRiskReward     float64

	// volatility rules: extreme always rejects, high requires stronger structure
	HighVolMinStructure float64

	// structural quality checks, in ATR multiples
	BOSDisplacementATR  float64
	CHoCHRangeATR       float64
	OBMinVolumeFraction float64 // of the rolling median volume
	OBMaxWickRatio      float64

	// regime override: strong structure plus a recent aligned sweep may accept
	// a signal whose trend strength is below the floor
	LiquidityOverride    bool
	OverrideMinStructure float64

	// execution knobs consumed by the simulation loop
	RiskPerTradePct  float64 // daytrading/swing sizing
	AllocationPct    float64 // investor sizing
	SlippagePct      float64
	SpreadPct        float64
	MaxHoldBars      int
	TrailingATRMult  float64
	BreakevenAtR     float64 // unrealized R at which the stop moves to entry
	BreakevenBuffer  float64 // ATR multiple added beyond entry on breakeven
	EnableTrailing   bool
	EnableBreakeven  bool
	EnableStructural bool
	VolumeCollapseZ  float64 // exit when participation z-score falls below
}

// Decision is the gate verdict for one candidate signal.
type Decision struct {
	Accepted   bool
	Reason     string // stable filter key when rejected, empty when accepted
	Overridden bool   // accepted through the regime override path
}

// Counters tallies rejection reasons for one run. Owned per run, never shared.
type Counters struct {
	Total    int
	Filtered int
	Reasons  map[string]int
}

func NewCounters() *Counters {
	return &Counters{Reasons: make(map[string]int)}
}

func (c *Counters) Record(d Decision) {
	c.Total++
	if !d.Accepted {
		c.Filtered++
		c.Reasons[d.Reason]++
	}
}

// RecordFillRejection reclassifies an already-accepted candidate that failed
// at fill time. The candidate counted toward Total when the gate accepted it,
// so only the filter side moves.
func (c *Counters) RecordFillRejection(reason string) {
	c.Filtered++
	c.Reasons[reason]++
}

// Evaluate applies every configured floor in a fixed order so rejection
// reasons are reproducible across runs. Override rules short-circuit to
// accept before the trend floor is consulted.
func (p Policy) Evaluate(sig dto.EngineSignal) Decision {
	if sig.Direction == dto.DirectionNone {
		return reject(dto.FilterNoDirection)
	}
	if math.Abs(sig.Entry-sig.StopLoss) == 0 {
		return reject(dto.FilterZeroRiskDistance)
	}

	meta := sig.Metadata
	if meta.Volatility.State == dto.VolatilityExtreme {
		return reject(dto.FilterVolatilityExtreme)
	}

	if p.LiquidityOverride &&
		meta.Structure.Strength >= p.OverrideMinStructure &&
		hasAlignedSweep(sig) &&
		meta.Regime != dto.RegimeContra {
		if sig.RiskReward() < p.MinRiskReward {
			return reject(dto.FilterRiskRewardBelowMin)
		}
		return Decision{Accepted: true, Overridden: true}
	}

	if sig.Confidence < p.MinConfidence {
		return reject(dto.FilterConfidenceBelowMin)
	}
	if meta.Structure.Strength < p.MinStructureScore {
		return reject(dto.FilterStructureBelowMin)
	}
	if meta.Volatility.State == dto.VolatilityHigh && meta.Structure.Strength < p.HighVolMinStructure {
		return reject(dto.FilterHighVolWeakStruct)
	}
	if meta.Trend.Strength < p.MinTrendStrength {
		return reject(dto.FilterTrendBelowMin)
	}
	if meta.Volume.Score < p.MinVolumeScore {
		return reject(dto.FilterVolumeBelowMin)
	}

	if r := p.checkStructuralQuality(sig); r != "" {
		return reject(r)
	}

	if sig.RiskReward() < p.MinRiskReward {
		return reject(dto.FilterRiskRewardBelowMin)
	}
	return Decision{Accepted: true}
}

// checkStructuralQuality validates the event and order block behind the
// signal against the ATR-relative displacement floors.
func (p Policy) checkStructuralQuality(sig dto.EngineSignal) string {
	meta := sig.Metadata
	atr := meta.Volatility.ATR
	if atr <= 0 {
		return "" // warmup, nothing to measure against
	}

	if ev := meta.Structure.LastEvent; ev != nil && ev.Direction == sig.Direction {
		if ev.IsCHoCH {
			if ev.BarRange < p.CHoCHRangeATR*atr && !meta.Volume.Climax {
				return dto.FilterCHoCHRange
			}
		} else {
			if ev.Displacement < p.BOSDisplacementATR*atr {
				return dto.FilterBOSDisplacement
			}
		}
	}

	blocks := meta.Structure.ActiveOrderBlocks(sig.Direction)
	if len(blocks) > 0 && meta.Volume.MedianVolume > 0 {
		ob := blocks[len(blocks)-1]
		if ob.Volume < p.OBMinVolumeFraction*meta.Volume.MedianVolume {
			return dto.FilterOrderBlockQuality
		}
		if ob.WickRatio > p.OBMaxWickRatio {
			return dto.FilterOrderBlockQuality
		}
	}
	return ""
}

// hasAlignedSweep reports a recent sweep of the side the signal fades.
func hasAlignedSweep(sig dto.EngineSignal) bool {
	want := dto.LiquiditySweepSellSide
	if sig.Direction == dto.DirectionShort {
		want = dto.LiquiditySweepBuySide
	}
	st := sig.Metadata.Structure
	for _, liq := range st.Liquidity {
		if liq.Type == want && st.EvaluatedIndex-liq.Index <= 10 {
			return true
		}
	}
	return false
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}
