package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

// breakoutBars builds a rally to a single swing high at index 5 (high 110),
// a pullback with a bearish origin candle at index 10, and a breakout close
// above the swing at index 11.
func breakoutBars() []dto.Candle {
	return []dto.Candle{
		bar(0, 100, 101, 99, 100, 1000),
		bar(1, 100.5, 102, 100, 101, 1000),
		bar(2, 101.5, 103, 101, 102, 1000),
		bar(3, 102.5, 104, 102, 103, 1000),
		bar(4, 103.5, 105, 103, 104, 1000),
		bar(5, 105, 110, 104, 109, 1000),
		bar(6, 104.5, 105, 103, 104, 1000),
		bar(7, 103.5, 104, 102, 103, 1000),
		bar(8, 102.5, 103, 101, 102, 1000),
		bar(9, 101.5, 102, 100, 101, 1000),
		bar(10, 103, 104, 100, 101, 1500),
		bar(11, 101, 112, 101, 111, 2000),
	}
}

func newTestStructureEngine() *StructureEngine {
	return NewStructureEngine(DefaultStructureConfig(), DefaultStructureWeights())
}

func TestStructureEngineDetectsSwing(t *testing.T) {
	bars := breakoutBars()
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Len(t, report.Swings, 1)
	assert.True(t, report.Swings[0].IsHigh)
	assert.Equal(t, 5, report.Swings[0].Index)
	assert.Equal(t, 110.0, report.Swings[0].Price)
}

func TestStructureEngineDetectsBOS(t *testing.T) {
	bars := breakoutBars()
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Len(t, report.Events, 1)
	ev := report.Events[0]
	assert.Equal(t, 11, ev.Index)
	assert.Equal(t, dto.DirectionLong, ev.Direction)
	assert.False(t, ev.IsCHoCH, "first break of the run is a BOS")
	assert.Equal(t, 110.0, ev.BrokenLevel)
	assert.InDelta(t, 1.0, ev.Displacement, 1e-9)
	assert.NotNil(t, report.LastEvent)
	assert.Equal(t, ev, *report.LastEvent)
}

func TestStructureEngineDetectsOrderBlock(t *testing.T) {
	bars := breakoutBars()
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Len(t, report.OrderBlocks, 1)
	ob := report.OrderBlocks[0]
	assert.Equal(t, dto.DirectionLong, ob.Direction)
	assert.Equal(t, 10, ob.Index, "last bearish candle before the breakout")
	assert.Equal(t, 103.0, ob.Top)
	assert.Equal(t, 100.0, ob.Bottom)
	assert.Equal(t, 1500.0, ob.Volume)
	assert.False(t, ob.Mitigated)
	assert.Len(t, report.ActiveOrderBlocks(dto.DirectionLong), 1)
	assert.Empty(t, report.ActiveOrderBlocks(dto.DirectionShort))
}

func TestStructureEngineMarksMitigation(t *testing.T) {
	// revisit closes inside the zone with a bearish candle
	bars := append(breakoutBars(), bar(12, 102, 103, 100.5, 101, 1000))
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Len(t, report.OrderBlocks, 1)
	assert.True(t, report.OrderBlocks[0].Mitigated)
	assert.NotNil(t, report.OrderBlocks[0].MitigationTime)
	assert.Empty(t, report.ActiveOrderBlocks(dto.DirectionLong))
}

func TestStructureEngineDetectsSweep(t *testing.T) {
	bars := breakoutBars()
	// wick through the swing high with the close back below it
	bars[11] = bar(11, 101, 111, 100.5, 105, 2000)
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Empty(t, report.Events, "a sweep close is not a break")
	assert.Len(t, report.Liquidity, 1)
	liq := report.Liquidity[0]
	assert.Equal(t, dto.LiquiditySweepBuySide, liq.Type)
	assert.Equal(t, 11, liq.Index)
	assert.Equal(t, 110.0, liq.Price)
}

func TestStructureEngineDetectsEqualLows(t *testing.T) {
	lows := []float64{104, 103, 102, 101.5, 101, 100, 101, 102, 103, 104, 103.5, 102.5, 101.2, 100.05, 101.3, 102.2, 103.2, 103.8, 103.9}
	bars := make([]dto.Candle, len(lows))
	for i, lo := range lows {
		bars[i] = bar(i, lo+1.2, lo+2, lo, lo+0.8, 1000)
	}
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	var eqLows []dto.LiquidityEvent
	for _, liq := range report.Liquidity {
		if liq.Type == dto.LiquidityEqualLows {
			eqLows = append(eqLows, liq)
		}
	}
	assert.Len(t, eqLows, 1, "lows 100 and 100.05 sit within tolerance")
	assert.Equal(t, 13, eqLows[0].Index)
	assert.Equal(t, 100.05, eqLows[0].Price)
}

func TestStructureEngineZoneAndStrength(t *testing.T) {
	bars := breakoutBars()
	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	assert.Equal(t, dto.ZonePremium, report.Zone)
	assert.Greater(t, report.ZonePosition, 0.55)
	// fresh BOS (25) + one active order block (20/3) + premium zone (10)
	assert.InDelta(t, 25+20.0/3+10, report.Strength, 1e-6)
}

func TestStructureEngineOutOfRangeIndex(t *testing.T) {
	bars := breakoutBars()
	e := newTestStructureEngine()

	assert.Empty(t, e.Analyze(bars, -1).Swings)
	assert.Empty(t, e.Analyze(bars, len(bars)).Swings)
	assert.Equal(t, 0.0, e.Analyze(nil, 0).Strength)
}

func TestStructureEngineRespectsEvalIndex(t *testing.T) {
	bars := breakoutBars()
	// evaluating before the breakout must not see the breakout bar
	report := newTestStructureEngine().Analyze(bars, 10)

	assert.Empty(t, report.Events)
	assert.Empty(t, report.OrderBlocks)
}

func TestRecentEvent(t *testing.T) {
	ev := dto.StructureEvent{Index: 50, Direction: dto.DirectionLong}
	r := dto.StructureReport{LastEvent: &ev, EvaluatedIndex: 80}

	assert.Nil(t, r.RecentEvent(20))
	assert.NotNil(t, r.RecentEvent(30))
	assert.Nil(t, dto.StructureReport{}.RecentEvent(20))
}

func TestStructureLongTrendWithSingleWick(t *testing.T) {
	// a long daily uptrend with one pullback ending in a deep downside wick,
	// then a breakout back through the pullback's origin high
	bars := make([]dto.Candle, 1000)
	for i := range bars {
		c := 100 + 0.1*float64(i)
		bars[i] = bar(i, c-0.05, c+0.2, c-0.25, c, 1000)
	}
	bars[551] = bar(551, 154.5, 154.7, 153.3, 153.5, 1200)
	bars[552] = bar(552, 153, 153.2, 151.8, 152, 1200)
	bars[553] = bar(553, 151.5, 151.7, 150.3, 150.5, 1200)
	bars[554] = bar(554, 150, 150.2, 148.8, 149, 1300)
	bars[555] = bar(555, 149, 149.7, 143, 149.5, 1800)
	bars[556] = bar(556, 150, 151.2, 149.8, 151, 1400)
	bars[557] = bar(557, 152, 153.2, 151.8, 153, 1400)
	bars[558] = bar(558, 153.8, 154.7, 153.6, 154.5, 1300)
	bars[559] = bar(559, 155.2, 156.2, 155.0, 156, 1500)

	report := newTestStructureEngine().Analyze(bars, len(bars)-1)

	// the wick bottom is the only swing low in the window
	swingLows := 0
	var wick dto.SwingPoint
	for _, s := range report.Swings {
		if !s.IsHigh {
			swingLows++
			wick = s
		}
	}
	assert.Equal(t, 1, swingLows)
	assert.Equal(t, 555, wick.Index)
	assert.Equal(t, 143.0, wick.Price)

	// one long BOS through the pre-pullback high, never a CHoCH
	assert.Len(t, report.Events, 1)
	ev := report.Events[0]
	assert.Equal(t, dto.DirectionLong, ev.Direction)
	assert.False(t, ev.IsCHoCH)
	assert.Equal(t, 559, ev.Index)
	assert.InDelta(t, 155.2, ev.BrokenLevel, 1e-9)

	// the last bearish pullback candle forms a bullish order block that the
	// resumed trend never revisits
	blocks := report.ActiveOrderBlocks(dto.DirectionLong)
	assert.Len(t, blocks, 1)
	assert.Equal(t, 554, blocks[0].Index)
	assert.InDelta(t, 148.8, blocks[0].Bottom, 1e-9)
	assert.InDelta(t, 150.0, blocks[0].Top, 1e-9)

	assert.Greater(t, report.Strength, 0.0)
	assert.Equal(t, 200, report.WindowStart, "rolling window bounds the scan")
}
