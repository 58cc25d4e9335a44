package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

func testPolicy() Policy {
	return Policy{
		Version:              "v6.1",
		Style:                dto.StyleSwing,
		MinConfidence:        50,
		MinStructureScore:    35,
		MinTrendStrength:     30,
		MinVolumeScore:       20,
		MinRiskReward:        2.0,
		HighVolMinStructure:  60,
		BOSDisplacementATR:   0.5,
		CHoCHRangeATR:        0.8,
		OBMinVolumeFraction:  0.5,
		OBMaxWickRatio:       0.7,
		LiquidityOverride:    true,
		OverrideMinStructure: 55,
	}
}

// passingSignal clears every floor of testPolicy.
func passingSignal() dto.EngineSignal {
	return dto.EngineSignal{
		Direction:  dto.DirectionLong,
		Confidence: 70,
		Entry:      100,
		StopLoss:   95,
		TakeProfit: 115, // risk/reward 3
		Metadata: dto.SignalMetadata{
			Structure:  dto.StructureReport{Strength: 50},
			Trend:      dto.TrendReport{Strength: 45},
			Volume:     dto.VolumeReport{Score: 30},
			Volatility: dto.VolatilityReport{State: dto.VolatilityNormal, ATR: 2},
			Regime:     dto.RegimeTrend,
		},
	}
}

func TestPolicyEvaluate(t *testing.T) {
	type args struct {
		mutate func(*dto.EngineSignal)
	}
	tests := []struct {
		name       string
		args       args
		wantReason string
	}{
		{
			name: "clean signal accepted",
			args: args{mutate: func(s *dto.EngineSignal) {}},
		},
		{
			name:       "no direction",
			args:       args{mutate: func(s *dto.EngineSignal) { s.Direction = dto.DirectionNone }},
			wantReason: dto.FilterNoDirection,
		},
		{
			name:       "zero risk distance",
			args:       args{mutate: func(s *dto.EngineSignal) { s.StopLoss = s.Entry }},
			wantReason: dto.FilterZeroRiskDistance,
		},
		{
			name: "extreme volatility",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volatility.State = dto.VolatilityExtreme
			}},
			wantReason: dto.FilterVolatilityExtreme,
		},
		{
			name:       "confidence floor",
			args:       args{mutate: func(s *dto.EngineSignal) { s.Confidence = 49 }},
			wantReason: dto.FilterConfidenceBelowMin,
		},
		{
			name: "structure floor",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Structure.Strength = 30
			}},
			wantReason: dto.FilterStructureBelowMin,
		},
		{
			name: "high volatility demands stronger structure",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volatility.State = dto.VolatilityHigh
			}},
			wantReason: dto.FilterHighVolWeakStruct,
		},
		{
			name: "trend floor",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Trend.Strength = 20
			}},
			wantReason: dto.FilterTrendBelowMin,
		},
		{
			name: "volume floor",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volume.Score = 10
			}},
			wantReason: dto.FilterVolumeBelowMin,
		},
		{
			name: "shallow BOS displacement",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Structure.LastEvent = &dto.StructureEvent{
					Direction:    dto.DirectionLong,
					Displacement: 0.5, // below 0.5 * ATR(2)
				}
			}},
			wantReason: dto.FilterBOSDisplacement,
		},
		{
			name: "narrow CHoCH bar",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Structure.LastEvent = &dto.StructureEvent{
					Direction: dto.DirectionLong,
					IsCHoCH:   true,
					BarRange:  1, // below 0.8 * ATR(2)
				}
			}},
			wantReason: dto.FilterCHoCHRange,
		},
		{
			name: "volume climax waives the CHoCH range floor",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Structure.LastEvent = &dto.StructureEvent{
					Direction: dto.DirectionLong,
					IsCHoCH:   true,
					BarRange:  1,
				}
				s.Metadata.Volume.Climax = true
			}},
		},
		{
			name: "opposite direction event is not judged",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Structure.LastEvent = &dto.StructureEvent{
					Direction:    dto.DirectionShort,
					Displacement: 0,
				}
			}},
		},
		{
			name: "thin order block",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volume.MedianVolume = 1000
				s.Metadata.Structure.OrderBlocks = []dto.OrderBlock{
					{Direction: dto.DirectionLong, Volume: 400, WickRatio: 0.2},
				}
			}},
			wantReason: dto.FilterOrderBlockQuality,
		},
		{
			name: "wicky order block",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volume.MedianVolume = 1000
				s.Metadata.Structure.OrderBlocks = []dto.OrderBlock{
					{Direction: dto.DirectionLong, Volume: 800, WickRatio: 0.9},
				}
			}},
			wantReason: dto.FilterOrderBlockQuality,
		},
		{
			name: "solid order block passes",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.Metadata.Volume.MedianVolume = 1000
				s.Metadata.Structure.OrderBlocks = []dto.OrderBlock{
					{Direction: dto.DirectionLong, Volume: 800, WickRatio: 0.2},
				}
			}},
		},
		{
			name: "risk reward floor",
			args: args{mutate: func(s *dto.EngineSignal) {
				s.TakeProfit = 108 // risk/reward 1.6
			}},
			wantReason: dto.FilterRiskRewardBelowMin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := passingSignal()
			tt.args.mutate(&sig)
			got := testPolicy().Evaluate(sig)

			assert.Equal(t, tt.wantReason == "", got.Accepted)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.False(t, got.Overridden)
		})
	}
}

func TestPolicyLiquidityOverride(t *testing.T) {
	// weak trend would normally reject; strong structure plus a fresh aligned
	// sweep takes the override path
	overridable := func() dto.EngineSignal {
		sig := passingSignal()
		sig.Metadata.Trend.Strength = 10
		sig.Metadata.Structure.Strength = 60
		sig.Metadata.Structure.EvaluatedIndex = 100
		sig.Metadata.Structure.Liquidity = []dto.LiquidityEvent{
			{Type: dto.LiquiditySweepSellSide, Index: 95},
		}
		return sig
	}

	t.Run("override accepts despite weak trend", func(t *testing.T) {
		got := testPolicy().Evaluate(overridable())
		assert.True(t, got.Accepted)
		assert.True(t, got.Overridden)
	})

	t.Run("override still enforces risk reward", func(t *testing.T) {
		sig := overridable()
		sig.TakeProfit = 108
		got := testPolicy().Evaluate(sig)
		assert.False(t, got.Accepted)
		assert.Equal(t, dto.FilterRiskRewardBelowMin, got.Reason)
	})

	t.Run("stale sweep falls through to the trend floor", func(t *testing.T) {
		sig := overridable()
		sig.Metadata.Structure.Liquidity[0].Index = 80
		got := testPolicy().Evaluate(sig)
		assert.False(t, got.Accepted)
		assert.Equal(t, dto.FilterTrendBelowMin, got.Reason)
	})

	t.Run("opposite side sweep does not qualify", func(t *testing.T) {
		sig := overridable()
		sig.Metadata.Structure.Liquidity[0].Type = dto.LiquiditySweepBuySide
		got := testPolicy().Evaluate(sig)
		assert.False(t, got.Accepted)
		assert.Equal(t, dto.FilterTrendBelowMin, got.Reason)
	})

	t.Run("contra regime blocks the override", func(t *testing.T) {
		sig := overridable()
		sig.Metadata.Regime = dto.RegimeContra
		got := testPolicy().Evaluate(sig)
		assert.False(t, got.Accepted)
		assert.Equal(t, dto.FilterTrendBelowMin, got.Reason)
	})

	t.Run("disabled override ignores the sweep", func(t *testing.T) {
		p := testPolicy()
		p.LiquidityOverride = false
		got := p.Evaluate(overridable())
		assert.False(t, got.Accepted)
		assert.Equal(t, dto.FilterTrendBelowMin, got.Reason)
	})
}

func TestCountersRecord(t *testing.T) {
	c := NewCounters()
	c.Record(Decision{Accepted: true})
	c.Record(Decision{Reason: dto.FilterTrendBelowMin})
	c.Record(Decision{Reason: dto.FilterTrendBelowMin})
	c.Record(Decision{Reason: dto.FilterVolumeBelowMin})

	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 3, c.Filtered)
	assert.Equal(t, 2, c.Reasons[dto.FilterTrendBelowMin])
	assert.Equal(t, 1, c.Reasons[dto.FilterVolumeBelowMin])
}

func TestCountersFillRejection(t *testing.T) {
	c := NewCounters()
	c.Record(Decision{Accepted: true})
	c.RecordFillRejection(dto.FilterZeroRiskDistance)

	// one candidate: accepted by the gate, rejected at fill. Total must not
	// count it twice.
	assert.Equal(t, 1, c.Total)
	assert.Equal(t, 1, c.Filtered)
	assert.Equal(t, 1, c.Reasons[dto.FilterZeroRiskDistance])
}
