package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	t.Run("empty version selects the default generation", func(t *testing.T) {
		p, err := r.Resolve(dto.StyleSwing, "")
		assert.NoError(t, err)
		assert.Equal(t, DefaultVersion, p.Version)
		assert.Equal(t, dto.StyleSwing, p.Style)
	})

	t.Run("every style and version resolves", func(t *testing.T) {
		for _, style := range []dto.TradingStyle{dto.StyleDayTrading, dto.StyleSwing, dto.StyleInvestor} {
			for _, version := range Versions() {
				p, err := r.Resolve(style, version)
				assert.NoError(t, err)
				assert.Equal(t, version, p.Version)
			}
		}
	})

	t.Run("unknown version errors", func(t *testing.T) {
		_, err := r.Resolve(dto.StyleSwing, "v9.9")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "v9.9")
	})

	t.Run("known lists the full table", func(t *testing.T) {
		known := r.Known()
		assert.Len(t, known, 3*len(Versions()))
		assert.Contains(t, known, "swing/v6.1")
	})
}

func TestRegistryGenerations(t *testing.T) {
	r := NewRegistry()

	v46, err := r.Resolve(dto.StyleDayTrading, VersionV46)
	assert.NoError(t, err)
	v50, err := r.Resolve(dto.StyleDayTrading, VersionV50)
	assert.NoError(t, err)
	v55, err := r.Resolve(dto.StyleDayTrading, VersionV55)
	assert.NoError(t, err)
	v60, err := r.Resolve(dto.StyleDayTrading, VersionV60)
	assert.NoError(t, err)
	v61, err := r.Resolve(dto.StyleDayTrading, VersionV61)
	assert.NoError(t, err)

	// v4.6 is the loosest generation: no quality checks, no trailing
	assert.Equal(t, 50.0, v46.MinConfidence)
	assert.Equal(t, 30.0, v46.MinStructureScore)
	assert.Equal(t, 0.0, v46.BOSDisplacementATR)
	assert.False(t, v46.EnableTrailing)
	assert.False(t, v46.LiquidityOverride)

	// v5.0 brings back displacement checks but not order block quality
	assert.Equal(t, 0.5, v50.BOSDisplacementATR)
	assert.Equal(t, 0.0, v50.OBMinVolumeFraction)

	// v5.5 restores the full base quality checks and trailing
	assert.Equal(t, 0.5, v55.OBMinVolumeFraction)
	assert.True(t, v55.EnableTrailing)
	assert.False(t, v55.LiquidityOverride)

	// v6.0 introduces the override and raises the risk/reward floor
	assert.True(t, v60.LiquidityOverride)
	assert.Equal(t, v60.MinStructureScore+25, v60.OverrideMinStructure)
	assert.InDelta(t, 1.7, v60.MinRiskReward, 1e-9)

	// v6.1 keeps the override reachable and tightens the high-vol rule
	assert.True(t, v61.LiquidityOverride)
	assert.Equal(t, v61.MinStructureScore+20, v61.OverrideMinStructure)
	assert.InDelta(t, 1.7, v61.MinRiskReward, 1e-9)
	assert.Equal(t, 65.0, v61.HighVolMinStructure)
}

func TestRegistryStyleBases(t *testing.T) {
	r := NewRegistry()

	day, _ := r.Resolve(dto.StyleDayTrading, VersionV61)
	swing, _ := r.Resolve(dto.StyleSwing, VersionV61)
	inv, _ := r.Resolve(dto.StyleInvestor, VersionV61)

	assert.Equal(t, 0.01, day.RiskPerTradePct)
	assert.Equal(t, 32, day.MaxHoldBars)

	assert.Equal(t, 0.02, swing.RiskPerTradePct)
	assert.Equal(t, 20, swing.MaxHoldBars)

	// investor sizes by allocation, not risk distance
	assert.Equal(t, 0.0, inv.RiskPerTradePct)
	assert.Equal(t, 0.10, inv.AllocationPct)
	assert.Equal(t, 250, inv.MaxHoldBars)
	assert.False(t, inv.EnableTrailing)
}
