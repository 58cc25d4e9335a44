package gate

import (
	"fmt"
	"sort"

	"golang-backtest/internal/dto"
)

// Engine generations. Each is a pure configuration delta over the style base;
// there is exactly one execution loop.
const (
	VersionV46 = "v4.6"
	VersionV50 = "v5.0"
	VersionV55 = "v5.5"
	VersionV60 = "v6.0"
	VersionV61 = "v6.1"
)

// DefaultVersion is served when a request leaves the version empty.
const DefaultVersion = VersionV61

// Registry resolves (style, version) to a Policy. Immutable after New.
type Registry struct {
	policies map[string]Policy
}

func key(style dto.TradingStyle, version string) string {
	return string(style) + "/" + version
}

// NewRegistry builds the full generation table for every style.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	for _, style := range []dto.TradingStyle{dto.StyleDayTrading, dto.StyleSwing, dto.StyleInvestor} {
		base := baseFor(style)
		for _, version := range Versions() {
			p := applyGeneration(base, version)
			p.Version = version
			r.policies[key(style, version)] = p
		}
	}
	return r
}

// Versions lists the known generations, oldest first.
func Versions() []string {
	return []string{VersionV46, VersionV50, VersionV55, VersionV60, VersionV61}
}

// Resolve returns the policy for a style/version pair. Empty version selects
// the default generation.
func (r *Registry) Resolve(style dto.TradingStyle, version string) (Policy, error) {
	if version == "" {
		version = DefaultVersion
	}
	p, ok := r.policies[key(style, version)]
	if !ok {
		return Policy{}, fmt.Errorf("unknown engine generation %q for style %q", version, style)
	}
	return p, nil
}

// Known returns every registered style/version key, sorted, for diagnostics.
func (r *Registry) Known() []string {
	out := make([]string, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// baseFor is the style baseline every generation starts from.
func baseFor(style dto.TradingStyle) Policy {
	switch style {
	case dto.StyleDayTrading:
		return Policy{
			Style:               style,
			MinConfidence:       55,
			MinStructureScore:   40,
			MinTrendStrength:    35,
			MinVolumeScore:      25,
			MinRiskReward:       1.5,
			HighVolMinStructure: 60,
			BOSDisplacementATR:  0.5,
			CHoCHRangeATR:       0.8,
			OBMinVolumeFraction: 0.5,
			OBMaxWickRatio:      0.7,
			RiskPerTradePct:     0.01,
			SlippagePct:         0.0005,
			SpreadPct:           0.0003,
			MaxHoldBars:         32,
			TrailingATRMult:     1.5,
			BreakevenAtR:        1.0,
			BreakevenBuffer:     0.1,
			EnableTrailing:      true,
			EnableBreakeven:     true,
			EnableStructural:    true,
			VolumeCollapseZ:     -1.5,
		}
	case dto.StyleSwing:
		return Policy{
			Style:               style,
			MinConfidence:       50,
			MinStructureScore:   35,
			MinTrendStrength:    30,
			MinVolumeScore:      20,
			MinRiskReward:       1.8,
			HighVolMinStructure: 55,
			BOSDisplacementATR:  0.4,
			CHoCHRangeATR:       0.7,
			OBMinVolumeFraction: 0.4,
			OBMaxWickRatio:      0.75,
			RiskPerTradePct:     0.02,
			SlippagePct:         0.001,
			SpreadPct:           0.0005,
			MaxHoldBars:         20,
			TrailingATRMult:     2.0,
			BreakevenAtR:        1.0,
			BreakevenBuffer:     0.15,
			EnableTrailing:      true,
			EnableBreakeven:     true,
			EnableStructural:    true,
			VolumeCollapseZ:     -1.5,
		}
	default: // investor
		return Policy{
			Style:               style,
			MinConfidence:       45,
			MinStructureScore:   30,
			MinTrendStrength:    30,
			MinVolumeScore:      10,
			MinRiskReward:       2.0,
			HighVolMinStructure: 50,
			BOSDisplacementATR:  0.3,
			CHoCHRangeATR:       0.6,
			OBMinVolumeFraction: 0.3,
			OBMaxWickRatio:      0.8,
			AllocationPct:       0.10,
			SlippagePct:         0.001,
			SpreadPct:           0.0005,
			MaxHoldBars:         250,
			TrailingATRMult:     3.0,
			BreakevenAtR:        1.5,
			BreakevenBuffer:     0.2,
			EnableTrailing:      false,
			EnableBreakeven:     true,
			EnableStructural:    true,
			VolumeCollapseZ:     -2.0,
		}
	}
}

// applyGeneration layers one generation's deltas over the style base. The
// history mirrors how the strategy was actually tuned: later generations
// tighten quality floors and add the liquidity override instead of raising
// the raw confidence bar.
func applyGeneration(p Policy, version string) Policy {
	switch version {
	case VersionV46:
		// first gated generation: confidence floor only, loose quality checks
		p.MinConfidence -= 5
		p.MinStructureScore -= 10
		p.BOSDisplacementATR = 0
		p.CHoCHRangeATR = 0
		p.OBMinVolumeFraction = 0
		p.OBMaxWickRatio = 1
		p.LiquidityOverride = false
		p.EnableTrailing = false
	case VersionV50:
		// structural displacement checks introduced
		p.MinStructureScore -= 5
		p.OBMinVolumeFraction = 0
		p.OBMaxWickRatio = 1
		p.LiquidityOverride = false
	case VersionV55:
		// order block quality checks introduced, trailing enabled everywhere
		p.LiquidityOverride = false
		p.EnableTrailing = true
	case VersionV60:
		// liquidity override introduced, risk/reward floor raised
		p.LiquidityOverride = true
		p.OverrideMinStructure = p.MinStructureScore + 25
		p.MinRiskReward += 0.2
	case VersionV61:
		// current generation: override retained, high-volatility rule tightened
		p.LiquidityOverride = true
		p.OverrideMinStructure = p.MinStructureScore + 20
		p.MinRiskReward += 0.2
		p.HighVolMinStructure += 5
	}
	return p
}
