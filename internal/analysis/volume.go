package analysis

import (
	"math"

	"golang-backtest/internal/dto"
)

// VolumeConfig tunes spike and sustained-participation scoring.
type VolumeConfig struct {
	Period        int     // rolling mean/std window
	SpikeZScore   float64 // z-score at which a bar counts as a spike
	ClimaxZScore  float64 // z-score treated as a volume climax
	SustainedMult float64 // ratio to rolling mean for sustained participation
	SustainedBars int     // trailing bars inspected for sustained volume
	SpikeWindow   int     // trailing bars inspected for spikes
}

func DefaultVolumeConfig() VolumeConfig {
	return VolumeConfig{
		Period:        20,
		SpikeZScore:   2.0,
		ClimaxZScore:  3.0,
		SustainedMult: 1.2,
		SustainedBars: 5,
		SpikeWindow:   10,
	}
}

// VolumeEngine scores participation from spikes and sustained above-mean
// volume on the primary series.
type VolumeEngine struct {
	cfg VolumeConfig
}

func NewVolumeEngine(cfg VolumeConfig) *VolumeEngine {
	return &VolumeEngine{cfg: cfg}
}

// Analyze reads bars up to and including evalIdx.
func (e *VolumeEngine) Analyze(bars []dto.Candle, evalIdx int) dto.VolumeReport {
	report := dto.VolumeReport{}
	if evalIdx < 0 || evalIdx >= len(bars) {
		return report
	}
	series := bars[:evalIdx+1]
	if len(series) < e.cfg.Period+1 {
		return report
	}

	vol := make([]float64, len(series))
	for i, b := range series {
		vol[i] = b.Volume
	}
	mean, std := MeanStd(vol, e.cfg.Period)

	last := len(vol) - 1
	if !math.IsNaN(std[last]) && std[last] > 0 {
		report.LastZScore = (vol[last] - mean[last]) / std[last]
	}

	spikeStart := last - e.cfg.SpikeWindow + 1
	if spikeStart < 0 {
		spikeStart = 0
	}
	for i := spikeStart; i <= last; i++ {
		if math.IsNaN(std[i]) || std[i] == 0 {
			continue
		}
		z := (vol[i] - mean[i]) / std[i]
		if z >= e.cfg.SpikeZScore {
			report.SpikeCount++
		}
	}
	report.Climax = report.LastZScore >= e.cfg.ClimaxZScore

	sustStart := last - e.cfg.SustainedBars + 1
	if sustStart < 0 {
		sustStart = 0
	}
	above := 0
	for i := sustStart; i <= last; i++ {
		if math.IsNaN(mean[i]) || mean[i] == 0 {
			continue
		}
		if vol[i] >= mean[i]*e.cfg.SustainedMult {
			above++
			report.SustainedBars++
		}
	}
	span := last - sustStart + 1
	if span > 0 {
		report.AboveMeanRatio = float64(above) / float64(span)
	}

	medStart := last - e.cfg.Period + 1
	if medStart < 0 {
		medStart = 0
	}
	report.MedianVolume = Median(vol[medStart : last+1])

	spikeScore := Clamp01(float64(report.SpikeCount)/3.0) * 40
	zScore := Clamp01(report.LastZScore/e.cfg.ClimaxZScore) * 30
	sustainedScore := report.AboveMeanRatio * 30
	report.Score = Clamp100(spikeScore + zScore + sustainedScore)
	return report
}
