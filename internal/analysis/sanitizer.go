package analysis

import (
	"fmt"
	"math"
	"sort"

	"golang-backtest/internal/dto"
)

// SanitizeResult is the cleaned series plus everything the caller needs to
// decide whether the run may proceed.
type SanitizeResult struct {
	Candles      []dto.Candle
	Anomalies    []string
	Insufficient bool
	MinBars      int
}

// Sanitize validates a raw bar sequence for a trading style. Invalid bars are
// dropped, never repaired. The input slice is not modified. Timestamp
// uniqueness is the upstream merge step's responsibility; only ordering is
// enforced here.
func Sanitize(raw []dto.Candle, style dto.TradingStyle) SanitizeResult {
	cleaned := make([]dto.Candle, 0, len(raw))
	invalid := 0
	zeroVolume := 0

	for _, c := range raw {
		if !validBar(c) {
			invalid++
			continue
		}
		if c.Volume == 0 {
			zeroVolume++
		}
		cleaned = append(cleaned, c)
	}

	if !sort.SliceIsSorted(cleaned, func(i, j int) bool {
		return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
	}) {
		sort.SliceStable(cleaned, func(i, j int) bool {
			return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
		})
	}

	res := SanitizeResult{
		Candles: cleaned,
		MinBars: style.MinBars(),
	}
	if invalid > 0 {
		res.Anomalies = append(res.Anomalies, fmt.Sprintf("invalid_ohlc_bars:%d", invalid))
	}
	if zeroVolume > 0 {
		res.Anomalies = append(res.Anomalies, fmt.Sprintf("zero_volume_bars:%d", zeroVolume))
	}
	if len(cleaned) < res.MinBars {
		res.Insufficient = true
		res.Anomalies = append(res.Anomalies, fmt.Sprintf("insufficient_bars:%d/%d", len(cleaned), res.MinBars))
	}
	return res
}

func validBar(c dto.Candle) bool {
	if c.Timestamp.IsZero() {
		return false
	}
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if c.Volume < 0 || math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) {
		return false
	}
	if c.High < c.Low {
		return false
	}
	return true
}
