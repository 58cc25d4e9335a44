package analysis

import (
	"math"

	"golang-backtest/internal/dto"
)

// Rolling indicator primitives shared by the engines. All functions return
// slices aligned to the input length with NaN over the warmup region so that
// callers never mistake warmup for a real reading.

// SMA over the last p points.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// EMA with standard smoothing 2/(p+1), seeded with SMA(p).
func EMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	if len(x) < p {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	k := 2.0 / float64(p+1)
	var seed float64
	for i := 0; i < p; i++ {
		seed += x[i]
	}
	seed /= float64(p)
	for i := 0; i < p-1; i++ {
		out[i] = math.NaN()
	}
	out[p-1] = seed
	for i := p; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// MeanStd computes rolling population mean and standard deviation over window p.
func MeanStd(x []float64, p int) (mean, std []float64) {
	if p <= 0 {
		return nil, nil
	}
	n := len(x)
	mean = make([]float64, n)
	std = make([]float64, n)

	var sum, sum2 float64
	for i := 0; i < n; i++ {
		sum += x[i]
		sum2 += x[i] * x[i]
		if i < p-1 {
			mean[i] = math.NaN()
			std[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
			sum2 -= x[i-p] * x[i-p]
		}
		m := sum / float64(p)
		v := sum2/float64(p) - m*m
		if v < 0 {
			v = 0 // numerical noise on near-constant input
		}
		mean[i] = m
		std[i] = math.Sqrt(v)
	}
	return mean, std
}

// TrueRange of bar i given the previous close. For the first bar of a series
// the high-low range is used.
func TrueRange(cur dto.Candle, prevClose float64, first bool) float64 {
	hl := cur.High - cur.Low
	if first {
		return hl
	}
	hc := math.Abs(cur.High - prevClose)
	lc := math.Abs(cur.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATRSeq computes the Wilder-smoothed average true range over period p,
// aligned to the input with NaN warmup.
func ATRSeq(bars []dto.Candle, p int) []float64 {
	n := len(bars)
	if p <= 0 || n == 0 {
		return nil
	}
	out := make([]float64, n)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = TrueRange(bars[i], 0, true)
		} else {
			tr[i] = TrueRange(bars[i], bars[i-1].Close, false)
		}
	}
	if n < p {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	var seed float64
	for i := 0; i < p; i++ {
		seed += tr[i]
		if i < p-1 {
			out[i] = math.NaN()
		}
	}
	out[p-1] = seed / float64(p)
	for i := p; i < n; i++ {
		out[i] = (out[i-1]*float64(p-1) + tr[i]) / float64(p)
	}
	return out
}

// ATRAt returns the ATR(p) reading at index idx, 0 when still in warmup.
func ATRAt(bars []dto.Candle, p, idx int) float64 {
	if idx < 0 || idx >= len(bars) {
		return 0
	}
	seq := ATRSeq(bars[:idx+1], p)
	v := seq[idx]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Median of a value slice; the input is not modified.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	cp := make([]float64, len(x))
	copy(cp, x)
	// insertion sort, windows are small
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j] < cp[j-1]; j-- {
			cp[j], cp[j-1] = cp[j-1], cp[j]
		}
	}
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}

func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func Clamp100(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
