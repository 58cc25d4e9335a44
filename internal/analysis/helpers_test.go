package analysis

import (
	"time"

	"golang-backtest/internal/dto"
)

var testEpoch = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func bar(i int, o, h, l, c, v float64) dto.Candle {
	return dto.Candle{
		Timestamp: testEpoch.Add(time.Duration(i) * time.Hour),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}
}

// flatBars produces n identical bars around price with the given high-low range.
func flatBars(n int, price, rng float64) []dto.Candle {
	out := make([]dto.Candle, n)
	for i := range out {
		out[i] = bar(i, price, price+rng/2, price-rng/2, price, 1000)
	}
	return out
}

// trendBars produces n bars whose close rises by step each bar.
func trendBars(n int, start, step float64) []dto.Candle {
	out := make([]dto.Candle, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = bar(i, c-step/2, c+1, c-1, c, 1000)
	}
	return out
}
