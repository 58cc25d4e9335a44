package simulation

import (
	"testing"
	"time"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"
)

var simEpoch = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func dayBar(i int, o, h, l, c, v float64) dto.Candle {
	return dto.Candle{
		Timestamp: simEpoch.AddDate(0, 0, i),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}
}

// risingSeries is a smooth daily uptrend: no swings, no structure events, a
// clean long trend bias.
func risingSeries(n int, start, step float64) []dto.Candle {
	out := make([]dto.Candle, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = dayBar(i, c-step/2, c+1, c-1, c, 1000)
	}
	return out
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}
