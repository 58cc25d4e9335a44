package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

func TestSanitize(t *testing.T) {
	type args struct {
		raw   []dto.Candle
		style dto.TradingStyle
	}
	tests := []struct {
		name             string
		args             args
		wantLen          int
		wantAnomalies    []string
		wantInsufficient bool
	}{
		{
			name:    "clean series passes",
			args:    args{raw: flatBars(50, 100, 2), style: dto.StyleSwing},
			wantLen: 50,
		},
		{
			name: "invalid bars dropped and counted",
			args: args{
				raw: append(flatBars(50, 100, 2),
					bar(50, -1, 101, 99, 100, 1000),
					bar(51, 100, 99, 101, 100, 1000),
					bar(52, 100, 101, 99, math.NaN(), 1000),
				),
				style: dto.StyleSwing,
			},
			wantLen:       50,
			wantAnomalies: []string{"invalid_ohlc_bars:3"},
		},
		{
			name: "zero volume bars kept but flagged",
			args: args{
				raw:   append(flatBars(49, 100, 2), bar(49, 100, 101, 99, 100, 0)),
				style: dto.StyleSwing,
			},
			wantLen:       50,
			wantAnomalies: []string{"zero_volume_bars:1"},
		},
		{
			name:    "exactly the style minimum",
			args:    args{raw: flatBars(40, 100, 2), style: dto.StyleSwing},
			wantLen: 40,
		},
		{
			name:             "below style minimum",
			args:             args{raw: flatBars(39, 100, 2), style: dto.StyleSwing},
			wantLen:          39,
			wantAnomalies:    []string{"insufficient_bars:39/40"},
			wantInsufficient: true,
		},
		{
			name:             "investor needs deeper history",
			args:             args{raw: flatBars(150, 100, 2), style: dto.StyleInvestor},
			wantLen:          150,
			wantAnomalies:    []string{"insufficient_bars:150/200"},
			wantInsufficient: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.args.raw, tt.args.style)
			assert.Len(t, got.Candles, tt.wantLen)
			assert.Equal(t, tt.wantAnomalies, got.Anomalies)
			assert.Equal(t, tt.wantInsufficient, got.Insufficient)
		})
	}
}

func TestSanitizeSortsUnorderedInput(t *testing.T) {
	raw := flatBars(50, 100, 2)
	raw[10], raw[20] = raw[20], raw[10]

	got := Sanitize(raw, dto.StyleSwing)

	for i := 1; i < len(got.Candles); i++ {
		assert.True(t, got.Candles[i].Timestamp.After(got.Candles[i-1].Timestamp))
	}
}

func TestSanitizeDoesNotModifyInput(t *testing.T) {
	raw := flatBars(50, 100, 2)
	raw[0], raw[49] = raw[49], raw[0]
	first := raw[0].Timestamp

	Sanitize(raw, dto.StyleSwing)

	assert.True(t, raw[0].Timestamp.Equal(first))
}

func TestSanitizeIdempotent(t *testing.T) {
	raw := append(flatBars(50, 100, 2), dto.Candle{Timestamp: time.Time{}})
	once := Sanitize(raw, dto.StyleSwing)
	twice := Sanitize(once.Candles, dto.StyleSwing)

	assert.Equal(t, once.Candles, twice.Candles)
	assert.Empty(t, twice.Anomalies)
}
