package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
)

var repoEpoch = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func hourBar(i int, o, h, l, c, v float64) dto.Candle {
	return dto.Candle{
		Timestamp: repoEpoch.Add(time.Duration(i) * time.Hour),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}
}

type stubBinanceRepo struct {
	bars []dto.Candle
	err  error
}

func (s *stubBinanceRepo) GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error) {
	return s.bars, s.err
}

func newTestCandleRepo(t *testing.T, bars []dto.Candle) CandleRepository {
	t.Helper()
	log, err := logger.New("error", "json")
	assert.NoError(t, err)
	cfg := &config.Config{Backtest: config.BacktestConfig{CandleCacheTTL: time.Minute}}
	memCache := cache.NewCache(time.Minute, time.Minute)
	return NewCandleRepository(cfg, &stubBinanceRepo{bars: bars}, nil, memCache, log)
}

func TestGetBarsEnforcesMinimum(t *testing.T) {
	bars := make([]dto.Candle, 0, 10)
	for i := 0; i < 10; i++ {
		bars = append(bars, hourBar(i, 100, 101, 99, 100, 1000))
	}
	param := dto.GetCandleParam{
		Symbol:    "SHORTUSDT",
		Exchange:  common.EXCHANGE_BINANCE,
		Timeframe: dto.Timeframe4Hour,
	}

	t.Run("short series raises a typed error", func(t *testing.T) {
		repo := newTestCandleRepo(t, bars)
		short := param
		short.MinBars = 90

		_, err := repo.GetBars(context.Background(), short)

		assert.True(t, IsInsufficientData(err))
		var insufficientErr *InsufficientDataError
		assert.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "SHORTUSDT", insufficientErr.Symbol)
		assert.Equal(t, dto.Timeframe4Hour, insufficientErr.Timeframe)
		assert.Equal(t, 10, insufficientErr.Count)
		assert.Equal(t, 90, insufficientErr.Min)
	})

	t.Run("floor of zero disables the check", func(t *testing.T) {
		repo := newTestCandleRepo(t, bars)
		got, err := repo.GetBars(context.Background(), param)

		assert.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("cache hit still checked against the caller's floor", func(t *testing.T) {
		repo := newTestCandleRepo(t, bars)
		_, err := repo.GetBars(context.Background(), param)
		assert.NoError(t, err)

		short := param
		short.MinBars = 90
		_, err = repo.GetBars(context.Background(), short)
		assert.True(t, IsInsufficientData(err))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("sorts out of order bars", func(t *testing.T) {
		bars := []dto.Candle{
			hourBar(2, 102, 103, 101, 102, 1000),
			hourBar(0, 100, 101, 99, 100, 1000),
			hourBar(1, 101, 102, 100, 101, 1000),
		}
		got := normalize(bars)

		assert.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].Timestamp.After(got[i-1].Timestamp))
		}
	})

	t.Run("duplicate timestamps keep the last bar", func(t *testing.T) {
		bars := []dto.Candle{
			hourBar(0, 100, 101, 99, 100, 1000),
			hourBar(1, 101, 102, 100, 101, 1000),
			hourBar(1, 101, 105, 100, 104, 2000),
			hourBar(2, 104, 106, 103, 105, 1000),
		}
		got := normalize(bars)

		assert.Len(t, got, 3)
		assert.Equal(t, 104.0, got[1].Close)
		assert.Equal(t, 2000.0, got[1].Volume)
	})

	t.Run("short input passes through", func(t *testing.T) {
		bars := []dto.Candle{hourBar(0, 100, 101, 99, 100, 1000)}
		assert.Len(t, normalize(bars), 1)
		assert.Empty(t, normalize(nil))
	})
}

func TestResample(t *testing.T) {
	bars := []dto.Candle{
		hourBar(0, 100, 104, 99, 101, 1000),
		hourBar(1, 101, 103, 98, 102, 1100),
		hourBar(2, 102, 105, 101, 103, 1200),
		hourBar(3, 103, 106, 102, 104, 1300),
		hourBar(4, 104, 107, 103, 105, 1400),
		hourBar(5, 105, 108, 104, 106, 1500),
		hourBar(6, 106, 109, 105, 107, 1600),
		hourBar(7, 107, 110, 106, 108, 1700),
		hourBar(8, 108, 111, 107, 109, 1800),
	}

	got := Resample(bars, 4)

	// nine hourly bars form two complete 4h bars; the ninth is a partial
	// bucket and is dropped
	assert.Len(t, got, 2)

	first := got[0]
	assert.True(t, first.Timestamp.Equal(bars[0].Timestamp))
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 106.0, first.High)
	assert.Equal(t, 98.0, first.Low)
	assert.Equal(t, 104.0, first.Close)
	assert.Equal(t, 4600.0, first.Volume)

	second := got[1]
	assert.True(t, second.Timestamp.Equal(bars[4].Timestamp))
	assert.Equal(t, 104.0, second.Open)
	assert.Equal(t, 110.0, second.High)
	assert.Equal(t, 103.0, second.Low)
	assert.Equal(t, 108.0, second.Close)
	assert.Equal(t, 6200.0, second.Volume)
}

func TestResampleDegenerateInputs(t *testing.T) {
	bars := []dto.Candle{
		hourBar(0, 100, 101, 99, 100, 1000),
		hourBar(1, 100, 101, 99, 100, 1000),
	}

	assert.Empty(t, Resample(bars, 4), "fewer bars than one bucket")
	assert.Len(t, Resample(bars, 1), 2, "factor one passes through")
	assert.Empty(t, Resample(nil, 4))
}
