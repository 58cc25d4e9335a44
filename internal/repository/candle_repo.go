package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
)

// CandleRepository routes series requests to the right exchange client and
// layers an in-memory cache on top so a batch run fetches each series once.
type CandleRepository interface {
	GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error)
	GetFundamentals(ctx context.Context, symbol string) (*dto.FundamentalSnapshot, error)
}

type candleRepository struct {
	binanceRepo BinanceRepository
	yahooRepo   YahooFinanceRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      *logger.Logger
}

func NewCandleRepository(cfg *config.Config, binanceRepo BinanceRepository, yahooRepo YahooFinanceRepository, memCache cache.Cache, log *logger.Logger) CandleRepository {
	return &candleRepository{
		binanceRepo: binanceRepo,
		yahooRepo:   yahooRepo,
		cache:       memCache,
		cacheTTL:    cfg.Backtest.CandleCacheTTL,
		logger:      log,
	}
}

func (r *candleRepository) GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error) {
	key := fmt.Sprintf(common.KEY_CANDLE_SERIES, param.Exchange, param.Symbol, param.Timeframe, param.HorizonDays)
	if cached, found := r.cache.Get(key); found {
		if bars, ok := cached.([]dto.Candle); ok {
			if err := ensureMinBars(param, len(bars)); err != nil {
				return nil, err
			}
			return bars, nil
		}
	}

	var (
		bars []dto.Candle
		err  error
	)
	if param.Exchange == common.EXCHANGE_BINANCE {
		bars, err = r.binanceRepo.GetBars(ctx, param)
	} else {
		bars, err = r.yahooRepo.GetBars(ctx, param)
	}
	if err != nil {
		return nil, err
	}

	bars = normalize(bars)
	r.logger.Debug("Fetched candle series",
		logger.StringField("symbol", param.Symbol),
		logger.StringField("timeframe", param.Timeframe),
		logger.IntField("bars", len(bars)))

	// the series is cached either way; the floor belongs to the request, not
	// the cache entry
	r.cache.Set(key, bars, r.cacheTTL)
	if err := ensureMinBars(param, len(bars)); err != nil {
		return nil, err
	}
	return bars, nil
}

// ensureMinBars enforces the caller's per-timeframe floor with a typed error
// so callers can tell short history apart from transport failures.
func ensureMinBars(param dto.GetCandleParam, count int) error {
	if param.MinBars > 0 && count < param.MinBars {
		return &InsufficientDataError{
			Symbol:    param.Symbol,
			Timeframe: param.Timeframe,
			Count:     count,
			Min:       param.MinBars,
		}
	}
	return nil
}

func (r *candleRepository) GetFundamentals(ctx context.Context, symbol string) (*dto.FundamentalSnapshot, error) {
	key := fmt.Sprintf(common.KEY_FUNDAMENTALS, symbol)
	if cached, found := r.cache.Get(key); found {
		if snap, ok := cached.(*dto.FundamentalSnapshot); ok {
			return snap, nil
		}
	}

	snap, err := r.yahooRepo.GetFundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, snap, r.cacheTTL)
	return snap, nil
}

// normalize sorts ascending by open time and drops duplicate timestamps,
// keeping the last occurrence. Providers occasionally resend the most recent
// bar when pagination windows overlap.
func normalize(bars []dto.Candle) []dto.Candle {
	if len(bars) < 2 {
		return bars
	}
	sorted := sort.SliceIsSorted(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	if !sorted {
		sort.SliceStable(bars, func(i, j int) bool {
			return bars[i].Timestamp.Before(bars[j].Timestamp)
		})
	}

	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(b.Timestamp) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
