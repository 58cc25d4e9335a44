package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/httpclient"
	"golang-backtest/pkg/logger"

	"golang.org/x/time/rate"
)

const binanceMaxKlines = 1000

// BinanceRepository fetches klines from the Binance public API.
type BinanceRepository interface {
	GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error)
}

type binanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewBinanceRepository(cfg *config.Config, log *logger.Logger) BinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Binance.MaxRequestPerMinute)
	return &binanceRepository{
		httpClient:     httpclient.New(cfg.Binance.BaseURL, cfg.Binance.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

// GetBars pages backward through /api/v3/klines until the horizon is covered.
// Bars come back sorted ascending by open time.
func (r *binanceRepository) GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error) {
	endTime := time.Now().UnixMilli()
	startTime := time.Now().AddDate(0, 0, -param.HorizonDays).UnixMilli()

	var out []dto.Candle
	cursor := startTime
	for cursor < endTime {
		batch, err := r.getKlines(ctx, param.Symbol, param.Timeframe, binanceMaxKlines, cursor, endTime)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
		next := batch[len(batch)-1].Timestamp.UnixMilli() + 1
		if next <= cursor {
			break
		}
		cursor = next
		if len(batch) < binanceMaxKlines {
			break
		}
	}
	return out, nil
}

func (r *binanceRepository) getKlines(ctx context.Context, symbol, interval string, limit int, startTime, endTime int64) ([]dto.Candle, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/api/v3/klines"
	queryParams := map[string]string{
		"symbol":    symbol,
		"interval":  interval,
		"limit":     strconv.Itoa(limit),
		"startTime": strconv.FormatInt(startTime, 10),
		"endTime":   strconv.FormatInt(endTime, 10),
	}

	var klines [][]interface{}
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, nil, &klines)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines from binance: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Binance API returned Non-OK status for klines",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("binance api returned status: %d", resp.StatusCode)
	}

	result := make([]dto.Candle, 0, len(klines))
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}
		openTime, _ := k[0].(float64)
		open, _ := strconv.ParseFloat(asString(k[1]), 64)
		high, _ := strconv.ParseFloat(asString(k[2]), 64)
		low, _ := strconv.ParseFloat(asString(k[3]), 64)
		closePrice, _ := strconv.ParseFloat(asString(k[4]), 64)
		volume, _ := strconv.ParseFloat(asString(k[5]), 64)

		result = append(result, dto.Candle{
			Timestamp: time.UnixMilli(int64(openTime)).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}
	return result, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
