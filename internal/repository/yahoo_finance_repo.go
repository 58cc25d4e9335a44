package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/httpclient"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/ratelimit"
)

// YahooFinanceRepository fetches chart bars and the optional fundamentals
// snapshot from the Yahoo Finance v8/v10 endpoints.
type YahooFinanceRepository interface {
	GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error)
	GetFundamentals(ctx context.Context, symbol string) (*dto.FundamentalSnapshot, error)
}

type yahooFinanceRepository struct {
	httpClient   httpclient.HTTPClient
	cfg          *config.Config
	logger       *logger.Logger
	tokenLimiter *ratelimit.TokenLimiter
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	return &yahooFinanceRepository{
		httpClient:   httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout),
		cfg:          cfg,
		logger:       log,
		tokenLimiter: ratelimit.NewTokenLimiter(cfg.YahooFinance.MaxRequestPerMinute),
	}
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://finance.yahoo.com/",
}

// GetBars fetches the chart series for one timeframe. Yahoo has no native
// 4-hour interval, so that timeframe is fetched hourly and resampled.
func (r *yahooFinanceRepository) GetBars(ctx context.Context, param dto.GetCandleParam) ([]dto.Candle, error) {
	interval := param.Timeframe
	resampleTo := 0
	if interval == dto.Timeframe4Hour {
		interval = dto.Timeframe1Hour
		resampleTo = 4
	}

	if err := r.tokenLimiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	period2 := time.Now().Unix()
	period1 := time.Now().AddDate(0, 0, -param.HorizonDays).Unix()

	endpoint := "/v8/finance/chart/" + param.Symbol
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       interval,
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, browserHeaders, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Yahoo Finance API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}
	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", chartResp.Chart.Error)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Symbol)
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Symbol)
	}
	bars := quoteBars(result.Timestamp, result.Indicators.Quote[0])

	if resampleTo > 1 {
		bars = Resample(bars, resampleTo)
	}
	return bars, nil
}

// quoteBars converts Yahoo's column-oriented quote block into candles. Each
// OHLC slice is bounds-checked on its own: the API pads them independently,
// so a ragged response must drop the row rather than panic.
func quoteBars(timestamps []int64, quote dto.YahooQuote) []dto.Candle {
	bars := make([]dto.Candle, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}
		// rows with missing values are common on halted sessions
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		var volume float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		bars = append(bars, dto.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    volume,
		})
	}
	return bars
}

// GetFundamentals fetches the valuation/quality snapshot used by the investor
// style. A failed fetch degrades gracefully at the call site.
func (r *yahooFinanceRepository) GetFundamentals(ctx context.Context, symbol string) (*dto.FundamentalSnapshot, error) {
	if err := r.tokenLimiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	endpoint := "/v10/finance/quoteSummary/" + symbol
	queryParams := map[string]string{
		"modules": "summaryDetail,defaultKeyStatistics,financialData",
	}

	var quoteResp dto.YahooQuoteSummaryResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, browserHeaders, &quoteResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals from yahoo finance: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance quote summary returned status: %d", resp.StatusCode)
	}
	if quoteResp.QuoteSummary.Error != nil || len(quoteResp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals available for symbol: %s", symbol)
	}

	res := quoteResp.QuoteSummary.Result[0]
	return &dto.FundamentalSnapshot{
		Symbol:         symbol,
		TrailingPE:     res.SummaryDetail.TrailingPE.Raw,
		ForwardPE:      res.SummaryDetail.ForwardPE.Raw,
		PriceToBook:    res.DefaultKeyStatistics.PriceToBook.Raw,
		ReturnOnEquity: res.FinancialData.ReturnOnEquity.Raw,
		DebtToEquity:   res.FinancialData.DebtToEquity.Raw,
		EarningsGrowth: res.FinancialData.EarningsGrowth.Raw,
	}, nil
}

// Resample aggregates consecutive bars n-to-1, anchored at the first bar of
// each group. A trailing partial group is dropped so every output bar is a
// closed candle.
func Resample(bars []dto.Candle, n int) []dto.Candle {
	if n <= 1 {
		return bars
	}
	if len(bars) < n {
		return bars[:0:0]
	}
	out := make([]dto.Candle, 0, len(bars)/n)
	for i := 0; i+n <= len(bars); i += n {
		agg := bars[i]
		for j := i + 1; j < i+n; j++ {
			if bars[j].High > agg.High {
				agg.High = bars[j].High
			}
			if bars[j].Low < agg.Low {
				agg.Low = bars[j].Low
			}
			agg.Volume += bars[j].Volume
		}
		agg.Close = bars[i+n-1].Close
		out = append(out, agg)
	}
	return out
}
