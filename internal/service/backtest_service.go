package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/analysis"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/gate"
	"golang-backtest/internal/helper"
	"golang-backtest/internal/model"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/simulation"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

type BacktestService interface {
	Run(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResponse, error)
	History(ctx context.Context, param model.ListBacktestRunParam) ([]model.BacktestRun, error)
	PruneHistory(ctx context.Context, olderThan time.Time) (int64, error)
}

type backtestService struct {
	cfg        *config.Config
	log        *logger.Logger
	candleRepo repository.CandleRepository
	runRepo    repository.BacktestRunRepository
	registry   *gate.Registry
}

func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	candleRepo repository.CandleRepository,
	runRepo repository.BacktestRunRepository,
) BacktestService {
	return &backtestService{
		cfg:        cfg,
		log:        log,
		candleRepo: candleRepo,
		runRepo:    runRepo,
		registry:   gate.NewRegistry(),
	}
}

// Run executes the batch: every symbol gets its own runner so symbol runs are
// independent; one symbol failing never aborts its siblings.
func (s *backtestService) Run(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResponse, error) {
	if !req.EngineStyle.Valid() {
		return nil, fmt.Errorf("unknown engine style: %q", req.EngineStyle)
	}

	version := req.EngineVersion
	if version == "" {
		version = s.cfg.Backtest.DefaultVersion
	}
	policy, err := s.registry.Resolve(req.EngineStyle, version)
	if err != nil {
		return nil, err
	}

	exchange := req.Exchange
	if exchange == "" {
		exchange = common.EXCHANGE_BINANCE
	}
	horizonDays := req.HorizonDays
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays(req.EngineStyle)
	}

	resp := &dto.BacktestResponse{
		EngineStyle:   req.EngineStyle,
		EngineVersion: version,
		HorizonDays:   horizonDays,
		StartedAt:     time.Now().UTC(),
		Results:       make([]dto.SymbolResult, len(req.Symbols)),
	}

	s.log.InfoContext(ctx, "Starting backtest batch",
		logger.StringField("style", string(req.EngineStyle)),
		logger.StringField("version", version),
		logger.IntField("symbols", len(req.Symbols)),
		logger.IntField("max_concurrency", s.cfg.Backtest.MaxConcurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Backtest.MaxConcurrency)

	for i, symbol := range req.Symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			resp.Results[i] = s.runSymbol(gctx, symbol, exchange, horizonDays, req.EngineStyle, version, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	resp.FinishedAt = time.Now().UTC()
	resp.Summary = helper.CalculateBatchSummary(ctx, s.log, resp.Results)

	if s.cfg.Backtest.PersistResults && s.runRepo != nil {
		if err := s.persist(ctx, exchange, horizonDays, resp); err != nil {
			s.log.ErrorContext(ctx, "Failed to persist backtest results", logger.ErrorField(err))
		}
	}
	return resp, nil
}

// runSymbol is the whole per-symbol pipeline: fetch, sanitize, simulate,
// summarize. Errors land in the result instead of propagating.
func (s *backtestService) runSymbol(
	ctx context.Context,
	symbol, exchange string,
	horizonDays int,
	style dto.TradingStyle,
	version string,
	policy gate.Policy,
) dto.SymbolResult {
	primaryTF := style.PrimaryTimeframe()
	res := dto.SymbolResult{
		Symbol:        symbol,
		Style:         style,
		EngineVersion: version,
		TimeframeUsed: primaryTF,
	}

	if !utils.ShouldContinue(ctx, s.log) {
		res.Error = ctx.Err().Error()
		return res
	}

	raw, err := s.candleRepo.GetBars(ctx, dto.GetCandleParam{
		Symbol:      symbol,
		Exchange:    exchange,
		Timeframe:   primaryTF,
		HorizonDays: horizonDays,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	sanitized := analysis.Sanitize(raw, style)
	res.Anomalies = sanitized.Anomalies
	res.BarsLoaded = len(sanitized.Candles)
	if sanitized.Insufficient {
		insufficientErr := &repository.InsufficientDataError{
			Symbol:    symbol,
			Timeframe: primaryTF,
			Count:     len(sanitized.Candles),
			Min:       sanitized.MinBars,
		}
		res.Error = insufficientErr.Error()
		return res
	}
	primary := sanitized.Candles

	tfData := dto.TimeframeData{primaryTF: primary}
	for _, tf := range style.AuxTimeframes() {
		bars, err := s.candleRepo.GetBars(ctx, dto.GetCandleParam{
			Symbol:      symbol,
			Exchange:    exchange,
			Timeframe:   tf,
			HorizonDays: horizonDays,
			MinBars:     analysis.MinTrendBars(tf),
		})
		if err != nil || len(bars) == 0 {
			// degrade to the primary series so the trend engine still has
			// something to read on that slot
			msg := "Aux timeframe unavailable, using primary series as fallback"
			if repository.IsInsufficientData(err) {
				msg = "Aux timeframe history too short, using primary series as fallback"
			}
			s.log.WarnContext(ctx, msg,
				logger.StringField("symbol", symbol),
				logger.StringField("timeframe", tf),
				logger.ErrorField(err))
			tfData[tf] = primary
			res.FallbackUsed = true
			continue
		}
		tfData[tf] = bars
	}

	var fundamental *dto.FundamentalSnapshot
	if style == dto.StyleInvestor {
		fundamental, err = s.candleRepo.GetFundamentals(ctx, symbol)
		if err != nil {
			s.log.WarnContext(ctx, "Fundamentals unavailable, continuing without",
				logger.StringField("symbol", symbol),
				logger.ErrorField(err))
			fundamental = nil
		}
	}

	runner := simulation.NewRunner(s.log, policy, style, simulation.Options{
		InitialBalance: simulation.DefaultInitialBalance,
	})
	execResult, err := runner.Run(ctx, primary, tfData, fundamental)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Stats = simulation.Summarize(execResult, simulation.DefaultInitialBalance)
	res.EquityCurve = execResult.EquityCurve
	res.Trades = execResult.Trades
	res.TotalSignals = execResult.TotalSignals
	res.FilterReasons = execResult.FilterReasons

	s.log.InfoContext(ctx, "Symbol backtest finished",
		logger.StringField("symbol", symbol),
		logger.IntField("bars", res.BarsLoaded),
		logger.IntField("trades", res.Stats.TotalTrades),
		logger.IntField("signals", res.TotalSignals),
		logger.StringField("win_rate", utils.FormatPercentage(res.Stats.WinRate)),
		logger.Float64Field("final_balance", res.Stats.FinalBalance))
	return res
}

func (s *backtestService) History(ctx context.Context, param model.ListBacktestRunParam) ([]model.BacktestRun, error) {
	if s.runRepo == nil {
		return nil, fmt.Errorf("run history requires a database connection")
	}
	return s.runRepo.List(ctx, param)
}

// PruneHistory deletes persisted runs created before olderThan and returns
// the number of rows removed.
func (s *backtestService) PruneHistory(ctx context.Context, olderThan time.Time) (int64, error) {
	if s.runRepo == nil {
		return 0, fmt.Errorf("run history requires a database connection")
	}
	return s.runRepo.DeleteOlderThan(ctx, olderThan)
}

func (s *backtestService) persist(ctx context.Context, exchange string, horizonDays int, resp *dto.BacktestResponse) error {
	runs := make([]model.BacktestRun, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Error != "" {
			continue
		}
		stats, err := json.Marshal(r.Stats)
		if err != nil {
			return err
		}
		trades, err := json.Marshal(r.Trades)
		if err != nil {
			return err
		}
		reasons, err := json.Marshal(r.FilterReasons)
		if err != nil {
			return err
		}
		anomalies, err := json.Marshal(r.Anomalies)
		if err != nil {
			return err
		}
		runs = append(runs, model.BacktestRun{
			Symbol:        r.Symbol,
			Exchange:      exchange,
			EngineStyle:   string(r.Style),
			EngineVersion: r.EngineVersion,
			Timeframe:     r.TimeframeUsed,
			HorizonDays:   horizonDays,
			BarsLoaded:    r.BarsLoaded,
			FallbackUsed:  r.FallbackUsed,
			Stats:         datatypes.JSON(stats),
			Trades:        datatypes.JSON(trades),
			FilterReasons: datatypes.JSON(reasons),
			Anomalies:     datatypes.JSON(anomalies),
		})
	}
	if len(runs) == 0 {
		return nil
	}
	return s.runRepo.CreateBulk(ctx, runs)
}

// defaultHorizonDays keeps enough history to clear the style's warmup and
// minimum bar requirements.
func defaultHorizonDays(style dto.TradingStyle) int {
	switch style {
	case dto.StyleDayTrading:
		return 30
	case dto.StyleSwing:
		return 365
	default:
		return 1825
	}
}
