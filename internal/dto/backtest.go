package dto

import "time"

// BacktestRequest starts a batch run over one or more symbols.
type BacktestRequest struct {
	EngineStyle   TradingStyle `json:"engine_style" validate:"required"`
	EngineVersion string       `json:"engine_version"`
	HorizonDays   int          `json:"horizon_days" validate:"gte=0"`
	Symbols       []string     `json:"symbols" validate:"required,min=1,dive,required"`
	Exchange      string       `json:"exchange"`
}

// TradeRecord is immutable once the position closes.
type TradeRecord struct {
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Direction  Direction `json:"direction"`
	Size       float64   `json:"size"`
	RMultiple  float64   `json:"r_multiple"`
	PnL        float64   `json:"pnl"`
	Win        bool      `json:"win"`
	ExitReason string    `json:"exit_reason"`
	HoldBars   int       `json:"hold_bars"`
}

// EquityPoint is one equity-curve sample, appended per simulated bar advance.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   float64   `json:"balance"`
}

// ExecutionResult is the complete, reproducible output of one run for one
// symbol/style/engine-version triple.
type ExecutionResult struct {
	Trades          []TradeRecord  `json:"trades"`
	EquityCurve     []EquityPoint  `json:"equity_curve"`
	TotalSignals    int            `json:"total_signals"`
	FilteredSignals int            `json:"filtered_signals"`
	FilterReasons   map[string]int `json:"filter_reasons"`
}

// BacktestStats reduces a trade list and equity curve into summary metrics.
type BacktestStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgR          float64 `json:"avg_r"`
	TotalPnL      float64 `json:"total_pnl"`
	ProfitFactor  float64 `json:"profit_factor"`
	MaxDrawdown   float64 `json:"max_drawdown"` // fraction, 0.12 = 12% peak to trough
	BestTradeR    float64 `json:"best_trade_r"`
	WorstTradeR   float64 `json:"worst_trade_r"`
	FinalBalance  float64 `json:"final_balance"`
}

// SymbolResult is the per-symbol section of a batch response. Error is set
// when the symbol's run aborted; sibling symbols are unaffected.
type SymbolResult struct {
	Symbol        string          `json:"symbol"`
	Style         TradingStyle    `json:"style"`
	EngineVersion string          `json:"engine_version"`
	TimeframeUsed string          `json:"timeframe_used"`
	BarsLoaded    int             `json:"bars_loaded"`
	Stats         BacktestStats   `json:"stats"`
	EquityCurve   []EquityPoint   `json:"equity_curve"`
	Trades        []TradeRecord   `json:"trades"`
	TotalSignals  int             `json:"total_signals"`
	FilterReasons map[string]int  `json:"filter_reasons"`
	Anomalies     []string        `json:"anomalies"`
	FallbackUsed  bool            `json:"fallback_used"`
	Error         string          `json:"error,omitempty"`
}

// BatchSummary aggregates a batch across its successful symbols.
type BatchSummary struct {
	Symbols       int     `json:"symbols"`
	Failed        int     `json:"failed"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	WinRate       float64 `json:"win_rate"` // percent, same scale as the per-symbol stats
	AvgR          float64 `json:"avg_r"`
	TotalPnL      float64 `json:"total_pnl"`
	BestSymbol    string  `json:"best_symbol,omitempty"`
	WorstSymbol   string  `json:"worst_symbol,omitempty"`
}

// BacktestResponse is the batch response returned to the delivery layer.
type BacktestResponse struct {
	EngineStyle   TradingStyle   `json:"engine_style"`
	EngineVersion string         `json:"engine_version"`
	HorizonDays   int            `json:"horizon_days"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Summary       BatchSummary   `json:"summary"`
	Results       []SymbolResult `json:"results"`
}
