package simulation

import (
	"context"
	"math"

	"golang-backtest/internal/analysis"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/gate"
	"golang-backtest/pkg/logger"
)

// DefaultInitialBalance seeds a run when the caller does not set one.
const DefaultInitialBalance = 10_000

// Options tunes a runner beyond its gate policy.
type Options struct {
	InitialBalance float64
	WarmupBars     int
}

// Runner owns every engine and scratch buffer of one symbol's simulation so
// that concurrent symbol runs never share mutable state. The loop is single
// threaded and strictly forward: trades and equity points come out in
// nondecreasing timestamp order.
type Runner struct {
	log        *logger.Logger
	policy     gate.Policy
	style      dto.TradingStyle
	opts       Options
	structure  *analysis.StructureEngine
	trend      *analysis.TrendEngine
	volume     *analysis.VolumeEngine
	volatility *analysis.VolatilityEngine
	selector   *analysis.SignalSelector
}

func NewRunner(log *logger.Logger, policy gate.Policy, style dto.TradingStyle, opts Options) *Runner {
	if opts.InitialBalance <= 0 {
		opts.InitialBalance = DefaultInitialBalance
	}
	if opts.WarmupBars <= 0 {
		opts.WarmupBars = 60
	}
	return &Runner{
		log:        log,
		policy:     policy,
		style:      style,
		opts:       opts,
		structure:  analysis.NewStructureEngine(analysis.DefaultStructureConfig(), analysis.DefaultStructureWeights()),
		trend:      analysis.NewTrendEngine(analysis.DefaultTrendConfig()),
		volume:     analysis.NewVolumeEngine(analysis.DefaultVolumeConfig()),
		volatility: analysis.NewVolatilityEngine(analysis.DefaultVolatilityConfig()),
		selector:   analysis.NewSignalSelector(analysis.DefaultSelectorConfig()),
	}
}

// Run simulates the primary series bar by bar. All external data is fetched
// before this point; the loop itself never suspends.
func (r *Runner) Run(ctx context.Context, primary []dto.Candle, tfData dto.TimeframeData, fundamental *dto.FundamentalSnapshot) (*dto.ExecutionResult, error) {
	result := &dto.ExecutionResult{
		FilterReasons: make(map[string]int),
	}
	counters := gate.NewCounters()
	balance := r.opts.InitialBalance

	var pos *openPosition
	var pending *pendingEntry

	for i := 0; i < len(primary); i++ {
		bar := primary[i]

		// 1. pending entry fills at this bar's open, never the signal bar
		if pos == nil && pending != nil {
			pos = r.openAt(pending, i, bar, balance, counters)
			pending = nil
		}

		// 2. exit evaluation in fixed precedence order
		if pos != nil {
			structReport := r.structure.Analyze(primary, i)
			volReport := r.volume.Analyze(primary, i)
			atr := r.volatility.Analyze(primary, i).ATR

			outcome := checkStructuralExit(r.policy, pos, bar, structReport, volReport)
			if !outcome.exit {
				outcome = checkStopTarget(pos, bar)
			}
			if !outcome.exit && r.policy.MaxHoldBars > 0 && i-pos.entryIndex >= r.policy.MaxHoldBars {
				outcome = exitOutcome{exit: true, rawPrice: bar.Close, reason: dto.ExitReasonMaxHold}
			}

			if outcome.exit {
				balance = r.closeAt(result, pos, bar, outcome, balance, i)
				pos = nil
			} else {
				ratchetStops(r.policy, pos, bar, atr)
			}
		}

		// 3. signal evaluation while flat; the final bar cannot produce an
		// entry because there is no next open to fill at
		if pos == nil && pending == nil && i >= r.opts.WarmupBars && i < len(primary)-1 {
			sig := r.evaluate(primary, tfData, fundamental, i)
			decision := r.policy.Evaluate(sig)
			counters.Record(decision)
			if decision.Accepted {
				pending = &pendingEntry{
					signal:     sig,
					signalIdx:  i,
					orderBlock: nearestOrderBlock(sig),
				}
			}
		}

		// 4. equity sample, mark to market at the bar close
		equity := balance
		if pos != nil {
			equity += pos.unrealized(bar.Close)
		}
		result.EquityCurve = append(result.EquityCurve, dto.EquityPoint{
			Timestamp: bar.Timestamp,
			Balance:   equity,
		})

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// force-close a position left open at the end of the series
	if pos != nil && len(primary) > 0 {
		last := primary[len(primary)-1]
		outcome := exitOutcome{exit: true, rawPrice: last.Close, reason: dto.ExitReasonEndOfData}
		balance = r.closeAt(result, pos, last, outcome, balance, len(primary)-1)
	}

	result.TotalSignals = counters.Total
	result.FilteredSignals = counters.Filtered
	for reason, n := range counters.Reasons {
		result.FilterReasons[reason] = n
	}
	return result, nil
}

// evaluate runs the four engines and the selector at bar index i using only
// bars with index <= i.
func (r *Runner) evaluate(primary []dto.Candle, tfData dto.TimeframeData, fundamental *dto.FundamentalSnapshot, i int) dto.EngineSignal {
	evalTime := primary[i].Timestamp
	in := analysis.SelectorInput{
		Bars:        primary,
		EvalIdx:     i,
		Structure:   r.structure.Analyze(primary, i),
		Trend:       r.trend.Analyze(tfData, evalTime),
		Volume:      r.volume.Analyze(primary, i),
		Volatility:  r.volatility.Analyze(primary, i),
		Fundamental: fundamental,
	}
	return r.selector.Select(in)
}

// openAt turns a pending signal into a live position at the bar open. A zero
// risk distance after the fill adjustment sizes to zero and is counted as a
// rejection instead of opening.
func (r *Runner) openAt(pending *pendingEntry, idx int, bar dto.Candle, balance float64, counters *gate.Counters) *openPosition {
	sig := pending.signal
	entry := fillPrice(r.policy, bar.Open, sig.Direction, true)
	risk := math.Abs(entry - sig.StopLoss)
	size := positionSize(r.policy, r.style, balance, entry, sig.StopLoss)
	if size <= 0 || risk == 0 {
		counters.RecordFillRejection(dto.FilterZeroRiskDistance)
		return nil
	}

	return &openPosition{
		entryIndex:      idx,
		entryTime:       bar.Timestamp,
		entryPrice:      entry,
		initialStop:     sig.StopLoss,
		stopLoss:        sig.StopLoss,
		takeProfit:      sig.TakeProfit,
		direction:       sig.Direction,
		size:            size,
		riskPerUnit:     risk,
		balanceAtEntry:  balance,
		entryOrderBlock: pending.orderBlock,
	}
}

// closeAt finalizes the trade, applies the exit fill adjustment and appends
// the immutable record.
func (r *Runner) closeAt(result *dto.ExecutionResult, pos *openPosition, bar dto.Candle, outcome exitOutcome, balance float64, idx int) float64 {
	exit := fillPrice(r.policy, outcome.rawPrice, pos.direction, false)
	signed := exit - pos.entryPrice
	if pos.direction == dto.DirectionShort {
		signed = -signed
	}
	pnl := signed * pos.size

	record := dto.TradeRecord{
		EntryTime:  pos.entryTime,
		ExitTime:   bar.Timestamp,
		EntryPrice: pos.entryPrice,
		ExitPrice:  exit,
		StopLoss:   pos.stopLoss,
		TakeProfit: pos.takeProfit,
		Direction:  pos.direction,
		Size:       pos.size,
		RMultiple:  rMultiple(r.policy, r.style, pos, exit),
		PnL:        pnl,
		Win:        pnl > 0,
		ExitReason: outcome.reason,
		HoldBars:   idx - pos.entryIndex,
	}
	result.Trades = append(result.Trades, record)
	return balance + pnl
}

// nearestOrderBlock returns the bar index of the active order block aligned
// with the signal, -1 when there is none.
func nearestOrderBlock(sig dto.EngineSignal) int {
	blocks := sig.Metadata.Structure.ActiveOrderBlocks(sig.Direction)
	if len(blocks) == 0 {
		return -1
	}
	return blocks[len(blocks)-1].Index
}
