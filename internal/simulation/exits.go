package simulation

import (
	"golang-backtest/internal/dto"
	"golang-backtest/internal/gate"
)

// exitOutcome describes one exit decision for the current bar.
type exitOutcome struct {
	exit     bool
	rawPrice float64
	reason   string
}

// checkStructuralExit evaluates the dynamic exit conditions using engine
// output for the current bar: an opposite change of character after entry,
// a participation collapse, or mitigation of the entry order block. Exits
// execute at the bar close.
func checkStructuralExit(policy gate.Policy, pos *openPosition, bar dto.Candle, structure dto.StructureReport, volume dto.VolumeReport) exitOutcome {
	if !policy.EnableStructural {
		return exitOutcome{}
	}

	if ev := structure.LastEvent; ev != nil && ev.IsCHoCH &&
		ev.Index > pos.entryIndex && ev.Direction != pos.direction {
		return exitOutcome{exit: true, rawPrice: bar.Close, reason: dto.ExitReasonStructural}
	}

	if volume.LastZScore < policy.VolumeCollapseZ && volume.LastZScore != 0 {
		return exitOutcome{exit: true, rawPrice: bar.Close, reason: dto.ExitReasonStructural}
	}

	if pos.entryOrderBlock >= 0 {
		for _, ob := range structure.OrderBlocks {
			if ob.Index != pos.entryOrderBlock {
				continue
			}
			if ob.Mitigated && ob.MitigationTime != nil && ob.MitigationTime.After(pos.entryTime) {
				return exitOutcome{exit: true, rawPrice: bar.Close, reason: dto.ExitReasonStructural}
			}
			break
		}
	}
	return exitOutcome{}
}

// checkStopTarget applies the fixed precedence with the pessimistic same-bar
// rule: when both stop and target are touchable within one bar, the stop is
// assumed to have executed first.
func checkStopTarget(pos *openPosition, bar dto.Candle) exitOutcome {
	var stopHit, targetHit bool
	stopFill := pos.stopLoss
	targetFill := pos.takeProfit
	if pos.direction == dto.DirectionLong {
		stopHit = bar.Low <= pos.stopLoss
		targetHit = bar.High >= pos.takeProfit
		if bar.Open <= pos.stopLoss {
			stopFill = bar.Open // gapped through the stop
		}
		if bar.Open >= pos.takeProfit {
			targetFill = bar.Open
		}
	} else {
		stopHit = bar.High >= pos.stopLoss
		targetHit = bar.Low <= pos.takeProfit
		if bar.Open >= pos.stopLoss {
			stopFill = bar.Open
		}
		if bar.Open <= pos.takeProfit {
			targetFill = bar.Open
		}
	}

	switch {
	case stopHit && targetHit:
		return exitOutcome{exit: true, rawPrice: stopFill, reason: dto.ExitReasonStopLossTie}
	case stopHit:
		reason := pos.stopReason
		if reason == "" {
			reason = dto.ExitReasonStopLoss
		}
		return exitOutcome{exit: true, rawPrice: stopFill, reason: reason}
	case targetHit:
		return exitOutcome{exit: true, rawPrice: targetFill, reason: dto.ExitReasonTakeProfit}
	}
	return exitOutcome{}
}

// ratchetStops moves the stop in the trade's favor only. Breakeven engages
// once unrealized profit reaches the configured R; trailing follows price at
// an ATR distance. Updates take effect from the next bar.
func ratchetStops(policy gate.Policy, pos *openPosition, bar dto.Candle, atr float64) {
	if policy.EnableBreakeven && !pos.breakevenDone && pos.riskPerUnit > 0 {
		unrealizedR := pos.unrealized(bar.Close) / (pos.riskPerUnit * pos.size)
		if unrealizedR >= policy.BreakevenAtR {
			buffer := policy.BreakevenBuffer * atr
			var newStop float64
			if pos.direction == dto.DirectionLong {
				newStop = pos.entryPrice + buffer
			} else {
				newStop = pos.entryPrice - buffer
			}
			if pos.favorable(newStop) {
				pos.stopLoss = newStop
				pos.stopReason = dto.ExitReasonBreakeven
				pos.breakevenDone = true
			}
		}
	}

	if policy.EnableTrailing && atr > 0 {
		var newStop float64
		if pos.direction == dto.DirectionLong {
			newStop = bar.Close - policy.TrailingATRMult*atr
		} else {
			newStop = bar.Close + policy.TrailingATRMult*atr
		}
		if pos.favorable(newStop) {
			pos.stopLoss = newStop
			pos.stopReason = dto.ExitReasonTrailing
		}
	}
}
