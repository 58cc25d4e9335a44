package simulation

import (
	"time"

	"golang-backtest/internal/dto"
)

// openPosition is the single live position of a run. Mutated only to ratchet
// the stop in the trade's favor; destroyed on exit.
type openPosition struct {
	entryIndex      int
	entryTime       time.Time
	entryPrice      float64
	initialStop     float64
	stopLoss        float64
	takeProfit      float64
	direction       dto.Direction
	size            float64
	riskPerUnit     float64
	balanceAtEntry  float64
	breakevenDone   bool
	stopReason      string // exit reason to record when the current stop is hit
	entryOrderBlock int    // bar index of the aligned order block, -1 when none
}

// unrealized returns the mark-to-market profit at price.
func (p *openPosition) unrealized(price float64) float64 {
	if p.direction == dto.DirectionLong {
		return (price - p.entryPrice) * p.size
	}
	return (p.entryPrice - price) * p.size
}

// favorable reports whether newStop is an improvement over the current stop
// for the trade's direction. Stops are never loosened.
func (p *openPosition) favorable(newStop float64) bool {
	if p.direction == dto.DirectionLong {
		return newStop > p.stopLoss
	}
	return newStop < p.stopLoss
}

// pendingEntry carries an accepted signal until the next bar's open.
type pendingEntry struct {
	signal     dto.EngineSignal
	signalIdx  int
	orderBlock int
}
