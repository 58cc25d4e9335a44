package dto

import "time"

// SwingPoint is a confirmed swing high or low.
type SwingPoint struct {
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	IsHigh bool      `json:"is_high"`
}

// StructureEvent is a break of structure or change of character.
type StructureEvent struct {
	Index     int       `json:"index"`
	Time      time.Time `json:"time"`
	Price     float64   `json:"price"`
	Direction Direction `json:"direction"`
	IsCHoCH   bool      `json:"is_choch"`
	// BrokenLevel is the swing price whose close-through produced the event.
	BrokenLevel float64 `json:"broken_level"`
	// Displacement is |close - broken level| on the breakout bar.
	Displacement float64 `json:"displacement"`
	// BarRange is the breakout bar's high-low range.
	BarRange float64 `json:"bar_range"`
}

// OrderBlock is the last opposite-colored candle before a displacement that
// broke structure. The zone stays active until mitigated.
type OrderBlock struct {
	Direction      Direction  `json:"direction"`
	Top            float64    `json:"top"`
	Bottom         float64    `json:"bottom"`
	Index          int        `json:"index"`
	OpenTime       time.Time  `json:"open_time"`
	CloseTime      time.Time  `json:"close_time"`
	Volume         float64    `json:"volume"`
	WickRatio      float64    `json:"wick_ratio"`
	Mitigated      bool       `json:"mitigated"`
	MitigationTime *time.Time `json:"mitigation_time,omitempty"`
}

// Contains reports whether price falls inside the zone.
func (ob OrderBlock) Contains(price float64) bool {
	return price >= ob.Bottom && price <= ob.Top
}

// FairValueGap is a 3-candle inefficiency between bar i and bar i-2.
type FairValueGap struct {
	Direction  Direction `json:"direction"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	GapTop     float64   `json:"gap_top"`
	GapBottom  float64   `json:"gap_bottom"`
	Size       float64   `json:"size"`
}

// LiquidityEvent marks equal highs/lows or a single-bar sweep.
type LiquidityEvent struct {
	Type  string    `json:"type"`
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// StructureReport is the structure engine output for one evaluated bar. It is
// recomputed on a rolling window and never mutated afterwards.
type StructureReport struct {
	Swings         []SwingPoint     `json:"swings"`
	Events         []StructureEvent `json:"events"`
	OrderBlocks    []OrderBlock     `json:"order_blocks"`
	FairValueGaps  []FairValueGap   `json:"fair_value_gaps"`
	Liquidity      []LiquidityEvent `json:"liquidity"`
	Zone           string           `json:"zone"`
	ZonePosition   float64          `json:"zone_position"` // 0 = window low, 1 = window high
	Strength       float64          `json:"strength"`      // 0..100
	LastEvent      *StructureEvent  `json:"last_event,omitempty"`
	WindowStart    int              `json:"window_start"`
	EvaluatedIndex int              `json:"evaluated_index"`
}

// RecentEvent returns the most recent event not older than maxAge bars from
// the evaluated index, nil when there is none.
func (r StructureReport) RecentEvent(maxAge int) *StructureEvent {
	if r.LastEvent == nil {
		return nil
	}
	if r.EvaluatedIndex-r.LastEvent.Index > maxAge {
		return nil
	}
	return r.LastEvent
}

// ActiveOrderBlocks returns unmitigated zones in the given direction.
func (r StructureReport) ActiveOrderBlocks(dir Direction) []OrderBlock {
	var out []OrderBlock
	for _, ob := range r.OrderBlocks {
		if !ob.Mitigated && ob.Direction == dir {
			out = append(out, ob)
		}
	}
	return out
}
