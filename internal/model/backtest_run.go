package model

import (
	"time"

	"gorm.io/datatypes"
)

// BacktestRun is one persisted symbol result. A batch request produces one
// row per symbol so historical runs stay queryable individually.
type BacktestRun struct {
	ID            uint           `gorm:"primarykey"`
	Symbol        string         `gorm:"not null;index:idx_backtest_runs_symbol"`
	Exchange      string         `gorm:"not null"`
	EngineStyle   string         `gorm:"not null"`
	EngineVersion string         `gorm:"not null"`
	Timeframe     string         `gorm:"not null"`
	HorizonDays   int            `gorm:"not null"`
	BarsLoaded    int            `gorm:"not null"`
	FallbackUsed  bool           `gorm:"not null;default:false"`
	Stats         datatypes.JSON `gorm:"type:jsonb"`
	Trades        datatypes.JSON `gorm:"type:jsonb"`
	FilterReasons datatypes.JSON `gorm:"type:jsonb"`
	Anomalies     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}

// ListBacktestRunParam filters the run history listing. Zero values mean no
// filter on that column.
type ListBacktestRunParam struct {
	Symbol        string
	EngineStyle   string
	EngineVersion string
	Limit         int
}
