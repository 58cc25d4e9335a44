package repository

import (
	"context"
	"time"

	"golang-backtest/internal/model"

	"gorm.io/gorm"
)

type BacktestRunRepository interface {
	CreateBulk(ctx context.Context, runs []model.BacktestRun) error
	List(ctx context.Context, param model.ListBacktestRunParam) ([]model.BacktestRun, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type backtestRunRepository struct {
	db *gorm.DB
}

func NewBacktestRunRepository(db *gorm.DB) BacktestRunRepository {
	return &backtestRunRepository{db: db}
}

func (r *backtestRunRepository) CreateBulk(ctx context.Context, runs []model.BacktestRun) error {
	return r.db.WithContext(ctx).CreateInBatches(runs, 100).Error
}

func (r *backtestRunRepository) List(ctx context.Context, param model.ListBacktestRunParam) ([]model.BacktestRun, error) {
	query := r.db.WithContext(ctx).Model(&model.BacktestRun{})

	if param.Symbol != "" {
		query = query.Where("symbol = ?", param.Symbol)
	}
	if param.EngineStyle != "" {
		query = query.Where("engine_style = ?", param.EngineStyle)
	}
	if param.EngineVersion != "" {
		query = query.Where("engine_version = ?", param.EngineVersion)
	}

	limit := param.Limit
	if limit <= 0 {
		limit = 50
	}

	var runs []model.BacktestRun
	err := query.Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *backtestRunRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", date).Delete(&model.BacktestRun{})
	return result.RowsAffected, result.Error
}
