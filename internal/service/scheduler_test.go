package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/pkg/logger"
)

func testServiceLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	assert.NoError(t, err)
	return log
}

type stubBacktest struct {
	runCalled int
	pruned    []time.Time
}

func (s *stubBacktest) Run(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResponse, error) {
	s.runCalled++
	return &dto.BacktestResponse{}, nil
}

func (s *stubBacktest) History(ctx context.Context, param model.ListBacktestRunParam) ([]model.BacktestRun, error) {
	return nil, nil
}

func (s *stubBacktest) PruneHistory(ctx context.Context, olderThan time.Time) (int64, error) {
	s.pruned = append(s.pruned, olderThan)
	return 1, nil
}

func TestSchedulerRunOncePrunesHistory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Style = "swing"
	cfg.Scheduler.Symbols = []string{"BTCUSDT"}
	cfg.Scheduler.RetentionDays = 30

	stub := &stubBacktest{}
	sched := NewSchedulerService(cfg, testServiceLogger(t), stub)

	assert.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.runCalled)
	assert.Len(t, stub.pruned, 1)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), stub.pruned[0], time.Minute)
}

func TestSchedulerRunOnceWithoutRetention(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Style = "swing"
	cfg.Scheduler.Symbols = []string{"BTCUSDT"}

	stub := &stubBacktest{}
	sched := NewSchedulerService(cfg, testServiceLogger(t), stub)

	assert.NoError(t, sched.RunOnce(context.Background()))
	assert.Empty(t, stub.pruned, "retention disabled by default")
}

func TestHistoryWithoutDatabase(t *testing.T) {
	svc := NewBacktestService(&config.Config{}, testServiceLogger(t), nil, nil)

	_, err := svc.History(context.Background(), model.ListBacktestRunParam{})
	assert.Error(t, err)

	_, err = svc.PruneHistory(context.Background(), time.Now())
	assert.Error(t, err)
}
