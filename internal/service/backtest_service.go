package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/engine"
	"github.com/yourorg/options-backtester/internal/model"
)

// RunStore is the run-record sink the simulation reports into
type RunStore interface {
	CreateRun(ctx context.Context, cfg *model.BacktestConfig) (string, error)
	GetRun(ctx context.Context, id string) (*model.BacktestRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]model.BacktestRun, error)
	UpdateStatus(ctx context.Context, id string, status model.RunStatus) error
	UpdateProgress(ctx context.Context, id string, percent int) error
	SaveResult(ctx context.Context, id string, result *model.BacktestRunResult) error
	SaveError(ctx context.Context, id string, message string) error
}

// BarProvider supplies the price history for a run
type BarProvider interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
}

// BacktestService orchestrates backtest runs: it validates the input,
// creates a run record and executes the simulation in the background,
// reporting progress and the terminal outcome to the run store.
type BacktestService struct {
	runs    RunStore
	history BarProvider
	logger  *zap.Logger
}

// NewBacktestService creates a new backtest service
func NewBacktestService(runs RunStore, history BarProvider, logger *zap.Logger) *BacktestService {
	return &BacktestService{
		runs:    runs,
		history: history,
		logger:  logger,
	}
}

// CreateRun validates the config, records a pending run and starts the
// simulation in the background. Returns the run id immediately.
func (s *BacktestService) CreateRun(ctx context.Context, cfg *model.BacktestConfig) (string, error) {
	if !cfg.EndDate.After(cfg.StartDate) {
		return "", errors.New("end date must be after start date")
	}
	if cfg.CapitalMethod == model.CapitalManual && cfg.ManualCapital <= 0 {
		return "", errors.New("manual capital method requires a positive manual capital")
	}

	runID, err := s.runs.CreateRun(ctx, cfg)
	if err != nil {
		return "", err
	}

	go s.executeRun(runID, cfg)

	return runID, nil
}

// GetRun retrieves a run record by id
func (s *BacktestService) GetRun(ctx context.Context, id string) (*model.BacktestRun, error) {
	return s.runs.GetRun(ctx, id)
}

// ListRuns lists run records with pagination
func (s *BacktestService) ListRuns(ctx context.Context, page, limit int) ([]model.BacktestRun, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.runs.ListRuns(ctx, limit, (page-1)*limit)
}

// ValuateStrategy runs the continuous valuation walk over the range
func (s *BacktestService) ValuateStrategy(
	ctx context.Context,
	symbol string,
	start, end time.Time,
	legs []model.LegConfig,
) ([]model.ValuationPoint, error) {
	bars, err := s.history.GetBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price data available for %s between %s and %s",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return engine.WalkStrategyValue(bars, legs), nil
}

// executeRun runs a backtest to completion in the background. Any panic in
// the simulation is caught here once; the run is marked as an error and no
// partial data is attached.
func (s *BacktestService) executeRun(runID string, cfg *model.BacktestConfig) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Backtest run panicked",
				zap.String("runID", runID),
				zap.Any("panic", r))
			s.runs.SaveError(ctx, runID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := s.runs.UpdateStatus(ctx, runID, model.RunRunning); err != nil {
		return
	}

	bars, err := s.history.GetBars(ctx, cfg.Symbol, cfg.StartDate, cfg.EndDate)
	if err != nil {
		s.failRun(ctx, runID, fmt.Sprintf("failed to load price history: %v", err))
		return
	}
	if len(bars) == 0 {
		s.failRun(ctx, runID, fmt.Sprintf("no price data available for %s between %s and %s",
			cfg.Symbol, cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02")))
		return
	}

	sim := engine.NewSimulator(cfg, bars, s.logger, func(percent int) {
		if err := s.runs.UpdateProgress(ctx, runID, percent); err != nil {
			s.logger.Warn("Failed to report progress",
				zap.Error(err),
				zap.String("runID", runID))
		}
	})

	result, err := sim.Run(ctx)
	if err != nil {
		s.failRun(ctx, runID, fmt.Sprintf("simulation failed: %v", err))
		return
	}

	if err := s.runs.SaveResult(ctx, runID, result); err != nil {
		s.logger.Error("Failed to save run result",
			zap.Error(err),
			zap.String("runID", runID))
		return
	}

	s.logger.Info("Backtest run completed",
		zap.String("runID", runID),
		zap.String("symbol", cfg.Symbol),
		zap.Int("trades", result.Details.TradeCount),
		zap.Float64("totalPL", result.Summary.TotalProfitLoss))
}

// failRun marks a run as failed with an error message
func (s *BacktestService) failRun(ctx context.Context, runID string, message string) {
	s.logger.Error("Backtest run failed",
		zap.String("runID", runID),
		zap.String("message", message))
	if err := s.runs.SaveError(ctx, runID, message); err != nil {
		s.logger.Error("Failed to mark run as failed",
			zap.Error(err),
			zap.String("runID", runID))
	}
}
