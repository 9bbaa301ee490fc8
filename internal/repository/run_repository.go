package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/options-backtester/internal/model"
)

// RunRepository is the persistent run-record store. The simulator reports
// progress and terminal results here.
type RunRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRun inserts a pending run record and returns its id
func (r *RunRepository) CreateRun(ctx context.Context, cfg *model.BacktestConfig) (string, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO backtest_runs (id, symbol, config, status, progress, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`

	_, err := r.db.ExecContext(ctx, query, id, cfg.Symbol, model.RunConfig{BacktestConfig: *cfg}, model.RunPending, time.Now())
	if err != nil {
		r.logger.Error("Failed to create run record",
			zap.Error(err),
			zap.String("symbol", cfg.Symbol))
		return "", err
	}

	return id, nil
}

// GetRun retrieves a run record by id; nil when it does not exist
func (r *RunRepository) GetRun(ctx context.Context, id string) (*model.BacktestRun, error) {
	query := `
		SELECT id, symbol, config, status, progress, error_message, result, created_at, completed_at
		FROM backtest_runs
		WHERE id = $1
	`

	var run model.BacktestRun
	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get run record",
			zap.Error(err),
			zap.String("id", id))
		return nil, err
	}

	return &run, nil
}

// ListRuns lists run records, newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]model.BacktestRun, error) {
	query := `
		SELECT id, symbol, config, status, progress, error_message, result, created_at, completed_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var runs []model.BacktestRun
	err := r.db.SelectContext(ctx, &runs, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list run records", zap.Error(err))
		return nil, err
	}

	return runs, nil
}

// UpdateStatus transitions a run's status
func (r *RunRepository) UpdateStatus(ctx context.Context, id string, status model.RunStatus) error {
	query := `UPDATE backtest_runs SET status = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update run status",
			zap.Error(err),
			zap.String("id", id),
			zap.String("status", string(status)))
		return err
	}

	return nil
}

// UpdateProgress records the percentage of simulated days processed
func (r *RunRepository) UpdateProgress(ctx context.Context, id string, percent int) error {
	query := `UPDATE backtest_runs SET progress = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, percent, id)
	if err != nil {
		r.logger.Error("Failed to update run progress",
			zap.Error(err),
			zap.String("id", id),
			zap.Int("percent", percent))
		return err
	}

	return nil
}

// SaveResult stores the terminal result and marks the run completed
func (r *RunRepository) SaveResult(ctx context.Context, id string, result *model.BacktestRunResult) error {
	query := `
		UPDATE backtest_runs
		SET status = $1, progress = 100, result = $2, completed_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, model.RunCompleted, result, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to save run result",
			zap.Error(err),
			zap.String("id", id))
		return err
	}

	return nil
}

// SaveError marks the run failed with a message; no partial data is attached
func (r *RunRepository) SaveError(ctx context.Context, id string, message string) error {
	query := `
		UPDATE backtest_runs
		SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, model.RunError, message, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark run as failed",
			zap.Error(err),
			zap.String("id", id))
		return err
	}

	return nil
}
