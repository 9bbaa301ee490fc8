package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunStatus is the lifecycle state of a backtest run record
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// RunConfig wraps BacktestConfig for JSONB storage
type RunConfig struct {
	BacktestConfig
}

// Value implements driver.Valuer for RunConfig
func (c RunConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for RunConfig
func (c *RunConfig) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, c)
}

// BacktestRun is the persisted record of one run, used as the progress and
// status sink for the simulator.
type BacktestRun struct {
	ID           string             `json:"id" db:"id"`
	Symbol       string             `json:"symbol" db:"symbol"`
	Config       RunConfig          `json:"config" db:"config"`
	Status       RunStatus          `json:"status" db:"status"`
	Progress     int                `json:"progress" db:"progress"`
	ErrorMessage *string            `json:"error_message,omitempty" db:"error_message"`
	Result       *BacktestRunResult `json:"result,omitempty" db:"result"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
}
