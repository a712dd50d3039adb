package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// RunLogService records each reconciliation run in process_runs.
type RunLogService struct {
	db *sql.DB
}

func NewRunLogService(db *sql.DB) *RunLogService {
	return &RunLogService{db: db}
}

func (s *RunLogService) Start(ctx context.Context, runID, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO process_runs (id, name, status, started_at) VALUES ($1, $2, $3, $4)`,
		runID, name, RunStatusRunning, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert process run: %w", err)
	}
	return nil
}

func (s *RunLogService) Finish(ctx context.Context, runID, status, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE process_runs SET status = $1, message = $2, finished_at = $3 WHERE id = $4`,
		status, sql.NullString{String: message, Valid: message != ""}, time.Now(), runID,
	)
	if err != nil {
		return fmt.Errorf("update process run: %w", err)
	}
	return nil
}
