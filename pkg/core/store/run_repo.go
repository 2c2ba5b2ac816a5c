package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"storage_feasibility/pkg/core/assumption"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("projection run not found")

// RunKind says which analysis produced a run.
type RunKind string

const (
	KindProjection  RunKind = "projection"
	KindScenarios   RunKind = "scenarios"
	KindSensitivity RunKind = "sensitivity"
)

// Run is one stored analysis. Result holds the JSON document the API
// returned for it.
type Run struct {
	ID        uuid.UUID                   `json:"id"`
	Kind      RunKind                     `json:"kind"`
	Name      string                      `json:"name"`
	Inputs    assumption.ProjectionInputs `json:"inputs"`
	Result    json.RawMessage             `json:"result"`
	Warnings  int                         `json:"warnings"`
	CreatedAt time.Time                   `json:"created_at"`
}

// RunSummary is a listing row without the documents.
type RunSummary struct {
	ID        uuid.UUID `json:"id"`
	Kind      RunKind   `json:"kind"`
	Name      string    `json:"name"`
	Warnings  int       `json:"warnings"`
	CreatedAt time.Time `json:"created_at"`
}

// RunRepo stores and retrieves projection runs.
type RunRepo struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewRunRepo creates a repository over an open pool.
func NewRunRepo(pool *pgxpool.Pool, log *logrus.Logger) *RunRepo {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &RunRepo{pool: pool, log: log}
}

// Save persists a run under a fresh id and returns it.
func (r *RunRepo) Save(ctx context.Context, kind RunKind, in assumption.ProjectionInputs, result any, warnings int) (uuid.UUID, error) {
	if r.pool == nil {
		return uuid.Nil, fmt.Errorf("database pool not initialized")
	}

	inputsJSON, err := json.Marshal(in)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal inputs: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO projection_runs (id, kind, name, inputs, result, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query, id, string(kind), in.Name, inputsJSON, resultJSON, warnings, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"run_id": id.String(),
		"kind":   kind,
		"name":   in.Name,
	}).Info("Saved projection run")
	return id, nil
}

// Get loads a run by id.
func (r *RunRepo) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, kind, name, inputs, result, warnings, created_at
		FROM projection_runs WHERE id = $1
	`
	var (
		run        Run
		kind       string
		inputsJSON []byte
		resultJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&run.ID, &kind, &run.Name, &inputsJSON, &resultJSON, &run.Warnings, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	run.Kind = RunKind(kind)

	if err := json.Unmarshal(inputsJSON, &run.Inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inputs: %w", err)
	}
	run.Result = json.RawMessage(resultJSON)
	return &run, nil
}

// List returns the most recent runs, newest first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, name, warnings, created_at
		FROM projection_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var kind string
		if err := rows.Scan(&s.ID, &kind, &s.Name, &s.Warnings, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Kind = RunKind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}
