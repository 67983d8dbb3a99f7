package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("history: run not found")

// Page size limits shared by the list queries.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one stored generation batch.
type Run struct {
	ID         string         `json:"id"`
	Trigger    string         `json:"trigger"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Summary    scenes.Summary `json:"summary"`

	// Report is only populated by Get.
	Report *scenes.Report `json:"report,omitempty"`
}

// RunList is a page of runs, newest first.
type RunList struct {
	Runs   []Run `json:"runs"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// RunRepository stores generation reports.
type RunRepository interface {
	Save(ctx context.Context, report scenes.Report) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, limit, offset int) (*RunList, error)
}

// SQLiteRunRepository stores runs in the generation_runs table.
type SQLiteRunRepository struct {
	db *sql.DB
}

// NewSQLiteRunRepository creates a run repository.
func NewSQLiteRunRepository(db *sql.DB) *SQLiteRunRepository {
	return &SQLiteRunRepository{db: db}
}

// Save inserts a report. Saving the same run ID twice is an error.
func (r *SQLiteRunRepository) Save(ctx context.Context, report scenes.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO generation_runs (id, trigger, started_at, duration_ms, created, skipped, failed, total, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Trigger,
		report.StartedAt.UTC().Format(timeLayout),
		report.DurationMS,
		report.Summary.Created, report.Summary.Skipped, report.Summary.Failed, report.Summary.Total,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting generation run: %w", err)
	}
	return nil
}

// Get returns a run with its full report.
func (r *SQLiteRunRepository) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, trigger, started_at, duration_ms, created, skipped, failed, total, report
		 FROM generation_runs WHERE id = ?`, id)

	var body string
	run, err := scanRun(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var report scenes.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("decoding report for run %s: %w", id, err)
	}
	run.Report = &report
	return run, nil
}

// List returns runs newest first. Limit defaults to 50 and is capped at 200.
func (r *SQLiteRunRepository) List(ctx context.Context, limit, offset int) (*RunList, error) {
	limit, offset = clampPage(limit, offset)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generation_runs").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting generation runs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, trigger, started_at, duration_ms, created, skipped, failed, total
		 FROM generation_runs ORDER BY started_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying generation runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows, nil)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generation runs: %w", err)
	}

	return &RunList{Runs: runs, Total: total, Limit: limit, Offset: offset}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads the summary columns, plus the report column when body is
// non-nil.
func scanRun(s scanner, body *string) (*Run, error) {
	var run Run
	var startedAt string
	dest := []any{
		&run.ID, &run.Trigger, &startedAt, &run.DurationMS,
		&run.Summary.Created, &run.Summary.Skipped, &run.Summary.Failed, &run.Summary.Total,
	}
	if body != nil {
		dest = append(dest, body)
	}
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning generation run: %w", err)
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp %q: %w", startedAt, err)
	}
	run.StartedAt = t
	return &run, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
