package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/rpgo/rmd-simulator/internal/domain"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store persists simulation results and items in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// NewRunID returns a fresh ULID run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// SaveRun inserts the run row and all of its result records in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, runID string, cfg *domain.SimulationConfig, records []domain.ResultRecord) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, trial_count, seed, config)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), cfg.Simulation.TrialCount, cfg.Simulation.Seed, string(cfgJSON),
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results
		(run_id, trial_id, strategy, death_age, years_lived, terminal_wealth,
		 total_taxes_paid, total_rmd_withdrawals, step_up_benefit, valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, r.TrialID, r.Strategy, r.DeathAge, r.YearsLived,
			r.TerminalWealth.InexactFloat64(),
			r.TotalTaxes.InexactFloat64(),
			r.TotalRMDs.InexactFloat64(),
			r.StepUpBenefit.InexactFloat64(),
			boolToInt(r.Valid),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LatestRunID returns the most recently created run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM runs ORDER BY created_at DESC, run_id DESC LIMIT 1`,
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs stored: %w", ErrNotFound)
	}
	return runID, err
}

// PutItem stores (or replaces) an item body under id.
func (s *Store) PutItem(ctx context.Context, id, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body`, id, body)
	return err
}

// GetItem returns the stored body for id, or ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM items WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return body, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
