package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	models "github.com/jaskrrish/Go-BV/internal/models/bv"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id                TEXT PRIMARY KEY,
	num_qubits        INTEGER NOT NULL,
	a                 INTEGER NOT NULL,
	b                 INTEGER NOT NULL,
	oracle_style      TEXT NOT NULL,
	expected          TEXT NOT NULL,
	fingerprint       TEXT NOT NULL,
	correlating_gates INTEGER NOT NULL,
	num_operations    INTEGER NOT NULL,
	created_at        INTEGER NOT NULL,
	expires_at        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	experiment_id  TEXT NOT NULL REFERENCES experiments(id) ON DELETE CASCADE,
	shots          INTEGER NOT NULL,
	backend        TEXT NOT NULL,
	job_id         TEXT NOT NULL DEFAULT '',
	noise_profile  TEXT NOT NULL DEFAULT '',
	noise          BLOB,
	counts         BLOB NOT NULL,
	accuracy       REAL NOT NULL,
	most_frequent  TEXT NOT NULL,
	recovered_a    INTEGER NOT NULL,
	recovered      INTEGER NOT NULL,
	bit_error_rate REAL NOT NULL,
	duration_ms    INTEGER NOT NULL,
	created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment_id, created_at);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Store persists experiments and runs in SQLite. Counts and noise models are
// stored as msgpack blobs.
type Store struct {
	conn *sql.DB
	path string
}

// New opens (creating if needed) the database at dbPath and applies the schema
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY and keeps :memory: shared
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SaveExperiment inserts or replaces an experiment
func (s *Store) SaveExperiment(ctx context.Context, e *models.Experiment) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO experiments (id, num_qubits, a, b, oracle_style, expected, fingerprint,
			correlating_gates, num_operations, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at`,
		e.ExperimentID.String(), e.NumQubits, int64(e.A), e.B, e.OracleStyle, e.Expected, e.Fingerprint,
		e.CorrelatingGates, e.NumOperations, e.CreatedAt.UnixNano(), e.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save experiment %s: %w", e.ExperimentID, err)
	}
	return nil
}

// GetExperiment loads a stored experiment
func (s *Store) GetExperiment(ctx context.Context, id uuid.UUID) (*models.Experiment, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT e.num_qubits, e.a, e.b, e.oracle_style, e.expected, e.fingerprint, e.correlating_gates,
			e.num_operations, e.created_at, e.expires_at, COUNT(r.id), MAX(r.created_at)
		FROM experiments e LEFT JOIN runs r ON r.experiment_id = e.id
		WHERE e.id = ?
		GROUP BY e.id`, id.String())

	e := &models.Experiment{ExperimentID: id, Status: models.ExperimentReady}
	var a, createdAt, expiresAt int64
	var lastRun sql.NullInt64
	err := row.Scan(&e.NumQubits, &a, &e.B, &e.OracleStyle, &e.Expected, &e.Fingerprint,
		&e.CorrelatingGates, &e.NumOperations, &createdAt, &expiresAt, &e.RunCount, &lastRun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrExperimentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment %s: %w", id, err)
	}

	e.A = uint64(a)
	e.CreatedAt = time.Unix(0, createdAt)
	e.ExpiresAt = time.Unix(0, expiresAt)
	if lastRun.Valid {
		t := time.Unix(0, lastRun.Int64)
		e.LastRunAt = &t
	}
	return e, nil
}

// SaveRun inserts a run
func (s *Store) SaveRun(ctx context.Context, r *models.Run) error {
	counts, err := msgpack.Marshal(r.Counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}

	var noise []byte
	if r.Noise != nil {
		if noise, err = msgpack.Marshal(r.Noise); err != nil {
			return fmt.Errorf("encode noise model: %w", err)
		}
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO runs (id, experiment_id, shots, backend, job_id, noise_profile, noise, counts,
			accuracy, most_frequent, recovered_a, recovered, bit_error_rate, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID.String(), r.ExperimentID.String(), r.Shots, r.Backend, r.JobID, r.NoiseProfile, noise, counts,
		r.Accuracy, r.MostFrequent, int64(r.RecoveredA), r.Recovered, r.BitErrorRate, r.DurationMs, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

// ListRuns returns the stored runs of an experiment, oldest first
func (s *Store) ListRuns(ctx context.Context, experimentID uuid.UUID) ([]*models.Run, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, shots, backend, job_id, noise_profile, noise, counts, accuracy, most_frequent,
			recovered_a, recovered, bit_error_rate, duration_ms, created_at
		FROM runs WHERE experiment_id = ? ORDER BY created_at`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		r := &models.Run{ExperimentID: experimentID}
		var id string
		var noise, counts []byte
		var recoveredA, createdAt int64

		if err := rows.Scan(&id, &r.Shots, &r.Backend, &r.JobID, &r.NoiseProfile, &noise, &counts,
			&r.Accuracy, &r.MostFrequent, &recoveredA, &r.Recovered, &r.BitErrorRate, &r.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if r.RunID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if err := msgpack.Unmarshal(counts, &r.Counts); err != nil {
			return nil, fmt.Errorf("decode counts of run %s: %w", id, err)
		}
		if len(noise) > 0 {
			r.Noise = &quantum.NoiseModel{}
			if err := msgpack.Unmarshal(noise, r.Noise); err != nil {
				return nil, fmt.Errorf("decode noise of run %s: %w", id, err)
			}
		}
		r.RecoveredA = uint64(recoveredA)
		r.CreatedAt = time.Unix(0, createdAt)

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// DeleteExperiment removes an experiment and, by cascade, its runs
func (s *Store) DeleteExperiment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete experiment %s: %w", id, err)
	}
	return nil
}

// PurgeBefore deletes experiments that expired before cutoff together with
// their runs. Runs of unexpired experiments are kept whatever their age. It
// returns the number of deleted rows.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	runs, err := tx.ExecContext(ctx, `
		DELETE FROM runs WHERE experiment_id IN (
			SELECT id FROM experiments WHERE expires_at < ?
		)`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	experiments, err := tx.ExecContext(ctx, `DELETE FROM experiments WHERE expires_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge experiments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	nRuns, _ := runs.RowsAffected()
	nExperiments, _ := experiments.RowsAffected()
	return nRuns + nExperiments, nil
}
