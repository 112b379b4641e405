// Package ledger records experiment outcomes in a SQLite database so that
// sweeps run on different days can be compared.
package ledger

import (
	"context"
	"embed"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	adapt "github.com/jamesainslie/go-adapt"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Run kinds.
const (
	KindSelfTrain = "selftrain"
	KindBaseline  = "baseline"
)

// Entry is one recorded experiment.
type Entry struct {
	ID   int64
	Kind string

	Seed string
	Pool string
	Test string

	SeedSize      int
	PoolSize      int
	Labeled       int
	SkippedLabels int

	Report    adapt.Report
	StartedAt time.Time
	Duration  time.Duration
}

// Ledger is a handle on a ledger database. It is safe for concurrent use.
type Ledger struct {
	pool *sqlitex.Pool
}

// Open opens or creates the ledger at path.
func Open(path string, poolSize int) (*Ledger, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", path), sqlitex.PoolOptions{
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger at %s: %w", path, err)
	}

	l := &Ledger{pool: pool}
	if err := l.createSchema(context.Background()); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) createSchema(ctx context.Context) error {
	script, err := sqlFiles.ReadFile("sql/schema.sql")
	if err != nil {
		return fmt.Errorf("reading ledger schema: %w", err)
	}

	conn, err := l.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer l.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
		return fmt.Errorf("creating ledger schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.pool.Close()
}

const insertRun = `INSERT INTO runs (
	kind, seed, pool, test, seed_size, pool_size, labeled, skipped_labels,
	sentences, parsed, skipped, precision, recall, f1, exact_match, tagging_accuracy,
	started_at, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Record stores e and returns its id.
func (l *Ledger) Record(ctx context.Context, e Entry) (id int64, err error) {
	conn, err := l.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer l.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	r := e.Report
	err = sqlitex.Execute(conn, insertRun, &sqlitex.ExecOptions{
		Args: []any{
			e.Kind, e.Seed, e.Pool, e.Test,
			e.SeedSize, e.PoolSize, e.Labeled, e.SkippedLabels,
			r.Sentences, r.Parsed, r.Skipped,
			r.Precision, r.Recall, r.F1, r.ExactMatch, r.TaggingAccuracy,
			e.StartedAt.UTC().Format(time.RFC3339Nano), e.Duration.Milliseconds(),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return conn.LastInsertRowID(), nil
}

const selectRuns = `SELECT
	id, kind, seed, pool, test, seed_size, pool_size, labeled, skipped_labels,
	sentences, parsed, skipped, precision, recall, f1, exact_match, tagging_accuracy,
	started_at, duration_ms
FROM runs ORDER BY id`

// List returns every recorded run in insertion order.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	conn, err := l.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer l.pool.Put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn, selectRuns, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			started, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(17))
			if err != nil {
				return fmt.Errorf("run %d: %w", stmt.ColumnInt64(0), err)
			}
			entries = append(entries, Entry{
				ID:            stmt.ColumnInt64(0),
				Kind:          stmt.ColumnText(1),
				Seed:          stmt.ColumnText(2),
				Pool:          stmt.ColumnText(3),
				Test:          stmt.ColumnText(4),
				SeedSize:      stmt.ColumnInt(5),
				PoolSize:      stmt.ColumnInt(6),
				Labeled:       stmt.ColumnInt(7),
				SkippedLabels: stmt.ColumnInt(8),
				Report: adapt.Report{
					Sentences:       stmt.ColumnInt(9),
					Parsed:          stmt.ColumnInt(10),
					Skipped:         stmt.ColumnInt(11),
					Precision:       stmt.ColumnFloat(12),
					Recall:          stmt.ColumnFloat(13),
					F1:              stmt.ColumnFloat(14),
					ExactMatch:      stmt.ColumnFloat(15),
					TaggingAccuracy: stmt.ColumnFloat(16),
				},
				StartedAt: started,
				Duration:  time.Duration(stmt.ColumnInt64(18)) * time.Millisecond,
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return entries, nil
}
