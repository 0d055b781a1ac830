// Package sqlitelog is a SQLite-backed event log (modernc.org/sqlite, pure
// Go, WAL mode).
package sqlitelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ncoquelet/RobinWood/store"
)

// Log is a SQLite-backed append-only log.
type Log struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

var _ store.Log = (*Log)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlitelog: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitelog: open: %w", err)
	}
	// The ledger is the single writer; one connection keeps sqlite happy.
	db.SetMaxOpenConns(1)
	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitelog: migrate: %w", err)
	}
	return l, nil
}

func (l *Log) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`CREATE TABLE IF NOT EXISTS events (
			seq  INTEGER PRIMARY KEY,
			data BLOB NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := l.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log) Append(ctx context.Context, data []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, store.ErrClosed
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var max sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&max); err != nil {
		return 0, err
	}
	seq := uint64(max.Int64) + 1
	if _, err := tx.ExecContext(ctx, `INSERT INTO events (seq, data) VALUES (?, ?)`, seq, data); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return seq, nil
}

// AppendBatch inserts the whole batch in one transaction, so the database
// ends up holding all of it or none of it.
func (l *Log) AppendBatch(ctx context.Context, batch [][]byte) ([]uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, store.ErrClosed
	}
	if len(batch) == 0 {
		return nil, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var max sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&max); err != nil {
		return nil, err
	}
	seqs := make([]uint64, len(batch))
	for i, data := range batch {
		seqs[i] = uint64(max.Int64) + 1 + uint64(i)
		if _, err := tx.ExecContext(ctx, `INSERT INTO events (seq, data) VALUES (?, ?)`, seqs[i], data); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return seqs, nil
}

func (l *Log) Read(ctx context.Context, from uint64) ([]store.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, store.ErrClosed
	}
	if from == 0 {
		from = 1
	}

	rows, err := l.db.QueryContext(ctx, `SELECT seq, data FROM events WHERE seq >= ? ORDER BY seq ASC`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Record
	want := from
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.Seq, &rec.Data); err != nil {
			return nil, err
		}
		if rec.Seq != want {
			return nil, fmt.Errorf("%w: row has seq %d, want %d", store.ErrCorrupt, rec.Seq, want)
		}
		want++
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *Log) Len(ctx context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, store.ErrClosed
	}
	var max sql.NullInt64
	err := l.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&max)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return uint64(max.Int64), nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
