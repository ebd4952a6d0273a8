package violation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger stores violations in an SQLite database. Violations are written by a single background
// goroutine so recording never blocks a connection.
type Ledger struct {
	db *sql.DB

	ch     chan entry
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// entry is either a violation to write or a flush barrier.
type entry struct {
	v    Violation
	done chan struct{}
}

// Open opens or creates the ledger at path. The path ":memory:" keeps the ledger in memory.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("empty ledger path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	l := &Ledger{db: db, ch: make(chan entry, 4096)}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.loop()
	}()
	return l, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			addr TEXT NOT NULL,
			cause TEXT NOT NULL,
			reason TEXT NOT NULL,
			recorded_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_player ON violations(player);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init ledger: %w", err)
		}
	}
	return nil
}

// Record queues v to be written. Violations are dropped if the writer falls behind.
func (l *Ledger) Record(v Violation) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	if v.Time.IsZero() {
		v.Time = time.Now()
	}
	select {
	case l.ch <- entry{v: v}:
	default:
	}
}

func (l *Ledger) loop() {
	for e := range l.ch {
		if e.done != nil {
			close(e.done)
			continue
		}
		v := e.v
		_, _ = l.db.Exec(
			"INSERT INTO violations (player, addr, cause, reason, recorded_at) VALUES (?, ?, ?, ?, ?)",
			v.Player, v.Addr, v.Cause, v.Reason, v.Time.UnixMilli(),
		)
	}
}

// Recent returns up to limit violations, newest first. A non-empty player filters by player name.
func (l *Ledger) Recent(ctx context.Context, player string, limit int) ([]Violation, error) {
	query := "SELECT player, addr, cause, reason, recorded_at FROM violations"
	args := []any{}
	if player != "" {
		query += " WHERE player = ?"
		args = append(args, player)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var (
			v  Violation
			ms int64
		)
		if err := rows.Scan(&v.Player, &v.Addr, &v.Cause, &v.Reason, &ms); err != nil {
			return nil, err
		}
		v.Time = time.UnixMilli(ms)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Flush waits until every violation recorded so far has been written.
func (l *Ledger) Flush(ctx context.Context) error {
	done := make(chan struct{})
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil
	}
	select {
	case l.ch <- entry{done: done}:
		l.mu.RUnlock()
	case <-ctx.Done():
		l.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes the violations still queued and closes the database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.ch)
	l.mu.Unlock()

	l.wg.Wait()
	return l.db.Close()
}
