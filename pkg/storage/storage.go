// Package storage manages the shared SQLite database behind all three
// services. Every service opens the same file; SQLite's WAL mode gives
// concurrent readers and a single serialized writer.
package storage

import (
	"context"
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"roomly/pkg/logger"
)

type Config struct {
	// Path is the database file. It is created on first open. Use
	// ":memory:" with PoolSize 1 for throwaway databases in tests.
	Path string

	// PoolSize is the number of pooled connections. Zero means
	// max(NumCPU, 4).
	PoolSize int
}

// DB is a fixed-size pool of SQLite connections with the schema applied.
// DB is safe for concurrent use; individual connections are not, so each
// goroutine must Take its own connection and Put it back when done.
type DB struct {
	pool *sqlitex.Pool
	log  *logger.Logger
	path string
}

func Open(cfg Config, log *logger.Logger) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage: database path is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
		if poolSize < 4 {
			poolSize = 4
		}
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", cfg.Path, err)
	}

	db := &DB{pool: pool, log: log, path: cfg.Path}
	if err := db.applySchema(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("database opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return db, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}
	return nil
}

func (d *DB) applySchema(ctx context.Context) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("storage: take for schema: %w", err)
	}
	defer d.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("storage: applying schema: %w", err)
	}
	return nil
}

// Take borrows a connection from the pool. Blocks until one is available
// or ctx is cancelled. The caller must call Put when done, typically via
// defer.
func (d *DB) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (d *DB) Put(conn *sqlite.Conn) {
	d.pool.Put(conn)
}

// Close closes all connections. Blocks until borrowed connections are
// returned.
func (d *DB) Close() error {
	if err := d.pool.Close(); err != nil {
		d.log.Error("database close failed",
			"path", d.path,
			"error", err,
		)
		return fmt.Errorf("storage: closing %s: %w", d.path, err)
	}
	d.log.Info("database closed", "path", d.path)
	return nil
}

// Ping verifies a connection can be taken and queried.
func (d *DB) Ping(ctx context.Context) error {
	conn, err := d.Take(ctx)
	if err != nil {
		return err
	}
	defer d.Put(conn)
	return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
}

// WithTx runs fn on a single connection inside an IMMEDIATE transaction.
// The write lock is acquired up front, so a check followed by a write
// inside fn cannot interleave with another writer. Commits when fn
// returns nil, rolls back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := d.Take(ctx)
	if err != nil {
		return err
	}
	defer d.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("storage: begin transaction: %w", err)
	}
	defer endFn(&err)

	err = fn(conn)
	return err
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return sqlite.ErrCode(err) == sqlite.ResultConstraintUnique
}
