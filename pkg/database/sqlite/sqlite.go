// Package sqlite is a fixed-size pool of SQLite connections sharing the
// same pragmas.
package sqlite

import (
	"context"
	"fmt"
	"runtime"

	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/S1riyS/sqlfs/pkg/logging/slogext"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Config struct {
	// Path of the database file. ":memory:" requires PoolSize 1.
	Path string

	// PoolSize defaults to max(runtime.NumCPU(), 4).
	PoolSize int

	// OnConnect runs once per connection after the pragmas.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is safe for concurrent use; individual connections are not.
type Pool struct {
	inner *sqlitex.Pool
	path  string
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=OFF",
	"PRAGMA temp_store=MEMORY",
}

func Open(ctx context.Context, cfg Config) (*Pool, error) {
	const op = "sqlite.Open"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	if cfg.Path == "" {
		return nil, fmt.Errorf("%s: path is required", op)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.OnConnect)
		},
	})
	if err != nil {
		logger.Error("Failed to open sqlite pool", slogext.Err(err))
		return nil, fmt.Errorf("%s: opening %s: %w", op, cfg.Path, err)
	}

	logger.Info("Opened sqlite pool")
	return &Pool{inner: inner, path: cfg.Path}, nil
}

// Take borrows a connection; the caller must Put it back.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Pool.Take: %w", err)
	}
	return conn, nil
}

func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		return fmt.Errorf("sqlite.Pool.Close: %s: %w", p.path, err)
	}
	return nil
}

// With runs fn on a borrowed connection.
func (p *Pool) With(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)

	return fn(conn)
}

// WithTransaction runs fn inside an IMMEDIATE transaction that is
// committed when fn returns nil.
func (p *Pool) WithTransaction(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	return p.With(ctx, func(conn *sqlite.Conn) (err error) {
		endFn, err := sqlitex.ImmediateTransaction(conn)
		if err != nil {
			return fmt.Errorf("sqlite.Pool.WithTransaction: begin: %w", err)
		}
		defer endFn(&err)

		return fn(conn)
	})
}

func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("on connect: %w", err)
		}
	}

	return nil
}
