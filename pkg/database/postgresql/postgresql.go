package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/S1riyS/sqlfs/internal/config"
	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/S1riyS/sqlfs/pkg/logging/slogext"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 5 * time.Second

type Client interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewClient opens a pool for cfg and checks it with a ping.
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	const op = "postgresql.NewClient"

	logger := logging.GetLoggerFromContextWithOp(ctx, op).With(
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Name),
	)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create connection pool", slogext.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Error("Failed to connect to database", slogext.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("Connected to database", slog.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, nil
}

func MustNewClient(ctx context.Context, cfg config.DatabaseConfig) *pgxpool.Pool {
	pool, err := NewClient(ctx, cfg)
	if err != nil {
		panic(err)
	}
	return pool
}
