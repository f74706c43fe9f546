package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/mapper"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/schema"
	"github.com/S1riyS/sqlfs/pkg/database/sqlite"
	"github.com/S1riyS/sqlfs/pkg/logging"
	zsqlite "zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type sqliteFileRepository struct {
	pool   *sqlite.Pool
	mapper *mapper.FileMapper
	stmts  *statements
}

var (
	_ FileRepository = (*sqliteFileRepository)(nil)
	_ TableManager   = (*sqliteFileRepository)(nil)
)

type SQLiteRepository interface {
	FileRepository
	TableManager
}

// NewSQLiteFileRepository returns a repository over an embedded SQLite
// database. Timestamps are stored as RFC 3339 text.
func NewSQLiteFileRepository(pool *sqlite.Pool, m *mapper.FileMapper, table string) (SQLiteRepository, error) {
	stmts, err := newStatements(sqliteDialect, table, m.Schema())
	if err != nil {
		return nil, err
	}
	return &sqliteFileRepository{pool: pool, mapper: m, stmts: stmts}, nil
}

// PrepareConn makes LIKE case sensitive, matching PostgreSQL.
func PrepareConn(conn *zsqlite.Conn) error {
	return sqlitex.ExecuteTransient(conn, "PRAGMA case_sensitive_like=ON", nil)
}

func (r *sqliteFileRepository) CreateTable(ctx context.Context) error {
	const op = "repository.sqliteFileRepository.CreateTable"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	err := r.pool.With(ctx, func(conn *zsqlite.Conn) error {
		return sqlitex.ExecuteTransient(conn, r.stmts.createTable, nil)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("Table ready", slog.String("table", r.stmts.table.Name))
	return nil
}

func (r *sqliteFileRepository) DropTable(ctx context.Context) error {
	const op = "repository.sqliteFileRepository.DropTable"

	err := r.pool.With(ctx, func(conn *zsqlite.Conn) error {
		return sqlitex.ExecuteTransient(conn, r.stmts.dropTable, nil)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *sqliteFileRepository) Lookup(ctx context.Context, name string) (*models.File, error) {
	const op = "repository.sqliteFileRepository.Lookup"

	var files []*models.File
	err := r.pool.With(ctx, func(conn *zsqlite.Conn) (err error) {
		files, err = r.query(conn, r.stmts.lookup, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

func (r *sqliteFileRepository) FindByPrefix(ctx context.Context, prefix, pattern string) ([]*models.File, error) {
	const op = "repository.sqliteFileRepository.FindByPrefix"

	var files []*models.File
	err := r.pool.With(ctx, func(conn *zsqlite.Conn) (err error) {
		files, err = r.query(conn, r.stmts.findByPrefix, fspath.LiteralPrefix(prefix), likePattern(pattern))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return files, nil
}

func (r *sqliteFileRepository) Insert(ctx context.Context, file *models.File, replace bool) (int64, error) {
	const op = "repository.sqliteFileRepository.Insert"

	args, err := r.mapper.Values(file, r.stmts.columns)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := r.stmts.insert
	if replace {
		query = r.stmts.upsert
	}
	return r.exec(ctx, op, query, args...)
}

func (r *sqliteFileRepository) Save(ctx context.Context, file *models.File) (int64, error) {
	const op = "repository.sqliteFileRepository.Save"

	values, err := r.mapper.Values(file, r.stmts.columns)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	byName := make(map[string]any, len(values))
	for i, c := range r.stmts.columns {
		byName[c] = values[i]
	}
	return r.exec(ctx, op, r.stmts.save, saveArgs(r.mapper.Schema(), byName)...)
}

func (r *sqliteFileRepository) Delete(ctx context.Context, name string) (int64, error) {
	const op = "repository.sqliteFileRepository.Delete"

	return r.exec(ctx, op, r.stmts.deleteByName, name)
}

func (r *sqliteFileRepository) Rename(ctx context.Context, oldName, newName string, replace bool) (int64, error) {
	const op = "repository.sqliteFileRepository.Rename"

	// Onto itself the destination exists, so the guarded update is a no-op.
	if !replace || oldName == newName {
		return r.exec(ctx, op, r.stmts.rename, oldName, newName)
	}

	var affected int64
	err := r.pool.WithTransaction(ctx, func(conn *zsqlite.Conn) error {
		source, err := r.query(conn, r.stmts.lookup, oldName)
		if err != nil || len(source) == 0 {
			return err
		}
		if err := sqlitex.Execute(conn, r.stmts.deleteByName, &sqlitex.ExecOptions{Args: []any{newName}}); err != nil {
			return err
		}
		if err := sqlitex.Execute(conn, r.stmts.rename, &sqlitex.ExecOptions{Args: []any{oldName, newName}}); err != nil {
			return err
		}
		affected = int64(conn.Changes())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

func (r *sqliteFileRepository) PatchFlags(ctx context.Context, name string, flags models.Flags) (int64, error) {
	const op = "repository.sqliteFileRepository.PatchFlags"

	return r.exec(ctx, op, r.stmts.patchFlags, name, uint8(flags))
}

func (r *sqliteFileRepository) PatchTimes(ctx context.Context, name string, creation, access, modify *time.Time) (int64, error) {
	const op = "repository.sqliteFileRepository.PatchTimes"

	return r.exec(ctx, op, r.stmts.patchTimes, name, creation, access, modify)
}

func (r *sqliteFileRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var affected int64
	err := r.pool.With(ctx, func(conn *zsqlite.Conn) error {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: sqliteArgs(args)}); err != nil {
			return err
		}
		affected = int64(conn.Changes())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

func (r *sqliteFileRepository) query(conn *zsqlite.Conn, query string, args ...any) ([]*models.File, error) {
	var files []*models.File
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: sqliteArgs(args),
		ResultFunc: func(stmt *zsqlite.Stmt) error {
			files = append(files, r.mapper.Load(r.readRow(stmt)))
			return nil
		},
	})
	return files, err
}

// readRow converts the current result row into a generic keyed row,
// parsing timestamp columns back into time values.
func (r *sqliteFileRepository) readRow(stmt *zsqlite.Stmt) models.Row {
	row := make(models.Row, stmt.ColumnCount())
	for i := 0; i < stmt.ColumnCount(); i++ {
		name := stmt.ColumnName(i)
		switch stmt.ColumnType(i) {
		case zsqlite.TypeNull:
			row[name] = nil
		case zsqlite.TypeInteger:
			row[name] = stmt.ColumnInt64(i)
		case zsqlite.TypeFloat:
			row[name] = stmt.ColumnFloat(i)
		case zsqlite.TypeBlob:
			buf := make([]byte, stmt.ColumnLen(i))
			stmt.ColumnBytes(i, buf)
			row[name] = buf
		default:
			text := stmt.ColumnText(i)
			if typ, ok := r.mapper.TypeOf(name); ok && typ == schema.TypeTimestamp {
				ts, err := time.Parse(time.RFC3339Nano, text)
				if err == nil {
					row[name] = ts
					continue
				}
			}
			row[name] = text
		}
	}
	return row
}

// sqliteArgs converts values to the types sqlitex binds.
func sqliteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			out[i] = v.UTC().Format(time.RFC3339Nano)
		case *time.Time:
			if v == nil {
				out[i] = nil
			} else {
				out[i] = v.UTC().Format(time.RFC3339Nano)
			}
		case uint8:
			out[i] = int64(v)
		case int32:
			out[i] = int64(v)
		default:
			out[i] = a
		}
	}
	return out
}
