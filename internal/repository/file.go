package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/mapper"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/pkg/database/postgresql"
	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/jackc/pgx/v5"
)

type fileRepository struct {
	db     postgresql.Client
	mapper *mapper.FileMapper
	stmts  *statements
}

var (
	_ FileRepository = (*fileRepository)(nil)
	_ TableManager   = (*fileRepository)(nil)
)

type PostgresRepository interface {
	FileRepository
	TableManager
}

// NewFileRepository returns a PostgreSQL backed repository storing files
// in table.
func NewFileRepository(db postgresql.Client, m *mapper.FileMapper, table string) (PostgresRepository, error) {
	stmts, err := newStatements(postgresDialect, table, m.Schema())
	if err != nil {
		return nil, err
	}
	return &fileRepository{db: db, mapper: m, stmts: stmts}, nil
}

func (r *fileRepository) CreateTable(ctx context.Context) error {
	const op = "repository.fileRepository.CreateTable"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	db := postgresql.GetDBClient(ctx, r.db)
	if _, err := db.Exec(ctx, r.stmts.createTable); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("Table ready", slog.String("table", r.stmts.table.Name))
	return nil
}

func (r *fileRepository) DropTable(ctx context.Context) error {
	const op = "repository.fileRepository.DropTable"

	db := postgresql.GetDBClient(ctx, r.db)
	if _, err := db.Exec(ctx, r.stmts.dropTable); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *fileRepository) Lookup(ctx context.Context, name string) (*models.File, error) {
	const op = "repository.fileRepository.Lookup"

	files, err := r.query(ctx, r.stmts.lookup, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

func (r *fileRepository) FindByPrefix(ctx context.Context, prefix, pattern string) ([]*models.File, error) {
	const op = "repository.fileRepository.FindByPrefix"

	files, err := r.query(ctx, r.stmts.findByPrefix, fspath.LiteralPrefix(prefix), likePattern(pattern))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return files, nil
}

func (r *fileRepository) Insert(ctx context.Context, file *models.File, replace bool) (int64, error) {
	const op = "repository.fileRepository.Insert"

	args, err := r.mapper.Values(file, r.stmts.columns)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := r.stmts.insert
	if replace {
		query = r.stmts.upsert
	}
	return r.exec(ctx, op, query, pgArgs(args)...)
}

func (r *fileRepository) Save(ctx context.Context, file *models.File) (int64, error) {
	const op = "repository.fileRepository.Save"

	values, err := r.valueMap(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return r.exec(ctx, op, r.stmts.save, pgArgs(saveArgs(r.mapper.Schema(), values))...)
}

func (r *fileRepository) Delete(ctx context.Context, name string) (int64, error) {
	const op = "repository.fileRepository.Delete"

	return r.exec(ctx, op, r.stmts.deleteByName, name)
}

func (r *fileRepository) Rename(ctx context.Context, oldName, newName string, replace bool) (int64, error) {
	const op = "repository.fileRepository.Rename"

	// Onto itself the destination exists, so the guarded update is a no-op.
	if !replace || oldName == newName {
		return r.exec(ctx, op, r.stmts.rename, oldName, newName)
	}

	var affected int64
	err := postgresql.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		source, err := r.Lookup(ctx, oldName)
		if err != nil || source == nil {
			return err
		}
		if _, err := r.exec(ctx, op, r.stmts.deleteByName, newName); err != nil {
			return err
		}
		affected, err = r.exec(ctx, op, r.stmts.rename, oldName, newName)
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *fileRepository) PatchFlags(ctx context.Context, name string, flags models.Flags) (int64, error) {
	const op = "repository.fileRepository.PatchFlags"

	return r.exec(ctx, op, r.stmts.patchFlags, name, int16(flags))
}

func (r *fileRepository) PatchTimes(ctx context.Context, name string, creation, access, modify *time.Time) (int64, error) {
	const op = "repository.fileRepository.PatchTimes"

	return r.exec(ctx, op, r.stmts.patchTimes, name, creation, access, modify)
}

func (r *fileRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	db := postgresql.GetDBClient(ctx, r.db)
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		if postgresql.IsUniqueViolation(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

func (r *fileRepository) query(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	db := postgresql.GetDBClient(ctx, r.db)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, r.mapper.Load(row))
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) valueMap(file *models.File) (map[string]any, error) {
	values, err := r.mapper.Values(file, r.stmts.columns)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, len(values))
	for i, c := range r.stmts.columns {
		m[c] = values[i]
	}
	return m, nil
}

// scanRow reads the current row into a generic keyed row.
func scanRow(rows pgx.Rows) (models.Row, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	row := make(models.Row, len(values))
	for i, fd := range rows.FieldDescriptions() {
		row[fd.Name] = values[i]
	}
	return row, nil
}

// pgArgs widens unsigned bytes, which have no PostgreSQL type.
func pgArgs(args []any) []any {
	for i, a := range args {
		if v, ok := a.(uint8); ok {
			args[i] = int16(v)
		}
	}
	return args
}
