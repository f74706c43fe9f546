package repository

import (
	"context"
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
)

// FileRepository is the storage port of the file system. Lookups return
// nil, nil for absent keys; mutations report the number of affected rows.
type FileRepository interface {
	Lookup(ctx context.Context, name string) (*models.File, error)
	FindByPrefix(ctx context.Context, prefix, pattern string) ([]*models.File, error)
	Insert(ctx context.Context, file *models.File, replace bool) (int64, error)
	Save(ctx context.Context, file *models.File) (int64, error)
	Delete(ctx context.Context, name string) (int64, error)
	Rename(ctx context.Context, oldName, newName string, replace bool) (int64, error)
	PatchFlags(ctx context.Context, name string, flags models.Flags) (int64, error)
	PatchTimes(ctx context.Context, name string, creation, access, modify *time.Time) (int64, error)
}

type TableManager interface {
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error
}
