package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/internal/repository"
	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/S1riyS/sqlfs/pkg/logging/slogext"
)

const (
	// AppendOffset as a write offset appends at the end of the content.
	AppendOffset int64 = -1

	FileSystemName     = "SQLFS"
	MaxComponentLength = 256

	VolumeFeatures = models.FeatureCasePreservedNames |
		models.FeatureCaseSensitiveSearch |
		models.FeaturePersistentAcls |
		models.FeatureSupportsRemoteStorage |
		models.FeatureUnicodeOnDisk
)

// FileSystemService maps driver requests onto the file repository. Every
// operation returns a status and never panics.
type FileSystemService interface {
	CreateFile(ctx context.Context, name string, access models.FileAccess, mode models.FileMode, attributes models.FileAttributes, info *models.OpenInfo) kerrors.Status
	Cleanup(ctx context.Context, name string, info *models.OpenInfo) kerrors.Status
	CloseFile(ctx context.Context, name string, info *models.OpenInfo) kerrors.Status
	ReadFile(ctx context.Context, name string, buffer []byte, offset int64) (int, kerrors.Status)
	WriteFile(ctx context.Context, name string, data []byte, offset int64) (int, kerrors.Status)
	FlushFileBuffers(ctx context.Context, name string) kerrors.Status
	GetFileInformation(ctx context.Context, name string) (models.FileInformation, kerrors.Status)
	FindFiles(ctx context.Context, name string) ([]models.FileInformation, kerrors.Status)
	FindFilesWithPattern(ctx context.Context, name, pattern string) ([]models.FileInformation, kerrors.Status)
	SetFileAttributes(ctx context.Context, name string, attributes models.FileAttributes, info *models.OpenInfo) kerrors.Status
	SetFileTime(ctx context.Context, name string, creation, access, modify *time.Time) kerrors.Status
	DeleteFile(ctx context.Context, name string) kerrors.Status
	DeleteDirectory(ctx context.Context, name string) kerrors.Status
	MoveFile(ctx context.Context, oldName, newName string, replace bool) kerrors.Status
	SetEndOfFile(ctx context.Context, name string, length int64) kerrors.Status
	SetAllocationSize(ctx context.Context, name string, length int64) kerrors.Status
	LockFile(ctx context.Context, name string, offset, length int64) kerrors.Status
	UnlockFile(ctx context.Context, name string, offset, length int64) kerrors.Status
	GetDiskFreeSpace(ctx context.Context) (models.DiskSpace, kerrors.Status)
	GetVolumeInformation(ctx context.Context) (models.VolumeInformation, kerrors.Status)
	GetFileSecurity(ctx context.Context, name string) (*security.Descriptor, kerrors.Status)
	SetFileSecurity(ctx context.Context, name string, descriptor *security.Descriptor) kerrors.Status
	Mounted(ctx context.Context) kerrors.Status
	Unmounted(ctx context.Context) kerrors.Status
	FindStreams(ctx context.Context, name string) ([]models.FileInformation, kerrors.Status)
}

type Options struct {
	VolumeLabel  string
	SerialNumber uint32
	TotalSpace   int64
	FreeSpace    int64
	Security     *security.Descriptor
	Clock        func() time.Time
}

type fileSystemService struct {
	repo    repository.FileRepository
	factory models.FileFactory
	opts    Options
}

func NewFileSystemService(repo repository.FileRepository, factory models.FileFactory, opts Options) FileSystemService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Security == nil {
		opts.Security = security.Default()
	}
	if opts.VolumeLabel == "" {
		opts.VolumeLabel = FileSystemName
	}
	return &fileSystemService{
		repo:    repo,
		factory: factory,
		opts:    opts,
	}
}

func (s *fileSystemService) now() time.Time {
	return s.opts.Clock().UTC()
}

// lookup returns the stored file or nil when absent.
func (s *fileSystemService) lookup(ctx context.Context, key string) (*models.File, error) {
	f, err := s.repo.Lookup(ctx, key)
	if err != nil {
		return nil, kerrors.Unexpected("lookup "+key, err)
	}
	return f, nil
}

// affected converts a mutation result into an error unless it changed at
// least one row.
func affected(what string, n int64, err error) error {
	if err != nil {
		return kerrors.Unexpected(what, err)
	}
	if n <= 0 {
		return kerrors.StorageFailure(what + " affected no rows")
	}
	return nil
}

// statusOf logs err at a level matching its kind and reports its status.
func statusOf(logger *slog.Logger, err error) kerrors.Status {
	if err == nil {
		return kerrors.StatusSuccess
	}
	switch kerrors.KindOf(err) {
	case kerrors.KindStorageFailure, kerrors.KindUnexpectedFailure:
		logger.Error("Operation failed", slogext.Err(err))
	default:
		logger.Debug("Operation rejected", slogext.Err(err))
	}
	return kerrors.StatusOf(err)
}

// recoverStatus turns a panic into an internal error status.
func recoverStatus(logger *slog.Logger, status *kerrors.Status) {
	if p := recover(); p != nil {
		logger.Error("Operation panicked", slogext.Err(fmt.Errorf("panic: %v", p)))
		*status = kerrors.StatusInternalError
	}
}
