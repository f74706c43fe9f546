package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/pkg/logging"
)

func (s *fileSystemService) FindFiles(ctx context.Context, name string) ([]models.FileInformation, kerrors.Status) {
	return s.FindFilesWithPattern(ctx, name, "")
}

// FindFilesWithPattern lists every stored entry whose key starts with the
// normalized path joined with pattern. Listing is by key prefix, so nested
// entries are included.
func (s *fileSystemService) FindFilesWithPattern(ctx context.Context, name, pattern string) (files []models.FileInformation, status kerrors.Status) {
	const op = "service.fileSystemService.FindFilesWithPattern"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	prefix, wildcard := fspath.SearchPrefix(name, pattern)
	logger.Debug("FindFiles", slog.String("prefix", prefix), slog.String("pattern", wildcard))

	found, err := s.repo.FindByPrefix(ctx, prefix, wildcard)
	if err != nil {
		return nil, statusOf(logger, kerrors.Unexpected("find "+wildcard, err))
	}

	files = make([]models.FileInformation, 0, len(found))
	for _, f := range found {
		files = append(files, f.Information())
	}
	return files, kerrors.StatusSuccess
}

func (s *fileSystemService) SetFileAttributes(ctx context.Context, name string, attributes models.FileAttributes, info *models.OpenInfo) (status kerrors.Status) {
	const op = "service.fileSystemService.SetFileAttributes"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	key := fspath.Normalize(name)
	f, err := s.lookup(ctx, key)
	if err != nil {
		return statusOf(logger, err)
	}
	if f == nil {
		return statusOf(logger, kerrors.NotFound(kerrors.StatusFileNotFound, key))
	}

	isDirectory := attributes&models.AttributeDirectory != 0 || (info != nil && info.IsDirectory)
	f.SetDirectory(isDirectory)

	n, err := s.repo.PatchFlags(ctx, key, f.Flags)
	if err := affected("patch flags "+key, n, err); err != nil {
		return statusOf(logger, err)
	}

	if info != nil && info.Context != nil {
		info.Context.Flags = f.Flags
	}
	return kerrors.StatusSuccess
}

func (s *fileSystemService) SetFileTime(ctx context.Context, name string, creation, access, modify *time.Time) (status kerrors.Status) {
	const op = "service.fileSystemService.SetFileTime"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	key := fspath.Normalize(name)
	n, err := s.repo.PatchTimes(ctx, key, creation, access, modify)
	return statusOf(logger, affected("patch times "+key, n, err))
}

func (s *fileSystemService) DeleteFile(ctx context.Context, name string) (status kerrors.Status) {
	const op = "service.fileSystemService.DeleteFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	key := fspath.Normalize(name)
	logger.Debug("DeleteFile", slog.String("name", key))

	n, err := s.repo.Delete(ctx, key)
	return statusOf(logger, affected("delete "+key, n, err))
}

// DeleteDirectory removes the directory entry only. Entries below it stay
// in storage and remain visible to prefix enumeration.
func (s *fileSystemService) DeleteDirectory(ctx context.Context, name string) (status kerrors.Status) {
	const op = "service.fileSystemService.DeleteDirectory"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	key := fspath.Normalize(name)
	logger.Debug("DeleteDirectory", slog.String("name", key))

	childPrefix := fspath.Join(key, "")
	children, err := s.repo.FindByPrefix(ctx, childPrefix, childPrefix+"*")
	if err != nil {
		return statusOf(logger, kerrors.Unexpected("find children of "+key, err))
	}
	if len(children) > 0 {
		logger.Warn("Deleting non-empty directory, children are orphaned",
			slog.String("name", key),
			slog.Int("children", len(children)),
		)
	}

	n, err := s.repo.Delete(ctx, key)
	return statusOf(logger, affected("delete "+key, n, err))
}

func (s *fileSystemService) MoveFile(ctx context.Context, oldName, newName string, replace bool) (status kerrors.Status) {
	const op = "service.fileSystemService.MoveFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	oldKey, newKey := fspath.Normalize(oldName), fspath.Normalize(newName)
	logger.Debug("MoveFile",
		slog.String("old_name", oldKey),
		slog.String("new_name", newKey),
		slog.Bool("replace", replace),
	)

	n, err := s.repo.Rename(ctx, oldKey, newKey, replace)
	return statusOf(logger, affected("rename "+oldKey+" to "+newKey, n, err))
}

func (s *fileSystemService) FindStreams(ctx context.Context, name string) ([]models.FileInformation, kerrors.Status) {
	return []models.FileInformation{}, kerrors.StatusSuccess
}
