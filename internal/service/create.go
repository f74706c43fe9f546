package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/S1riyS/sqlfs/internal/fspath"
	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/pkg/logging"
)

func (s *fileSystemService) CreateFile(
	ctx context.Context,
	name string,
	access models.FileAccess,
	mode models.FileMode,
	attributes models.FileAttributes,
	info *models.OpenInfo,
) (status kerrors.Status) {
	const op = "service.fileSystemService.CreateFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	if info == nil {
		info = &models.OpenInfo{}
	}

	logger.Debug("CreateFile",
		slog.String("name", name),
		slog.String("mode", mode.String()),
		slog.Bool("is_directory", info.IsDirectory),
	)

	if fspath.IsRoot(name) {
		info.IsDirectory = true
		return kerrors.StatusSuccess
	}

	key := fspath.Normalize(name)
	if info.IsDirectory {
		return statusOf(logger, s.openDirectory(ctx, key, mode, info))
	}
	return statusOf(logger, s.openFile(ctx, key, access, mode, info))
}

func (s *fileSystemService) openDirectory(ctx context.Context, key string, mode models.FileMode, info *models.OpenInfo) error {
	switch mode {
	case models.ModeOpen:
		f, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if f == nil {
			return kerrors.NotFound(kerrors.StatusPathNotFound, "directory "+key)
		}
		if !f.IsDirectory() {
			return kerrors.TypeMismatch(kerrors.StatusNotADirectory, key+" is a file")
		}
		info.Context = f
		return nil

	case models.ModeCreateNew:
		existing, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return kerrors.AlreadyExists(key)
		}

		dir := s.factory.Blank(key)
		dir.SetDirectory(true)
		n, err := s.repo.Insert(ctx, dir, false)
		if err := affected("insert directory "+key, n, err); err != nil {
			return err
		}
		info.Context = dir
		return nil

	default:
		// Directories have no content to truncate or recreate.
		return nil
	}
}

func (s *fileSystemService) openFile(ctx context.Context, key string, access models.FileAccess, mode models.FileMode, info *models.OpenInfo) error {
	switch mode {
	case models.ModeOpen:
		f, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if f == nil {
			return kerrors.NotFound(kerrors.StatusFileNotFound, key)
		}
		if f.IsDirectory() && access.Has(models.AccessDelete) && !access.Has(models.AccessSynchronize) {
			return kerrors.AccessDenied("delete of directory " + key + " through a file handle")
		}
		s.attach(info, f)
		return nil

	case models.ModeCreateNew:
		existing, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return kerrors.AlreadyExists(key)
		}
		return s.createFresh(ctx, key, false, info)

	case models.ModeCreate:
		return s.createFresh(ctx, key, true, info)

	case models.ModeTruncate:
		f, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if f == nil {
			return kerrors.NotFound(kerrors.StatusFileNotFound, key)
		}
		if err := s.setLength(ctx, f, 0); err != nil {
			return err
		}
		s.attach(info, f)
		return nil

	case models.ModeOpenOrCreate:
		f, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if f == nil {
			n, err := s.repo.Insert(ctx, s.factory.Blank(key), false)
			if err := affected("insert "+key, n, err); err != nil {
				return err
			}
			if f, err = s.lookup(ctx, key); err != nil {
				return err
			}
		}
		if f == nil {
			return kerrors.NotFound(kerrors.StatusFileNotFound, key)
		}
		s.attach(info, f)
		return nil

	case models.ModeAppend:
		f, err := s.lookup(ctx, key)
		if err != nil {
			return err
		}
		if f == nil {
			return kerrors.NotFound(kerrors.StatusFileNotFound, key)
		}
		s.attach(info, f)
		return nil

	default:
		return kerrors.Unexpected("open "+key, fmt.Errorf("unsupported mode %d", mode))
	}
}

// createFresh stores a blank file at key, replacing any existing entry
// when replace is set, and attaches the stored copy.
func (s *fileSystemService) createFresh(ctx context.Context, key string, replace bool, info *models.OpenInfo) error {
	n, err := s.repo.Insert(ctx, s.factory.Blank(key), replace)
	if err := affected("insert "+key, n, err); err != nil {
		return err
	}

	f, err := s.lookup(ctx, key)
	if err != nil {
		return err
	}
	if f == nil {
		return kerrors.NotFound(kerrors.StatusFileNotFound, key)
	}
	s.attach(info, f)
	return nil
}

func (s *fileSystemService) attach(info *models.OpenInfo, f *models.File) {
	info.Context = f
	info.IsDirectory = f.IsDirectory()
}

func (s *fileSystemService) Cleanup(ctx context.Context, name string, info *models.OpenInfo) kerrors.Status {
	return kerrors.StatusSuccess
}

func (s *fileSystemService) CloseFile(ctx context.Context, name string, info *models.OpenInfo) kerrors.Status {
	if info != nil {
		info.Context = nil
	}
	return kerrors.StatusSuccess
}
