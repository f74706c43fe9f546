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

func (s *fileSystemService) ReadFile(ctx context.Context, name string, buffer []byte, offset int64) (read int, status kerrors.Status) {
	const op = "service.fileSystemService.ReadFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	logger.Debug("ReadFile",
		slog.String("name", name),
		slog.Int64("offset", offset),
		slog.Int("buffer_len", len(buffer)),
	)

	if fspath.IsRoot(name) {
		return 0, kerrors.StatusSuccess
	}

	key := fspath.Normalize(name)
	f, err := s.lookup(ctx, key)
	if err != nil {
		return 0, statusOf(logger, err)
	}
	if f == nil || f.IsDirectory() {
		return 0, statusOf(logger, kerrors.NotFound(kerrors.StatusFileNotFound, key))
	}

	// Offsets outside the content read nothing.
	if offset < 0 || offset >= f.Length() {
		return 0, kerrors.StatusSuccess
	}

	read = copy(buffer, f.Data[offset:])
	logger.Debug("Read successful", slog.Int("bytes_read", read))
	return read, kerrors.StatusSuccess
}

func (s *fileSystemService) WriteFile(ctx context.Context, name string, data []byte, offset int64) (written int, status kerrors.Status) {
	const op = "service.fileSystemService.WriteFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	logger.Debug("WriteFile",
		slog.String("name", name),
		slog.Int64("offset", offset),
		slog.Int("data_len", len(data)),
	)

	if fspath.IsRoot(name) {
		return 0, kerrors.StatusSuccess
	}

	key := fspath.Normalize(name)
	f, err := s.lookup(ctx, key)
	if err != nil {
		return 0, statusOf(logger, err)
	}
	if f == nil || f.IsDirectory() {
		return 0, statusOf(logger, kerrors.NotFound(kerrors.StatusFileNotFound, key))
	}

	if offset == AppendOffset {
		offset = f.Length()
	}
	if offset < 0 {
		return 0, statusOf(logger, kerrors.Unexpected("write "+key, fmt.Errorf("negative offset %d", offset)))
	}

	f.SetData(spliceAt(f.Data, data, offset))
	f.LastModifyTime = s.now()

	n, err := s.repo.Save(ctx, f)
	if err := affected("save "+key, n, err); err != nil {
		return 0, statusOf(logger, err)
	}

	logger.Debug("Write successful",
		slog.Int("bytes_written", len(data)),
		slog.Int64("length", f.Length()),
	)
	return len(data), kerrors.StatusSuccess
}

// spliceAt copies data into content at offset. The content grows when the
// write extends past its end and never shrinks.
func spliceAt(content, data []byte, offset int64) []byte {
	end := offset + int64(len(data))
	if end > int64(len(content)) {
		grown := make([]byte, end)
		copy(grown, content)
		content = grown
	}
	copy(content[offset:], data)
	return content
}

func (s *fileSystemService) FlushFileBuffers(ctx context.Context, name string) kerrors.Status {
	// Writes are persisted synchronously.
	return kerrors.StatusSuccess
}

func (s *fileSystemService) GetFileInformation(ctx context.Context, name string) (fi models.FileInformation, status kerrors.Status) {
	const op = "service.fileSystemService.GetFileInformation"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	if fspath.IsRoot(name) {
		return models.FileInformation{FileName: fspath.Root, Attributes: models.AttributeDirectory}, kerrors.StatusSuccess
	}

	key := fspath.Normalize(name)
	f, err := s.lookup(ctx, key)
	if err != nil {
		return fi, statusOf(logger, err)
	}
	if f == nil {
		return fi, statusOf(logger, kerrors.NotFound(kerrors.StatusFileNotFound, key))
	}
	return f.Information(), kerrors.StatusSuccess
}

func (s *fileSystemService) SetEndOfFile(ctx context.Context, name string, length int64) (status kerrors.Status) {
	const op = "service.fileSystemService.SetEndOfFile"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	defer recoverStatus(logger, &status)

	logger.Debug("SetEndOfFile", slog.String("name", name), slog.Int64("length", length))

	key := fspath.Normalize(name)
	f, err := s.lookup(ctx, key)
	if err != nil {
		return statusOf(logger, err)
	}
	if f == nil {
		return statusOf(logger, kerrors.NotFound(kerrors.StatusFileNotFound, key))
	}
	return statusOf(logger, s.setLength(ctx, f, length))
}

// setLength resizes the content to length, keeping the common prefix and
// zero filling any growth, then persists the file.
func (s *fileSystemService) setLength(ctx context.Context, f *models.File, length int64) error {
	if length < 0 {
		return kerrors.Unexpected("resize "+f.Name, fmt.Errorf("negative length %d", length))
	}

	if f.IsDirectory() {
		// Directory records are resized like files; the attribute stays.
		logging.GetLoggerFromContextWithOp(ctx, "service.fileSystemService.setLength").
			Debug("Resizing directory record", slog.String("name", f.Name), slog.Int64("length", length))
	}

	resized := make([]byte, length)
	copy(resized, f.Data)
	f.SetData(resized)
	f.LastModifyTime = s.now()

	n, err := s.repo.Save(ctx, f)
	return affected("save "+f.Name, n, err)
}

func (s *fileSystemService) SetAllocationSize(ctx context.Context, name string, length int64) kerrors.Status {
	return kerrors.StatusSuccess
}

func (s *fileSystemService) LockFile(ctx context.Context, name string, offset, length int64) kerrors.Status {
	return kerrors.StatusSuccess
}

func (s *fileSystemService) UnlockFile(ctx context.Context, name string, offset, length int64) kerrors.Status {
	return kerrors.StatusSuccess
}
