package service

import (
	"context"
	"log/slog"

	"github.com/S1riyS/sqlfs/internal/models"
	"github.com/S1riyS/sqlfs/internal/pkg/kerrors"
	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/S1riyS/sqlfs/pkg/logging"
)

// GetDiskFreeSpace reports the configured figures, not actual usage.
func (s *fileSystemService) GetDiskFreeSpace(ctx context.Context) (models.DiskSpace, kerrors.Status) {
	return models.DiskSpace{
		FreeBytesAvailable: s.opts.FreeSpace,
		TotalBytes:         s.opts.TotalSpace,
		TotalFreeBytes:     s.opts.FreeSpace,
	}, kerrors.StatusSuccess
}

func (s *fileSystemService) GetVolumeInformation(ctx context.Context) (models.VolumeInformation, kerrors.Status) {
	return models.VolumeInformation{
		VolumeLabel:        s.opts.VolumeLabel,
		SerialNumber:       s.opts.SerialNumber,
		MaxComponentLength: MaxComponentLength,
		Features:           VolumeFeatures,
		FileSystemName:     FileSystemName,
	}, kerrors.StatusSuccess
}

func (s *fileSystemService) GetFileSecurity(ctx context.Context, name string) (*security.Descriptor, kerrors.Status) {
	return s.opts.Security, kerrors.StatusSuccess
}

// SetFileSecurity accepts and discards the descriptor.
func (s *fileSystemService) SetFileSecurity(ctx context.Context, name string, descriptor *security.Descriptor) kerrors.Status {
	return kerrors.StatusSuccess
}

func (s *fileSystemService) Mounted(ctx context.Context) kerrors.Status {
	const op = "service.fileSystemService.Mounted"

	logging.GetLoggerFromContextWithOp(ctx, op).Info("Volume mounted", slog.String("label", s.opts.VolumeLabel))
	return kerrors.StatusSuccess
}

func (s *fileSystemService) Unmounted(ctx context.Context) kerrors.Status {
	const op = "service.fileSystemService.Unmounted"

	logging.GetLoggerFromContextWithOp(ctx, op).Info("Volume unmounted", slog.String("label", s.opts.VolumeLabel))
	return kerrors.StatusSuccess
}
