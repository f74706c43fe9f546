// Package security resolves the static security descriptor every entry
// of the volume reports.
package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/S1riyS/sqlfs/pkg/logging"
	"golang.org/x/sys/unix"
)

type Kind int

const (
	KindDirectory Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "directory"
}

// Descriptor is captured once and shared by every request.
type Descriptor struct {
	Kind   Kind
	Source string
	Mode   uint32 // permission bits only
	UID    uint32
	GID    uint32
}

// Default is a directory template owned by the current process.
func Default() *Descriptor {
	return &Descriptor{
		Kind: KindDirectory,
		Mode: 0o755,
		UID:  uint32(os.Getuid()),
		GID:  uint32(os.Getgid()),
	}
}

// Load builds the descriptor from the template at path. A regular file
// yields a file template; anything else a directory template. An empty or
// missing path falls back to Default.
func Load(ctx context.Context, path string) (*Descriptor, error) {
	const op = "security.Load"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	if path == "" {
		return Default(), nil
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			logger.Warn("Security template not found, using default", slog.String("path", path))
			return Default(), nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := &Descriptor{
		Kind:   KindDirectory,
		Source: path,
		Mode:   uint32(st.Mode) & 0o7777,
		UID:    st.Uid,
		GID:    st.Gid,
	}
	if uint32(st.Mode)&unix.S_IFMT == unix.S_IFREG {
		d.Kind = KindFile
	}

	logger.Info("Loaded security template",
		slog.String("path", path),
		slog.String("kind", d.Kind.String()),
	)
	return d, nil
}

// FileMode returns the permission bits for a file or directory entry.
// Execute bits are dropped for files when the template is a directory.
func (d *Descriptor) FileMode(isDirectory bool) uint32 {
	if isDirectory {
		if d.Kind == KindFile {
			return d.Mode | 0o111
		}
		return d.Mode
	}
	if d.Kind == KindDirectory {
		return d.Mode &^ 0o111
	}
	return d.Mode
}
