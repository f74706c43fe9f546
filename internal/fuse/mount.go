// Package fuse exposes the file system service as a FUSE mount.
package fuse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/S1riyS/sqlfs/internal/service"
	"github.com/S1riyS/sqlfs/pkg/logging"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

type Options struct {
	// Mountpoint is created when it does not exist.
	Mountpoint string

	Service service.FileSystemService

	// Security supplies owner and permission bits. Nil uses
	// security.Default.
	Security *security.Descriptor

	// AllowOther requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	Logger *slog.Logger
}

// Mount is a live FUSE mount of the volume.
type Mount struct {
	server  *fuse.Server
	options *Options
}

func NewMount(options Options) (*Mount, error) {
	const op = "fuse.NewMount"

	if options.Mountpoint == "" {
		return nil, errors.New("mountpoint is required")
	}
	if options.Service == nil {
		return nil, errors.New("service is required")
	}
	if options.Security == nil {
		options.Security = security.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("%s: creating mountpoint %s: %w", op, options.Mountpoint, err)
	}

	entryTimeout := time.Second
	attrTimeout := time.Second
	negativeTimeout := 100 * time.Millisecond

	root := &node{options: &options}
	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "sqlfs",
			Name:       "sqlfs",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: mounting at %s: %w", op, options.Mountpoint, err)
	}

	m := &Mount{server: server, options: &options}
	options.Service.Mounted(m.context(context.Background()))
	return m, nil
}

// Wait blocks until the mount is unmounted.
func (m *Mount) Wait() {
	m.server.Wait()
}

func (m *Mount) Unmount() error {
	if err := m.server.Unmount(); err != nil {
		return fmt.Errorf("fuse.Mount.Unmount: %w", err)
	}
	m.options.Service.Unmounted(m.context(context.Background()))
	return nil
}

func (m *Mount) context(ctx context.Context) context.Context {
	return requestContext(ctx, m.options)
}

// requestContext carries the mount logger and a fresh request id. Kernel
// interrupts do not cancel storage calls.
func requestContext(ctx context.Context, options *Options) context.Context {
	ctx = logging.MakeContextWithLogger(context.WithoutCancel(ctx), options.Logger)
	return logging.MakeContextWithNewRequestID(ctx)
}
