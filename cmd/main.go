package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/S1riyS/sqlfs/internal/config"
	"github.com/S1riyS/sqlfs/internal/fuse"
	"github.com/S1riyS/sqlfs/internal/handler"
	"github.com/S1riyS/sqlfs/internal/mapper"
	"github.com/S1riyS/sqlfs/internal/middleware"
	"github.com/S1riyS/sqlfs/internal/repository"
	"github.com/S1riyS/sqlfs/internal/security"
	"github.com/S1riyS/sqlfs/internal/service"
	"github.com/S1riyS/sqlfs/pkg/database/postgresql"
	"github.com/S1riyS/sqlfs/pkg/database/sqlite"
	"github.com/S1riyS/sqlfs/pkg/logging"
	"github.com/S1riyS/sqlfs/pkg/logging/slogext"
	"github.com/S1riyS/sqlfs/pkg/logging/slogpretty"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

type store interface {
	repository.FileRepository
	repository.TableManager
}

func main() {
	if err := run(); err != nil {
		slog.Error("Exiting", slogext.Err(err))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	envPath := flag.String("env", ".env", "optional dotenv file loaded before the configuration")
	mountpoint := flag.String("mountpoint", "", "FUSE mountpoint, overrides mount.mountpoint")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envPath, err)
	}

	cfg := config.MustLoad(*configPath)
	if *mountpoint != "" {
		cfg.Mount.Mountpoint = *mountpoint
	}

	logger := setupLogger(cfg.App)
	slog.SetDefault(logger)

	// Root context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.MakeContextWithLogger(ctx, logger)

	// Dependencies
	m := mapper.NewFileMapper(mapper.NewFileSchema())

	repo, closeStore, err := openStore(ctx, cfg.Database, m)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	if err := repo.CreateTable(ctx); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	descriptor, err := security.Load(ctx, cfg.Volume.SecurityTemplate)
	if err != nil {
		return fmt.Errorf("load security template: %w", err)
	}

	svc := service.NewFileSystemService(repo, mapper.NewFactory(m, nil), service.Options{
		VolumeLabel:  cfg.Volume.Label,
		SerialNumber: uuid.New().ID(),
		TotalSpace:   cfg.Volume.TotalSpace,
		FreeSpace:    cfg.Volume.FreeSpace,
		Security:     descriptor,
	})

	// HTTP
	mux := http.NewServeMux()
	handler.NewHandler(svc).RegisterRoutes(mux)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.Port),
		Handler: middleware.LoggerMiddleware(logger)(
			middleware.RequestIDMiddleware(
				middleware.DetachMiddleware(mux),
			),
		),
		ReadHeaderTimeout: cfg.App.DefaultTimeout,
	}

	// FUSE
	var (
		mount  *fuse.Mount
		runErr error
	)
	if cfg.Mount.Mountpoint != "" {
		mount, err = fuse.NewMount(fuse.Options{
			Mountpoint: cfg.Mount.Mountpoint,
			Service:    svc,
			Security:   descriptor,
			AllowOther: cfg.Mount.AllowOther,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("mount volume: %w", err)
		}
		logger.Info("Volume mounted", slog.String("mountpoint", cfg.Mount.Mountpoint))
	} else {
		svc.Mounted(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serverErr:
		runErr = err
	}

	if mount != nil {
		if err := mount.Unmount(); err != nil {
			logger.Error("Failed to unmount volume", slogext.Err(err))
		}
	} else {
		svc.Unmounted(ctx)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", slogext.Err(err))
	}

	if runErr != nil {
		return fmt.Errorf("http server: %w", runErr)
	}
	return nil
}

// openStore connects the configured driver and returns the repository
// with a function releasing its connections.
func openStore(ctx context.Context, cfg config.DatabaseConfig, m *mapper.FileMapper) (store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgresql.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewFileRepository(pool, m, cfg.Table)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	case config.DriverSQLite:
		pool, err := sqlite.Open(ctx, sqlite.Config{
			Path:      cfg.Path,
			PoolSize:  cfg.PoolSize,
			OnConnect: repository.PrepareConn,
		})
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewSQLiteFileRepository(pool, m, cfg.Table)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, func() { pool.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func setupLogger(cfg config.AppConfig) *slog.Logger {
	if !cfg.PrettyLogs {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	}

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stdout))
}
