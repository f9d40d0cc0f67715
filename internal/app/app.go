// Package app assembles the storefront backends, shared by the API server
// and the storectl command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/filestore"
	"storefront/internal/remote"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/tracing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App owns every long-lived collaborator
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Remote    *remote.Client
	Files     *filestore.Store
	Repos     *repository.Repositories
	Services  *service.Services
	Publisher events.Publisher
	Tokens    *service.TokenService
	// Redis is nil when no host is configured
	Redis *redis.Client

	shutdownTracing tracing.Shutdown
}

// Options tune New for the command that runs it
type Options struct {
	// TraceOutput receives exported spans when tracing is enabled
	TraceOutput io.Writer
	// SkipMigrations leaves the remote schema alone regardless of config
	SkipMigrations bool
}

// New wires the backends. A configured but unreachable remote is not an
// error: repositories fall back to the file store until it answers.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	shutdownTracing, err := tracing.Init(cfg.Tracing, opts.TraceOutput, logger)
	if err != nil {
		return nil, err
	}

	client, err := remote.New(ctx, cfg.Remote, logger)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	if client.Configured() && cfg.Remote.Migrate && !opts.SkipMigrations {
		if err := Migrate(ctx, client, logger); err != nil {
			logger.Warn("Remote migrations failed, reads fall back to the file store", zap.Error(err))
		}
	}

	files := filestore.New(cfg.Store.DataPath(), logger)
	if err := files.Ensure(ctx); err != nil {
		client.Close()
		_ = files.Close()
		_ = shutdownTracing(ctx)
		return nil, err
	}
	if cfg.Store.Ephemeral {
		logger.Warn("Using an ephemeral file store", zap.String("path", files.Path()))
	}

	repos := repository.New(repository.Deps{
		Remote: client,
		Files:  files,
		Logger: logger,
		Probe: repository.ProbePolicy{
			Initial: cfg.Remote.ProbeInitial,
			Max:     cfg.Remote.ProbeMax,
		},
	})

	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	a := &App{
		Config:          cfg,
		Logger:          logger,
		Remote:          client,
		Files:           files,
		Repos:           repos,
		Services:        service.New(repos, publisher, logger),
		Publisher:       publisher,
		Tokens:          service.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute),
		shutdownTracing: shutdownTracing,
	}

	if cfg.RedisEnabled() {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return a, nil
}

// Migrate applies the embedded schema to the remote database
func Migrate(ctx context.Context, client *remote.Client, logger *zap.Logger) error {
	if !client.Configured() {
		return remote.ErrNotConfigured
	}
	db := database.OpenDB(client.Pool())
	defer db.Close()
	return database.RunMigrations(ctx, db, logger)
}

// Health is the state reported by the health endpoint
type Health struct {
	Status   string            `json:"status"`
	Remote   string            `json:"remote"`
	File     string            `json:"file"`
	Backends map[string]string `json:"backends"`
}

// Health checks both stores. The service is healthy as long as the file
// store is readable.
func (a *App) Health(ctx context.Context) Health {
	h := Health{Status: "ok", Remote: "unconfigured", File: "ok", Backends: map[string]string{}}

	if a.Remote.Configured() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := a.Remote.Ping(pingCtx); err != nil {
			h.Remote = "unreachable"
		} else {
			h.Remote = "ok"
		}
	}

	if _, err := a.Files.Read(ctx); err != nil {
		var corrupt *filestore.CorruptStoreError
		if errors.As(err, &corrupt) {
			h.File = "reset"
		} else {
			h.File = "unavailable"
			h.Status = "degraded"
		}
	}

	for name, backend := range a.Repos.Backends() {
		h.Backends[name] = backend.String()
	}
	return h
}

// Close releases every collaborator, flushing pending file writes first
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := a.Files.Close(); err != nil {
		errs = append(errs, fmt.Errorf("file store: %w", err))
	}
	if err := a.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher: %w", err))
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	a.Remote.Close()
	if err := a.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	return errors.Join(errs...)
}
