package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	account "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/credentials"
	accountmemory "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/memory"
	accountpostgres "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/postgres"
	tokenadapter "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/token"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/commands"
	accountentities "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	accounterrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	annotation "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/adapters/blobstore"
	annotationmemory "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/adapters/memory"
	annotationpostgres "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/adapters/postgres"
	"github.com/MF-patino/HerculaneumTranscriptor/internal/platform/config"
	"github.com/MF-patino/HerculaneumTranscriptor/internal/platform/db"
	"github.com/MF-patino/HerculaneumTranscriptor/internal/platform/httpserver"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 15 * time.Second

type migrator interface {
	Migrate(ctx context.Context) error
}

// Runtime is the wired module graph shared by the API process and the
// admin CLI.
type Runtime struct {
	Config     config.Config
	Logger     *slog.Logger
	Accounts   account.Module
	Annotation annotation.Module

	postgres  *db.Postgres
	migrators []migrator
}

type APIApp struct {
	runtime *Runtime
	server  *httpserver.Server
	logger  *slog.Logger
}

func BuildRuntime(ctx context.Context, process string) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg).With("service", cfg.ServiceName, "process", process)

	rt := &Runtime{Config: cfg, Logger: logger}
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		err = rt.wireMemory()
	default:
		err = rt.wirePostgres(ctx)
	}
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) wirePostgres(ctx context.Context) error {
	if strings.TrimSpace(rt.Config.PostgresDSN) == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(ctx, rt.Config.PostgresDSN)
	if err != nil {
		return err
	}
	rt.postgres = pg

	images, err := blobstore.NewLocalStore(rt.Config.ImageDir, rt.Logger)
	if err != nil {
		return err
	}
	tokens, err := tokenadapter.NewJWTService(
		rt.Config.JWTSecret,
		rt.Config.JWTIssuer,
		rt.Config.JWTTTL,
		accountpostgres.SystemClock{},
	)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, rt.Logger)
	rt.Accounts = account.NewModule(account.Dependencies{
		Users:    accountRepo,
		Hasher:   credentials.BcryptHasher{},
		Tokens:   tokens,
		Clock:    accountpostgres.SystemClock{},
		IDGen:    accountpostgres.UUIDGenerator{},
		PageSize: rt.Config.UserPageSize,
		Logger:   rt.Logger,
	})

	annotationRepo := annotationpostgres.NewRepository(pg.DB, rt.Logger)
	rt.Annotation = annotation.NewModule(annotation.Dependencies{
		Scrolls:     annotationRepo,
		Regions:     annotationRepo,
		Votes:       annotationRepo,
		Images:      images,
		Clock:       annotationpostgres.SystemClock{},
		IDGen:       annotationpostgres.UUIDGenerator{},
		VoteTimeout: rt.Config.VoteTimeout,
		Logger:      rt.Logger,
	})
	rt.migrators = []migrator{accountRepo, annotationRepo}
	return nil
}

// wireMemory keeps all state in process. Images stay in memory as well, so
// the mode suits local runs and demos only.
func (rt *Runtime) wireMemory() error {
	users := accountmemory.NewStore(nil)
	tokens, err := tokenadapter.NewJWTService(rt.Config.JWTSecret, rt.Config.JWTIssuer, rt.Config.JWTTTL, users)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}
	rt.Accounts = account.NewModule(account.Dependencies{
		Users:    users,
		Hasher:   credentials.BcryptHasher{},
		Tokens:   tokens,
		Clock:    users,
		IDGen:    users,
		PageSize: rt.Config.UserPageSize,
		Logger:   rt.Logger,
	})
	rt.Accounts.Store = users

	store := annotationmemory.NewStore(nil, nil)
	rt.Annotation = annotation.NewModule(annotation.Dependencies{
		Scrolls:     store,
		Regions:     store,
		Votes:       store,
		Images:      store,
		Clock:       store,
		IDGen:       store,
		VoteTimeout: rt.Config.VoteTimeout,
		Logger:      rt.Logger,
	})
	rt.Annotation.Store = store
	return nil
}

// Migrate creates or updates the schema of every postgres-backed module.
// It is a no-op for in-memory storage.
func (rt *Runtime) Migrate(ctx context.Context) error {
	for _, m := range rt.migrators {
		if err := m.Migrate(ctx); err != nil {
			return err
		}
	}
	rt.Logger.Info("schema migrated",
		"event", "bootstrap_schema_migrated",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"driver", rt.Config.StorageDriver,
	)
	return nil
}

// ReconcileRoot aligns the stored root account with ROOT_USERNAME and
// ROOT_PASSWORD.
func (rt *Runtime) ReconcileRoot(ctx context.Context) (accountentities.RootReconciliation, error) {
	return rt.Accounts.Root.Execute(ctx, commands.ReconcileRootCommand{
		Username: rt.Config.RootUsername,
		Password: rt.Config.RootPassword,
	})
}

func (rt *Runtime) Close() error {
	if rt.postgres != nil {
		return rt.postgres.Close()
	}
	return nil
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	rt, err := BuildRuntime(ctx, "api")
	if err != nil {
		return nil, err
	}
	if rt.Config.AutoMigrate {
		if err := rt.Migrate(ctx); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	if _, err := rt.ReconcileRoot(ctx); err != nil {
		if !errors.Is(err, accounterrors.ErrRootNotConfigured) {
			_ = rt.Close()
			return nil, fmt.Errorf("reconcile root account: %w", err)
		}
		rt.Logger.Warn("root account not configured",
			"event", "bootstrap_root_not_configured",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	server := httpserver.New(rt.Accounts, rt.Annotation, rt.Logger, normalizeAddr(rt.Config.HTTPPort))
	return &APIApp{
		runtime: rt,
		server:  server,
		logger:  rt.Logger,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	if a.runtime != nil {
		return a.runtime.Close()
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options))
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
