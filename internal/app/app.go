package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-token-auth/internal/config"
	"go-token-auth/internal/database"
	"go-token-auth/internal/handler"
	"go-token-auth/internal/middleware"
	"go-token-auth/internal/model"
	"go-token-auth/internal/repository"
	"go-token-auth/internal/router"
	"go-token-auth/internal/service"
)

// userStore is what the app needs from either store driver.
type userStore interface {
	service.UserStore
	Create(ctx context.Context, u model.User) error
	Ping(ctx context.Context) error
}

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.SeedUserEmail != "" {
		created, err := service.SeedUser(ctx, store, cfg.SeedUserEmail, cfg.SeedUserPassword, cfg.BcryptCost)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		if created {
			slog.Info("seed user created", "email", cfg.SeedUserEmail)
		}
	}

	issuer, err := service.NewTokenIssuer(service.TokenIssuerConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenLife,
		RefreshTTL:    cfg.RefreshTokenLife,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	verifier := service.NewCredentialVerifier(store, service.BcryptMatcher)
	authService := service.NewAuthService(store, verifier, issuer, time.Now)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, authMiddleware, authHandler, store),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){cleanup},
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (userStore, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory user store; data is lost on restart")
		return repository.NewMemoryUserRepository(), func() {}, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("database ready")
	return newPostgresStore(db), db.Close, nil
}

// postgresStore answers the health probe from the pool that backs the users.
type postgresStore struct {
	*repository.UserRepository
	db *database.DB
}

func newPostgresStore(db *database.DB) *postgresStore {
	return &postgresStore{UserRepository: repository.NewUserRepository(db.Pool), db: db}
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Close the store only once in-flight requests are done with it.
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
