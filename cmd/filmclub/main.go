package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"filmclub/internal/api"
	"filmclub/internal/config"
	"filmclub/internal/service"
	"filmclub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	validate := validator.New()

	filmStore, userStore, cleanup, err := buildStores(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	films := service.NewFilmService(filmStore, userStore, validate, logger)
	users := service.NewUserService(userStore, validate, logger)
	genres := service.NewGenreService(filmStore, logger)
	mpa := service.NewMPAService(filmStore, logger)

	handler := api.NewHandler(films, users, genres, mpa, logger,
		cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting",
			slog.String("addr", cfg.Server.Addr()),
			slog.String("backend", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server stopped")
	}
}

// buildStores constructs the storage backend selected in the configuration.
// The returned cleanup closes the database connection for the relational
// backend and is a no-op for the in-memory one.
func buildStores(cfg *config.Config, logger *slog.Logger) (store.FilmStore, store.UserStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := connectDB(cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			logger.Info("closing database connection")
			if err := db.Close(); err != nil {
				logger.Error("failed to close database connection", slog.String("error", err.Error()))
			}
		}
		filmStore, err := store.NewPostgresFilmStore(db, logger)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		userStore, err := store.NewPostgresUserStore(db, logger)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		return filmStore, userStore, cleanup, nil
	default:
		filmStore := store.NewMemoryFilmStore()
		return filmStore, store.NewMemoryUserStore(filmStore), func() {}, nil
	}
}

func connectDB(cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	logger.Info("connected to PostgreSQL")
	return db, nil
}
