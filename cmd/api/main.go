package main

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

	"github.com/joho/godotenv"

	"github.com/mealmafia/mealmafia-go/internal/config"
	"github.com/mealmafia/mealmafia-go/internal/repository"
	"github.com/mealmafia/mealmafia-go/internal/router"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	users, meals, closeStore, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("storage unavailable", "driver", cfg.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sessions, err := service.NewSessionService(cfg.TokenSecret, cfg.TokenExpiry)
	if err != nil {
		slog.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Deps{
			Users:       service.NewUserService(users),
			Meals:       service.NewMealService(meals),
			Sessions:    sessions,
			Production:  cfg.IsProduction(),
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openStores connects the configured storage driver and returns its user and
// meal stores with a function that releases the connection.
func openStores(ctx context.Context, cfg config.Config) (service.UserStore, service.MealStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := repository.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.DBName)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("mongo disconnect failed", "error", err)
			}
		}
		return repository.NewUserRepository(db), repository.NewMealRepository(db), closeFn, nil

	case config.DriverMySQL:
		db, err := repository.NewDB(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		closeFn := func() { db.Close() }
		return repository.NewMySQLUserRepository(db), repository.NewMySQLMealRepository(db), closeFn, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Users(), store.Meals(), func() {}, nil
	}

	return nil, nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
}
