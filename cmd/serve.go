package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"citymap-server/handlers"
	"citymap-server/services"
	"citymap-server/utils/config"
	"citymap-server/utils/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	layerService, err := services.NewLayerService(ctx, repo)
	if err != nil {
		return fmt.Errorf("initial classification: %w", err)
	}

	store, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	sessionService := services.NewSessionService(store)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.AdminKeyHash, cfg.SessionTTL)
	if !authService.AdminEnabled() {
		l.Info("admin_disabled", "reason", "ADMIN_KEY_HASH not set")
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Config:   cfg,
		Layers:   layerService,
		Sessions: sessionService,
		Auth:     authService,
		Logger:   l,
	})
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		IdleTimeout: time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	l.Info("server_starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	l.Info("server_stopped")
	return nil
}

// openRepository prefers MongoDB when MONGODB_URI is set and falls back to
// the JSON data file.
func openRepository(ctx context.Context, cfg config.Config) (services.CityRepository, func(), error) {
	if cfg.MongoURI == "" {
		logger.L().Info("city_source", "kind", "file", "path", cfg.DataPath)
		return services.FileCityRepository{Path: cfg.DataPath}, func() {}, nil
	}
	repo, err := services.NewMongoCityRepository(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}
	logger.L().Info("city_source", "kind", "mongo", "database", cfg.MongoDatabase)
	return repo, func() { _ = repo.Close(context.Background()) }, nil
}

// openSessionStore uses Redis when REDIS_ADDR is set, otherwise process
// memory.
func openSessionStore(ctx context.Context, cfg config.Config) (services.SessionStore, error) {
	if cfg.RedisAddr == "" {
		logger.L().Info("session_store", "kind", "memory")
		return services.NewMemorySessionStore(cfg.SessionTTL), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.L().Info("session_store", "kind", "redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return services.NewRedisSessionStore(client, cfg.SessionTTL), nil
}
