// Package main is the entry point for the room portal server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/api"
	"github.com/roomportal/backend/internal/config"
	"github.com/roomportal/backend/internal/logging"
	"github.com/roomportal/backend/internal/portal"
	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/snapshot"
	"github.com/roomportal/backend/internal/storage"
	"github.com/roomportal/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	cfg := config.FromEnv()

	flag.StringVar(&cfg.Addr, "addr", ":8099", "HTTP server address")
	flag.StringVar(&cfg.DataDir, "data", "/data", "Data directory for SQLite database")
	flag.StringVar(&cfg.StaticDir, "static", "./static", "Directory for static frontend files")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Addr); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if cfg.Version == "" {
		cfg.Version = version
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "roomportal")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("starting room portal", zap.String("version", cfg.Version))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize database
	db, err := storage.NewDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	events := websocket.NewEventBroadcaster(hub, logger)

	// Repositories and services
	calc := schedule.NewCalculatorWithLocation(loc)
	taskRepo := storage.NewTaskRepository(db)
	candidateRepo := storage.NewCandidateRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)

	properties := portal.NewPropertyService(storage.NewPropertyDocumentRepository(db), calc, logger)
	defer properties.Close()
	tasks := portal.NewTaskService(taskRepo, logger)
	candidates := portal.NewCandidateService(candidateRepo, logger)
	tenant := portal.NewTenantService(properties, settingsRepo)

	publisher := snapshot.NewPublisher(properties, taskRepo, candidateRepo, events, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier snapshot.Notifier = snapshot.NewLocalNotifier(publisher)
	if cfg.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()

		bus := snapshot.NewRedisBus(client, cfg.RedisChannel, publisher, logger)
		ready := make(chan struct{})
		busErr := make(chan error, 1)
		go func() { busErr <- bus.Run(ctx, ready) }()

		select {
		case <-ready:
			notifier = bus
			logger.Info("change bus connected", zap.String("redis_addr", cfg.RedisAddr))
		case err := <-busErr:
			logger.Warn("change bus unavailable, using local notifications", zap.Error(err))
		case <-time.After(10 * time.Second):
			logger.Warn("change bus did not become ready, using local notifications")
		}
	}
	properties.SetNotifier(notifier)
	tasks.SetNotifier(notifier)
	candidates.SetNotifier(notifier)

	// Cleaning announcements
	cleaningScheduler := schedule.NewScheduler(properties, calc, events, logger)
	if err := cleaningScheduler.InitializeStates(ctx); err != nil {
		logger.Warn("failed to initialize cleaning states", zap.Error(err))
	}
	if err := cleaningScheduler.Start(); err != nil {
		return fmt.Errorf("starting cleaning scheduler: %w", err)
	}
	defer cleaningScheduler.Stop()

	router := api.NewRouter(api.Services{
		DB:         db,
		Hub:        hub,
		Publisher:  publisher,
		Properties: properties,
		Tasks:      tasks,
		Candidates: candidates,
		Tenant:     tenant,
		Settings:   settingsRepo,
		Calculator: calc,
		Scheduler:  cleaningScheduler,
		Version:    cfg.Version,
		StaticDir:  cfg.StaticDir,
		Logger:     logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("serving http: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}

	client := resty.New().
		SetBaseURL("http://" + host).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	resp, err := client.R().Get("/api/health")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return nil
}
