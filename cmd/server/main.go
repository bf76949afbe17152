package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/timestrainer/internal/api"
	"github.com/vytor/timestrainer/internal/config"
	"github.com/vytor/timestrainer/internal/db"
	"github.com/vytor/timestrainer/internal/events"
	"github.com/vytor/timestrainer/internal/jobs"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/repository"
	redisrepo "github.com/vytor/timestrainer/internal/repository/redis"
	"github.com/vytor/timestrainer/internal/repository/sqlite"
	"github.com/vytor/timestrainer/internal/services"
	"github.com/vytor/timestrainer/internal/settings"
	"github.com/vytor/timestrainer/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Times Trainer Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("tick_interval=%s", cfg.TickInterval)
	log.Debug("session_idle_ttl=%s", cfg.SessionIdleTTL)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("settings_backend=%s", cfg.SettingsBackend)
	log.Debug("events_enabled=%t", cfg.AMQPURL != "")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var settingsRepo repository.SettingsRepository = sqlite.NewSettingsRepository(database.DB)
	if cfg.SettingsBackend == config.BackendRedis {
		client, err := redisrepo.NewClient(ctx, redisrepo.Options{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("failed to connect to redis: %v", err)
			os.Exit(1)
		}
		defer client.Close()

		repo, err := redisrepo.NewSettingsRepo(client, cfg.SettingsTTL)
		if err != nil {
			log.Error("failed to create redis settings repository: %v", err)
			os.Exit(1)
		}
		settingsRepo = repo
		log.Info("settings stored in redis at %s", cfg.RedisAddr)
	}

	publisher, err := events.New(cfg.AMQPURL, cfg.EventsExchange)
	if err != nil {
		log.Error("failed to connect to message broker: %v", err)
		os.Exit(1)
	}
	defer publisher.Close()

	results := sqlite.NewResultRepository(database.DB)
	store := settings.NewStore(settingsRepo)

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start(ctx)
	queue := jobs.NewWorkerQueue(pool, results, store, publisher)

	gameService := services.NewGameService(store, queue, services.GameServiceOptions{
		TickInterval: cfg.TickInterval,
		IdleTTL:      cfg.SessionIdleTTL,
	})
	go gameService.Run(ctx)

	srv := &api.Server{
		DB:           database,
		GameService:  gameService,
		StatsService: services.NewStatsService(results),
		TickInterval: cfg.TickInterval,
	}

	// no WriteTimeout: the game stream is long-lived
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping game sessions")
	gameService.Close()

	// drains queued saves before the database closes
	log.Debug("stopping worker pool")
	pool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Times Trainer Server Stopped")
	log.Info("===========================================")
}
