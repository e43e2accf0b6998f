package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lrukv/internal/cache"
	"lrukv/internal/cache/lru_cache"
	"lrukv/internal/config"
	"lrukv/internal/db"
	"lrukv/internal/kafka"
	"lrukv/internal/models"
	"lrukv/internal/server"
	"lrukv/internal/service"
)

func main() {
	cfg, err := config.LoadConfig("config/config.yml")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stdout).Level(cfg.GetLogLevel()).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbLogger := logger.With().Str("component", "database").Logger()
	database, err := db.NewDBWithConfig(ctx, cfg, &dbLogger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	repository := db.NewEntryRepo(database)
	if err := repository.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare database schema")
	}

	cacheLogger := logger.With().Str("component", "cache-manager").Logger()
	lruCache, err := lru_cache.NewLRUCache(
		cfg.Cache.Capacity,
		lru_cache.WithOnEvict(
			func(key string, _ *models.Entry) {
				cacheLogger.Debug().Str("key", key).Msg("Entry evicted")
			},
		),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LRU cache")
	}

	cacheManager := cache.NewManager(lruCache, repository, &cacheLogger)

	serviceLogger := logger.With().Str("component", "entry-service").Logger()
	entryService := service.NewEntryService(cacheManager, cfg.CircuitBreaker, &serviceLogger)

	if cfg.Cache.Warm {
		if err := entryService.WarmCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to warm cache, continuing with empty cache")
		}
	}

	serverLogger := logger.With().Str("component", "http-server").Logger()
	httpServer := server.New(cfg, entryService, &serverLogger)

	kafkaLogger := logger.With().Str("component", "kafka-consumer").Logger()
	kafkaConsumer := kafka.NewConsumer(*cfg, entryService, &kafkaLogger)

	errChan := make(chan error, 2)

	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if err := kafkaConsumer.Start(ctx); err != nil {
		errChan <- fmt.Errorf("Kafka consumer error: %w", err)
	}

	logger.Info().
		Str("addr", cfg.GetServerAddress()).
		Int("capacity", cfg.Cache.Capacity).
		Msg("Service started")

	select {
	case err := <-errChan:
		logger.Error().Err(err).Msg("Component failed, shutting down")
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	var stopWg sync.WaitGroup
	var stopErrors []error
	var mu sync.Mutex

	stopWg.Add(1)
	go func() {
		defer stopWg.Done()
		if err := kafkaConsumer.Stop(shutdownCtx); err != nil {
			mu.Lock()
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop Kafka consumer: %w", err))
			mu.Unlock()
		}
	}()

	stopWg.Add(1)
	go func() {
		defer stopWg.Done()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			mu.Lock()
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop HTTP server: %w", err))
			mu.Unlock()
		}
	}()

	stopWg.Wait()

	if len(stopErrors) > 0 {
		logger.Error().
			Err(errors.Join(stopErrors...)).
			Int("error_count", len(stopErrors)).
			Msg("Some components failed to stop gracefully")
	}
}
