package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"lrukv/internal/cache"
	"lrukv/internal/config"
	"lrukv/internal/models"
)

// ErrEntryNotFound is returned when neither the cache nor the database know the key
var ErrEntryNotFound = errors.New("entry not found")

// An EntryService implements the business logic for cached entries
type EntryService struct {
	cacheManager   *cache.Manager
	logger         *zerolog.Logger
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewEntryService creates a new entry service with the provided cache manager and logger
func NewEntryService(cacheManager *cache.Manager, cfg config.CircuitBreakerConfig, logger *zerolog.Logger) *EntryService {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	maxRequests := cfg.HalfOpenMaxCalls
	if maxRequests <= 0 {
		maxRequests = 3
	}
	maxFailures := cfg.MaxFailers
	if maxFailures <= 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        "entry-service",
			MaxRequests: uint32(maxRequests),
			Interval:    timeout,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(maxFailures)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		},
	)

	return &EntryService{
		cacheManager:   cacheManager,
		logger:         logger,
		circuitBreaker: cb,
	}
}

// ProcessEntry validates an entry and writes it to the database and the cache
func (s *EntryService) ProcessEntry(ctx context.Context, entry *models.Entry) error {
	start := time.Now()

	if entry == nil {
		err := errors.New("entry cannot be nil")
		s.logger.Error().Err(err).Msg("ProcessEntry: received nil entry")
		return err
	}

	if err := entry.Validate(); err != nil {
		s.logger.Error().
			Err(err).
			Str("key", entry.Key).
			Dur("duration", time.Since(start)).
			Msg("ProcessEntry: entry validation failed")
		return fmt.Errorf("entry validation failed: %w", err)
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	processCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.circuitBreaker.Execute(
		func() (interface{}, error) {
			return nil, s.cacheManager.Set(processCtx, entry)
		},
	)

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", entry.Key).
			Dur("duration", time.Since(start)).
			Msg("ProcessEntry: entry processing failed")
		return fmt.Errorf("failed to process entry: %w", err)
	}

	s.logger.Debug().Str("key", entry.Key).Dur("duration", time.Since(start)).Msg("Entry stored")
	return nil
}

// GetEntry retrieves an entry by key, checking cache first, then database
func (s *EntryService) GetEntry(ctx context.Context, key string) (*models.Entry, error) {
	start := time.Now()

	if strings.TrimSpace(key) == "" {
		err := errors.New("key cannot be empty")
		s.logger.Error().Err(err).Msg("GetEntry: empty key provided")
		return nil, err
	}

	retrieveCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	result, err := s.circuitBreaker.Execute(
		func() (interface{}, error) {
			return s.cacheManager.Get(retrieveCtx, key)
		},
	)

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", key).
			Dur("duration", time.Since(start)).
			Msg("GetEntry: failed to retrieve entry")
		return nil, fmt.Errorf("failed to retrieve entry: %w", err)
	}

	entry, _ := result.(*models.Entry)
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	return entry, nil
}

// WarmCache loads recent entries from database into cache on startup
func (s *EntryService) WarmCache(ctx context.Context) error {
	start := time.Now()

	warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := s.circuitBreaker.Execute(
		func() (interface{}, error) {
			return nil, s.cacheManager.WarmCache(warmCtx)
		},
	)

	if err != nil {
		s.logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("WarmCache: failed to warm cache")
		return fmt.Errorf("failed to warm cache: %w", err)
	}

	return nil
}

// Stats returns the current cache occupancy
func (s *EntryService) Stats() models.CacheStats {
	return models.CacheStats{
		Size:     s.cacheManager.SizeCache(),
		Capacity: s.cacheManager.CapacityCache(),
		Keys:     s.cacheManager.KeysCache(),
	}
}
