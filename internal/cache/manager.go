// Package cache implements a manager connector of cache and database
package cache

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"lrukv/internal/interfaces"
	"lrukv/internal/models"
)

// A Manager is a thread-safe connector of cache and database to work with stored data.
// Reads go through the cache, writes go to the database first
type Manager struct {
	cache  interfaces.Cache[string, *models.Entry]
	repo   interfaces.Repository
	logger *zerolog.Logger
	mu     sync.Mutex
}

// NewManager creates a new manager with specified cache, repo and logger
func NewManager(
	cache interfaces.Cache[string, *models.Entry], repo interfaces.Repository, logger *zerolog.Logger,
) *Manager {
	if logger == nil {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		return &Manager{cache: cache, repo: repo, logger: &logger}
	}
	return &Manager{cache: cache, repo: repo, logger: logger}
}

// WarmCache loads at most cache capacity of the most recently updated entries.
// They are put oldest first, so the newest entry ends up most recently used
func (c *Manager) WarmCache(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.repo.GetRecentEntries(ctx, c.cache.Capacity())
	if err != nil {
		c.logger.Error().Stack().Err(err).Msg("Failed to load entries for warm up")
		return fmt.Errorf("failed to load entries: %w", err)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		c.cache.Put(entry.Key, &entry)
	}

	c.logger.Info().Int("loaded", len(entries)).Int("capacity", c.cache.Capacity()).Msg("Cache warmed")
	return nil
}

// Set saves an entry to the database and then to the cache.
// The cache is left untouched if the database write fails
func (c *Manager) Set(ctx context.Context, entry *models.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.SaveEntry(ctx, entry); err != nil {
		c.logger.Error().Stack().Err(err).Str("key", entry.Key).Msg("Failed to save entry")
		return fmt.Errorf("failed to save entry: %w", err)
	}
	c.cache.Put(entry.Key, entry)
	return nil
}

// Get returns entry from cache, if it's not there - from database.
// Both nil entry and nil error mean the key is unknown
func (c *Manager) Get(ctx context.Context, key string) (*models.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if ok {
		return entry, nil
	}

	entry, err := c.repo.GetEntry(ctx, key)
	if err != nil {
		c.logger.Error().Stack().Err(err).Str("key", key).Msg("Failed to read entry")
		return nil, err
	}
	if entry != nil {
		c.cache.Put(key, entry)
	}
	return entry, nil
}

// ContainsCache checks if element is present in cache
func (c *Manager) ContainsCache(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Contains(key)
}

// KeysCache returns cached keys from the most to the least recently used
func (c *Manager) KeysCache() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Keys()
}

// SizeCache returns number of elements in cache
func (c *Manager) SizeCache() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Size()
}

// CapacityCache returns the maximum number of elements in cache
func (c *Manager) CapacityCache() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Capacity()
}

// EmptyCache return whether the cache is empty
func (c *Manager) EmptyCache() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Empty()
}
