package interfaces

import (
	"context"

	"lrukv/internal/models"
)

type EntryService interface {
	ProcessEntry(ctx context.Context, entry *models.Entry) error
	GetEntry(ctx context.Context, key string) (*models.Entry, error)
	WarmCache(ctx context.Context) error
	Stats() models.CacheStats
}
