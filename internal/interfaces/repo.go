package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lrukv/internal/models"
)

// A Queryable is anything that can run queries: a pool, a connection or a transaction
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	SaveEntry(ctx context.Context, entry *models.Entry) error
	GetEntry(ctx context.Context, key string) (*models.Entry, error)
	GetRecentEntries(ctx context.Context, n int) ([]models.Entry, error)
}
