package db

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"lrukv/internal/interfaces"
	"lrukv/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS entries_updated_at_idx ON entries (updated_at DESC);
`

// An EntryRepo is a repository pattern implementation for working with database
type EntryRepo struct {
	db *DB
}

// NewEntryRepo creates a new instance of EntryRepo on top of db
func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{db}
}

// EnsureSchema creates the entries table if it doesn't exist
func (r *EntryRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.pool.Exec(ctx, schema)
	return err
}

// SaveEntry inserts an entry or replaces the stored value using transaction
func (r *EntryRepo) SaveEntry(ctx context.Context, entry *models.Entry) error {
	_, err := r.db.WithTx(
		ctx, func(tx pgx.Tx) (any, error) {
			return nil, r.upsertEntry(ctx, tx, entry)
		},
	)
	return err
}

// upsertEntry is a private method to write an entry with specified querier
func (r *EntryRepo) upsertEntry(ctx context.Context, q interfaces.Queryable, entry *models.Entry) error {
	query := `
		INSERT INTO entries (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;
	`

	_, err := q.Exec(ctx, query, entry.Key, []byte(entry.Value), entry.UpdatedAt)
	return err
}

// GetEntry returns entry by key from the database, nil if there is none
func (r *EntryRepo) GetEntry(ctx context.Context, key string) (*models.Entry, error) {
	query := `
		SELECT key, value, updated_at
		FROM entries
		WHERE key=$1
	`

	var entry models.Entry
	err := pgxscan.Get(ctx, r.db.pool, &entry, query, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetRecentEntries returns at most n entries, the most recently updated first
func (r *EntryRepo) GetRecentEntries(ctx context.Context, n int) ([]models.Entry, error) {
	query := `
		SELECT key, value, updated_at
		FROM entries
		ORDER BY updated_at DESC
		LIMIT $1
	`

	var entries []models.Entry
	if err := pgxscan.Select(ctx, r.db.pool, &entries, query, n); err != nil {
		return []models.Entry{}, err
	}
	if entries == nil {
		return []models.Entry{}, nil
	}
	return entries, nil
}
