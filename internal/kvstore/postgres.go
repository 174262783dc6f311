package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore persists collections as rows in a single app_state table
// keyed by collection name, with the serialized list in a JSONB column.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: logger,
	}
}

// EnsureSchema creates the app_state table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		s.logger.Error("failed to ensure app_state schema", zap.Error(err))
		return fmt.Errorf("failed to ensure app_state schema: %w", err)
	}

	return nil
}

// Load reads the value stored under key into out. Returns false when the
// key has never been saved.
func (s *PostgresStore) Load(ctx context.Context, key string, out any) (bool, error) {
	query := `SELECT value FROM app_state WHERE key = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		s.logger.Error("failed to load state", zap.Error(err), zap.String("key", key))
		return false, fmt.Errorf("failed to load state %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error("failed to decode state", zap.Error(err), zap.String("key", key))
		return false, fmt.Errorf("failed to decode state %q: %w", key, err)
	}

	return true, nil
}

// Save serializes value and upserts it under key.
func (s *PostgresStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}

	query := `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, key, raw); err != nil {
		s.logger.Error("failed to save state", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}

	return nil
}
