package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresBackend persists the blob as a single JSONB row keyed by the fixed
// store key. The whole-blob read/write contract is identical to the file
// backend; Postgres only supplies durability and visibility across hosts.
type PostgresBackend struct {
	db  *sqlx.DB
	key string
}

// NewPostgresBackend returns a backend over the given connection.
func NewPostgresBackend(db *sqlx.DB, key string) *PostgresBackend {
	return &PostgresBackend{db: db, key: key}
}

// EnsureSchema creates the blob table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS store_blobs (key TEXT PRIMARY KEY, data JSONB NOT NULL, updated_at TIMESTAMPTZ NOT NULL)`
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure store schema: %w", err)
	}
	return nil
}

// Load implements Backend.
func (b *PostgresBackend) Load(ctx context.Context) (Blob, bool, error) {
	const query = `SELECT data FROM store_blobs WHERE key = $1 LIMIT 1`
	var raw []byte
	if err := b.db.GetContext(ctx, &raw, query, b.key); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load blob row: %w", err)
	}

	var blob Blob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, false, fmt.Errorf("unmarshal blob row: %w", err)
	}
	return blob, true, nil
}

// Save implements Backend.
func (b *PostgresBackend) Save(ctx context.Context, blob Blob) error {
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal blob: %w", err)
	}

	const query = `INSERT INTO store_blobs (key, data, updated_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err := b.db.ExecContext(ctx, query, b.key, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert blob row: %w", err)
	}
	return nil
}
