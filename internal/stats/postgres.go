package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgQuerier is the subset of *pgxpool.Pool used by PostgresStore.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps the statistics blob in the statistics_kv table
// (created by the goose migrations in internal/db/migrations).
type PostgresStore struct {
	db  pgQuerier
	key string
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db pgQuerier, key string) *PostgresStore {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresStore{db: db, key: key}
}

func (p *PostgresStore) Load(ctx context.Context) (*Statistics, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, "SELECT value FROM statistics_kv WHERE key = $1", p.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", p.key, err)
	}
	s, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s Statistics) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO statistics_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, p.key, data)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", p.key, err)
	}
	return nil
}
