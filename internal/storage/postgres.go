package storage

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"umbra/pkg/config"
)

// Postgres keeps values in the kv_store table created by migrations/.
type Postgres struct {
	db        *sqlx.DB
	namespace string
}

// OpenPostgres connects with the pool settings from cfg.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, storageErr("connect postgres", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func NewPostgres(db *sqlx.DB, namespace string) *Postgres {
	return &Postgres{db: db, namespace: namespace}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`
	err := p.db.GetContext(ctx, &value, query, p.namespace, key)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("failed to read key", err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := p.db.ExecContext(ctx, query, p.namespace, key, value)
	return storageErr("failed to write key", err)
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE namespace = $1 AND key = $2`, p.namespace, key)
	return storageErr("failed to delete key", err)
}

func (p *Postgres) Clear(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE namespace = $1`, p.namespace)
	return storageErr("failed to clear namespace", err)
}

func (p *Postgres) HasKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM kv_store WHERE namespace = $1 AND key = $2)`
	if err := p.db.GetContext(ctx, &exists, query, p.namespace, key); err != nil {
		return false, storageErr("failed to check key", err)
	}
	return exists, nil
}

func (p *Postgres) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	query := `SELECT key FROM kv_store WHERE namespace = $1 ORDER BY key`
	if err := p.db.SelectContext(ctx, &keys, query, p.namespace); err != nil {
		return nil, storageErr("failed to list keys", err)
	}
	return keys, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
