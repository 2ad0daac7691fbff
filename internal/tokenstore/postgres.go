package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnukanth5457/joinup/internal/model"
)

const sessionSchema = `CREATE TABLE IF NOT EXISTS joinup_session (
	profile TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (profile, key)
)`

// PostgresStore keeps the two entries as rows of one profile. Save and Clear
// run inside a transaction so readers never see one entry without the other.
type PostgresStore struct {
	pool    *pgxpool.Pool
	profile string
}

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func NewPostgresStore(pool *pgxpool.Pool, profile string) *PostgresStore {
	return &PostgresStore{pool: pool, profile: profile}
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, sessionSchema)
	return err
}

func (p *PostgresStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (p *PostgresStore) Load(ctx context.Context) (Record, error) {
	rows, err := p.pool.Query(ctx, `SELECT key, value FROM joinup_session WHERE profile = $1`, p.profile)
	if err != nil {
		return Record{}, fmt.Errorf("postgres load: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Record{}, fmt.Errorf("postgres load: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("postgres load: %w", err)
	}

	token, rawUser := values[KeyToken], values[KeyUser]
	if token == "" || rawUser == "" {
		return Record{}, ErrNotFound
	}
	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Record{}, ErrCorrupt
	}
	rec := Record{Token: token, User: user}
	if !rec.complete() {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (p *PostgresStore) Save(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	user, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	const upsert = `INSERT INTO joinup_session (profile, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (profile, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	err = p.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert, p.profile, KeyToken, rec.Token); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, upsert, p.profile, KeyUser, string(user))
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres save: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	err := p.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM joinup_session WHERE profile = $1 AND key IN ($2, $3)`, p.profile, KeyToken, KeyUser)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres clear: %w", err)
	}
	return nil
}
