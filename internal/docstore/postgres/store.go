package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/docstore"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps every collection in a single documents table with a JSONB body.
// The composite primary key gives Upsert the per-document atomicity the match
// cache relies on.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id         text NOT NULL,
	body       jsonb NOT NULL,
	updated_at bigint NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_updated_idx
	ON documents (collection, updated_at DESC);
CREATE INDEX IF NOT EXISTS documents_body_idx
	ON documents USING gin (body jsonb_path_ops);
`

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = int32(cfg.PoolMaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.StatementTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}

	return &Store{pool: pool, timeout: timeout}, nil
}

// EnsureSchema creates the documents table and its indexes. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, f docstore.Filter, opts docstore.FindOptions) ([]docstore.Doc, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `SELECT id, body, updated_at FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(f.Equals) > 0 {
		fb, err := json.Marshal(f.Equals)
		if err != nil {
			return nil, err
		}
		args = append(args, fb)
		query += fmt.Sprintf(" AND body @> $%d::jsonb", len(args))
	}
	if opts.SortUpdatedDesc {
		query += " ORDER BY updated_at DESC, id DESC"
	} else {
		query += " ORDER BY id ASC"
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	out := make([]docstore.Doc, 0)
	for rows.Next() {
		var d docstore.Doc
		if err := rows.Scan(&d.ID, &d.Body, &d.UpdatedAt); err != nil {
			return nil, wrapStoreErr(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, collection, id string) (*docstore.Doc, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var d docstore.Doc
	err := s.pool.QueryRow(ctx,
		`SELECT id, body, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&d.ID, &d.Body, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapStoreErr(err)
	}
	return &d, nil
}

func (s *Store) Upsert(ctx context.Context, collection, id string, body any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, id) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at`,
		collection, id, b, time.Now().Unix(),
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string, f docstore.Filter) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `SELECT COUNT(*) FROM documents WHERE collection = $1`
	args := []any{collection}
	if len(f.Equals) > 0 {
		fb, err := json.Marshal(f.Equals)
		if err != nil {
			return 0, err
		}
		args = append(args, fb)
		query += fmt.Sprintf(" AND body @> $%d::jsonb", len(args))
	}

	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrapStoreErr(err)
	}
	return n, nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
}
