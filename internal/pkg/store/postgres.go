package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// Schema creates the documents table shared by every collection.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// Postgres stores documents in one JSONB table keyed by collection and id.
type Postgres[T any] struct {
	db         *sqlx.DB
	collection string
}

// NewPostgres creates a Postgres-backed store for collection.
func NewPostgres[T any](db *sqlx.DB, collection string) *Postgres[T] {
	return &Postgres[T]{db: db, collection: collection}
}

func (p *Postgres[T]) Save(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3)
	`, p.collection, id, body)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (p *Postgres[T]) Find(ctx context.Context, id string) (T, error) {
	var v T
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var body []byte
	err := p.db.GetContext(ctx, &body, `
		SELECT body FROM documents WHERE collection = $1 AND id = $2
	`, p.collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(body, &v)
	return v, err
}

func (p *Postgres[T]) Update(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `
		UPDATE documents SET body = $3, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, p.collection, id, body)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, p.collection, id)
	return err
}

func (p *Postgres[T]) List(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var bodies [][]byte
	if err := p.db.SelectContext(ctx, &bodies, `
		SELECT body FROM documents WHERE collection = $1 ORDER BY id
	`, p.collection); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
