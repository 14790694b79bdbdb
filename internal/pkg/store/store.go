// Package store is the keyed document persistence used by every domain.
//
// Entities are stored as JSON documents addressed by (collection, id). The
// domains never see the storage format; they get a Store[T] for their entity
// and the composition root picks the backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
)

// Store persists values of one entity type.
type Store[T any] interface {
	// Save inserts a new document. Returns ErrDuplicate if id is taken.
	Save(ctx context.Context, id string, v T) error
	// Find loads a document. Returns ErrNotFound if id is unknown.
	Find(ctx context.Context, id string) (T, error)
	// Update replaces an existing document. Returns ErrNotFound if id is unknown.
	Update(ctx context.Context, id string, v T) error
	// Delete removes a document. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns every document of the collection ordered by id.
	List(ctx context.Context) ([]T, error)
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Backend carries the connections a driver needs.
type Backend struct {
	Driver string
	DB     *sqlx.DB
	Redis  *redis.Client
	Prefix string
}

// Open returns a Store[T] for collection on the configured backend.
func Open[T any](b Backend, collection string) (Store[T], error) {
	switch b.Driver {
	case DriverMemory, "":
		return NewMemory[T](), nil
	case DriverPostgres:
		if b.DB == nil {
			return nil, fmt.Errorf("store %s: postgres driver selected without a database", collection)
		}
		return NewPostgres[T](b.DB, collection), nil
	case DriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("store %s: redis driver selected without a client", collection)
		}
		return NewRedis[T](b.Redis, b.Prefix, collection), nil
	default:
		return nil, fmt.Errorf("store %s: unknown driver %q", collection, b.Driver)
	}
}
