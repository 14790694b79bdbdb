// Package database opens the external connections selected by
// configuration and turns them into a store backend.
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

// Connections holds the clients shared by the process. Either may be nil.
type Connections struct {
	driver   string
	Postgres *sqlx.DB
	Redis    *redis.Client
}

// Open connects what driver needs. Redis is also opened, when a URL is
// given, for the notification stream.
func Open(ctx context.Context, driver, databaseURL, redisURL string) (*Connections, error) {
	if driver == "" {
		driver = store.DriverMemory
	}
	c := &Connections{driver: driver}

	switch driver {
	case store.DriverMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
	case store.DriverPostgres:
		db, err := NewPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		c.Postgres = db
		if err := store.Migrate(ctx, db); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	case store.DriverRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("store driver redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	if redisURL != "" {
		client, err := NewRedis(ctx, redisURL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Redis = client
	}
	return c, nil
}

// Backend returns the store backend for the opened driver.
func (c *Connections) Backend(prefix string) store.Backend {
	return store.Backend{Driver: c.driver, DB: c.Postgres, Redis: c.Redis, Prefix: prefix}
}

// Close releases every open connection
func (c *Connections) Close() {
	if c.Postgres != nil {
		if err := c.Postgres.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		} else {
			log.Info().Msg("PostgreSQL connection closed")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis connection")
		} else {
			log.Info().Msg("Redis connection closed")
		}
	}
}
