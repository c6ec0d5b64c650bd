package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the pool behind the Postgres state backend
type DB struct {
	pool *pgxpool.Pool
}

// New opens and pings a pool for the phrase_state table
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to state database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close releases every pooled connection
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the pool for queries
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
