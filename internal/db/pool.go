package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectAttempts = 6

// NewPool opens a pgx pool and verifies connectivity with a backoff retry,
// so the service survives a database that comes up a little later than it
// does. Sizing leaves headroom for the classification fan-out, which holds
// up to CLASSIFY_CONCURRENCY connections for inserts while the API keeps
// serving reads.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 16
	cfg.MinConns = 4
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				log.Printf("postgres: connected (max_conns=%d)", cfg.MaxConns)
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}

		lastErr = err
		log.Printf("postgres: connect attempt %d/%d failed: %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("postgres: giving up after %d attempts: %w", connectAttempts, lastErr)
}
