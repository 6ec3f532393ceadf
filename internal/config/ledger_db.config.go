package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB opens the postgres pool for the ledger. Postings hold row locks
// only for one short transaction each, so the pool stays small. The startup
// loop retries with backoff while the database container comes up.
func ConnectDB() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("LEDGER_DB_USER", "sacco"),
		getEnv("LEDGER_DB_PASSWORD", ""),
		getEnv("LEDGER_DB_HOST", "postgres"),
		getEnv("LEDGER_DB_PORT", "5432"),
		getEnv("LEDGER_DB_NAME", "sacco_ledger"),
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	const maxAttempts = 5
	delay := time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				cancel()
				return pool, nil
			}
			pool.Close()
		}
		cancel()

		lastErr = err
		log.Printf("[db] postgres not ready (attempt %d/%d): %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxAttempts, lastErr)
}
