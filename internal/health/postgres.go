package health

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresChecker probes PostgreSQL over a connection separate from the
// application pool, so a saturated pool does not mask a reachable server.
type PostgresChecker struct {
	db *sql.DB
}

// NewPostgresChecker opens a single-connection handle for probing
func NewPostgresChecker(dsn string) (*PostgresChecker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &PostgresChecker{db: db}, nil
}

// Name implements Checker
func (c *PostgresChecker) Name() string { return "postgres" }

// Check implements Checker
func (c *PostgresChecker) Check(ctx context.Context) error {
	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}
	return nil
}

// Close releases the probe connection
func (c *PostgresChecker) Close() error {
	return c.db.Close()
}
