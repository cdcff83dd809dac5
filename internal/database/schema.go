package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MonthlyTable holds per-month dose totals, one row per location, vaccine and month.
const MonthlyTable = "vaccination_monthly"

var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS vaccination_monthly (
		load_id  UUID NOT NULL,
		location TEXT NOT NULL,
		vaccine  TEXT NOT NULL,
		month    DATE NOT NULL,
		doses    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (location, vaccine, month)
	)`,
	`CREATE INDEX IF NOT EXISTS vaccination_monthly_load_idx ON vaccination_monthly (load_id)`,
}

const hypertableStmt = `SELECT create_hypertable('vaccination_monthly', 'month', if_not_exists => TRUE, migrate_data => TRUE)`

// Execer runs a statement. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Execer = (pgx.Tx)(nil)

// EnsureSchema creates the monthly totals table if it does not exist and
// converts it to a hypertable when the TimescaleDB extension is available.
func EnsureSchema(ctx context.Context, db Execer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for i, s := range schemaStmts {
		logger.Debug("schema exec", "idx", i)
		if _, err := db.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec schema statement %d: %w", i, err)
		}
	}

	if _, err := db.Exec(ctx, hypertableStmt); err != nil {
		// Plain PostgreSQL has no create_hypertable; the table still works.
		logger.Warn("hypertable not created", "table", MonthlyTable, "error", err)
	}

	logger.Debug("schema done")
	return nil
}
