package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations ensures the outcome-store schema exists.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS delivery_outcomes (
            id            BIGSERIAL PRIMARY KEY,
            identifier    TEXT NOT NULL,
            status        TEXT NOT NULL,
            response_text TEXT NOT NULL DEFAULT '',
            error_message TEXT NOT NULL DEFAULT '',
            recorded_at   TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_delivery_outcomes_identifier
            ON delivery_outcomes (identifier);`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return err
	}
	logger.Info("outcome store schema ready")
	return nil
}
