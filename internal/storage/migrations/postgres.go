package migrations

import (
	"context"

	"sniper-bowl-bot/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded ledger schema.
// Scripts use IF NOT EXISTS and are safe to re-run at every startup.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	return apply(ctx, PostgresFS, "postgres", false, func(ctx context.Context, sql string) error {
		_, err := pool.Exec(ctx, sql)
		return err
	})
}
