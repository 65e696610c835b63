package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// EnsureSchema applies the bundled migrations. Every statement is idempotent.
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := client.DB().ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		observability.GetLogger().Debug().Str("migration", name).Msg("migration applied")
	}
	return nil
}
