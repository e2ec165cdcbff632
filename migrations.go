package access

import "embed"

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// Root files (data/sql/migrations/*.sql) target PostgreSQL and the SQLite
// overrides live in data/sql/migrations/sqlite/*.sql.
//
// The go-persistence-bun loader selects the right set from the dialect in use:
//
//	migrationsFS, _ := fs.Sub(access.MigrationsFS, "data/sql/migrations")
//	client.RegisterDialectMigrations(
//	    migrationsFS,
//	    persistence.WithDialectSourceLabel("."),
//	    persistence.WithValidationTargets("postgres", "sqlite"),
//	)
//	err := client.Migrate(ctx)
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS

// GetMigrationsFS exposes the SQL migration files so host applications can
// register them with their migration runner.
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}
