package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-access/events"
	"github.com/goliatone/go-access/migrations"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/store"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const defaultPingTimeout = 5 * time.Second

// Config implements persistence.Config so the sqlite driver can hand it
// straight to go-persistence-bun.
var _ persistence.Config = (*Config)(nil)

func (c *Config) GetDebug() bool    { return c.DBDebug }
func (c *Config) GetDriver() string { return DriverSQLite }
func (c *Config) GetServer() string { return c.SQLiteDSN }
func (c *Config) GetPingTimeout() time.Duration {
	if c.DBPingTimeout <= 0 {
		return defaultPingTimeout
	}
	return c.DBPingTimeout
}
func (c *Config) GetOtelIdentifier() string { return "go-access" }

// openSQLite opens the ledger database and runs every registered dialect
// migration through go-persistence-bun.
func openSQLite(ctx context.Context, cfg *Config, logger types.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", cfg.GetServer())
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)

	persistence.RegisterModel((*store.Entry)(nil))
	persistence.RegisterModel((*events.LogEntry)(nil))

	client, err := persistence.New(cfg, sqldb, sqlitedialect.New())
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("config: persistence client: %w", err)
	}

	for _, fsys := range migrations.Filesystems() {
		client.RegisterDialectMigrations(
			fsys,
			persistence.WithDialectSourceLabel("."),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}
	if err := client.ValidateDialects(ctx); err != nil {
		logger.Error("go-access: migration dialect validation failed", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.DB().Close()
		return nil, fmt.Errorf("config: migrate: %w", err)
	}
	return client.DB(), nil
}
