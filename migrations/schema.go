package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaCheck describes a table and the columns go-access reads and writes.
type SchemaCheck struct {
	Table   string
	Columns []string
}

// DefaultSchemaChecks covers the ledger and event log tables.
var DefaultSchemaChecks = []SchemaCheck{
	{
		Table:   "access_entries",
		Columns: []string{"kind", "role", "account", "value", "created_at"},
	},
	{
		Table:   "access_events",
		Columns: []string{"id", "type", "role", "account", "occurred_at"},
	},
}

// SchemaValidationError summarizes missing tables and columns.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if len(e.MissingTables) > 0 {
		parts = append(parts, fmt.Sprintf("missing tables: %s", strings.Join(e.MissingTables, ", ")))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			missing := e.MissingColumns[table]
			sort.Strings(missing)
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(missing, ", ")))
		}
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(cols, "; ")))
	}
	if len(parts) == 0 {
		return "access schema validation failed"
	}
	return "access schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateSchema ensures the access tables expose the columns go-access relies on.
func ValidateSchema(ctx context.Context, db *sql.DB, dialect string, checks ...SchemaCheck) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := normalizeDialect(dialect)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		checks = DefaultSchemaChecks
	}

	missingTables := make([]string, 0)
	missingColumns := make(map[string][]string)
	for _, check := range checks {
		if strings.TrimSpace(check.Table) == "" {
			continue
		}
		cols, err := fetchColumns(ctx, db, normalized, check.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			missingTables = append(missingTables, check.Table)
			continue
		}
		for _, col := range check.Columns {
			col = strings.ToLower(strings.TrimSpace(col))
			if col != "" && !cols[col] {
				missingColumns[check.Table] = append(missingColumns[check.Table], col)
			}
		}
	}

	if len(missingTables) == 0 && len(missingColumns) == 0 {
		return nil
	}
	sort.Strings(missingTables)
	return &SchemaValidationError{
		MissingTables:  missingTables,
		MissingColumns: missingColumns,
	}
}

func normalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pg":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

func fetchColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch dialect {
	case "postgres":
		rows, err = db.QueryContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
		`, table)
	default:
		rows, err = db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
