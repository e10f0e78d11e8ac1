package migration

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
)

// Migration is one versioned schema change read from a pair of
// <id>.up.sql / <id>.down.sql files.
type Migration struct {
	ID      string
	UpSQL   string
	DownSQL string
}

// Config for migration runner
type Config struct {
	Schema    string // PostgreSQL schema name (default: "public")
	TableName string // Migration table name (default: "schema_migrations")
}

// Runner applies migrations held in an fs.FS, usually an embedded directory.
type Runner struct {
	client postgresql.PostgreSQLClient
	fsys   fs.FS
	logger logger.Interface
	schema string
	table  string
}

// NewRunner creates a new migration runner for PostgreSQL
func NewRunner(client postgresql.PostgreSQLClient, fsys fs.FS, logger logger.Interface, config Config) *Runner {
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.TableName == "" {
		config.TableName = "schema_migrations"
	}

	return &Runner{
		client: client,
		fsys:   fsys,
		logger: logger,
		schema: config.Schema,
		table:  config.TableName,
	}
}

func (r *Runner) qualifiedTable() string {
	return r.schema + "." + r.table
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	_, err := r.client.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`, r.qualifiedTable()))
	return err
}

// Applied returns the set of applied migration IDs
func (r *Runner) Applied(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, fmt.Sprintf("SELECT id FROM %s", r.qualifiedTable()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// Load reads every migration from the filesystem, ordered by ID.
func Load(fsys fs.FS) ([]Migration, error) {
	upFiles, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		up, err := fs.ReadFile(fsys, upFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", upFile, err)
		}

		id := strings.TrimSuffix(path.Base(upFile), ".up.sql")
		m := Migration{ID: id, UpSQL: strings.TrimSpace(string(up))}

		if down, err := fs.ReadFile(fsys, id+".down.sql"); err == nil {
			m.DownSQL = strings.TrimSpace(string(down))
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

// Pending returns the migrations not yet applied, limited to steps when steps > 0.
func Pending(migrations []Migration, applied map[string]bool, steps int) []Migration {
	var toApply []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			toApply = append(toApply, m)
		}
	}

	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}
	return toApply
}

// MigrateUp applies pending migrations, each in its own transaction.
func (r *Runner) MigrateUp(ctx context.Context, steps int) error {
	migrations, err := Load(r.fsys)
	if err != nil {
		return err
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return err
	}

	for _, m := range Pending(migrations, applied, steps) {
		err := postgresql.WithTx(ctx, r.client, func(txCtx context.Context) error {
			for _, stmt := range postgresql.SplitStatements(m.UpSQL) {
				if _, err := r.client.Exec(txCtx, stmt); err != nil {
					return err
				}
			}
			_, err := r.client.Exec(txCtx, fmt.Sprintf("INSERT INTO %s (id) VALUES ($1)", r.qualifiedTable()), m.ID)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}

		r.logger.Info("Applied migration", logger.Field{Key: "id", Value: m.ID})
	}

	return nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0 for down migrations")
	}

	migrations, err := Load(r.fsys)
	if err != nil {
		return err
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, m := range toRevert {
		if m.DownSQL == "" {
			return fmt.Errorf("no DOWN SQL found for migration %s - cannot revert", m.ID)
		}

		err := postgresql.WithTx(ctx, r.client, func(txCtx context.Context) error {
			for _, stmt := range postgresql.SplitStatements(m.DownSQL) {
				if _, err := r.client.Exec(txCtx, stmt); err != nil {
					return err
				}
			}
			_, err := r.client.Exec(txCtx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.qualifiedTable()), m.ID)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", m.ID, err)
		}

		r.logger.Info("Reverted migration", logger.Field{Key: "id", Value: m.ID})
	}

	return nil
}
