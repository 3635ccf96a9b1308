package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk location of the SQL migrations, used by create/validate.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations
var embedded embed.FS

// Dialect maps a configured DB driver onto the goose dialect name.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case config.DBDriverSQLite:
		return "sqlite3", nil
	case config.DBDriverPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("no migrations for driver %q", driver)
}

// Subdir returns the per-driver migrations folder name.
func Subdir(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

// Embedded exposes the compiled-in migrations for a driver.
func Embedded(driver string) (fs.FS, error) {
	return fs.Sub(embedded, path.Join("migrations", Subdir(driver)))
}

// resolveDir points goose at the driver folder, either inside the embedded
// tree or below dir on disk. restore resets the goose base FS.
func resolveDir(driver, dir string) (string, func()) {
	if dir == "" {
		goose.SetBaseFS(embedded)
		return path.Join("migrations", Subdir(driver)), func() { goose.SetBaseFS(nil) }
	}
	return filepath.Join(dir, Subdir(driver)), func() {}
}

// Up applies every embedded migration for the driver.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	return Run(ctx, db, driver, "", "up")
}

// Run executes a standard goose command that requires a DB connection. dir is
// the migrations tree root holding one folder per driver; empty runs against
// the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	dir, restore := resolveDir(driver, dir)
	defer restore()

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	dir, restore := resolveDir(driver, dir)
	defer restore()

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
