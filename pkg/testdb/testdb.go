// Package testdb provisions throwaway postgres databases for integration
// tests. Tests calling Pool are skipped when postgres is not reachable, so
// the suite stays green on machines without a local database; CI fails loudly
// instead.
package testdb

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	delegationmodule "github.com/standin-hq/standin/modules/delegation"
	documentmodule "github.com/standin-hq/standin/modules/document"
	orgmodule "github.com/standin-hq/standin/modules/org"
	"github.com/standin-hq/standin/pkg/configuration"
)

const dialTimeout = 250 * time.Millisecond

// Pool creates a fresh database named after the test, applies every module's
// migrations, and returns a pool connected to it. The database is dropped and
// recreated on each run, so tests never see each other's rows.
func Pool(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	cfg := configuration.Use()
	if !canDialPostgres(cfg.Database) {
		if isCI() {
			tb.Fatal("postgres is not reachable (DB_HOST/DB_PORT)")
		}
		tb.Skip("postgres is not reachable; skipping integration test")
	}

	ctx := context.Background()
	dbName := databaseName(tb.Name())
	recreateDatabase(tb, ctx, cfg.Database, dbName)

	pool, err := pgxpool.New(ctx, dsn(cfg.Database, dbName))
	if err != nil {
		tb.Fatalf("connecting to test database %s: %v", dbName, err)
	}
	tb.Cleanup(pool.Close)

	applyMigrations(tb, pool)
	return pool
}

func canDialPostgres(db configuration.DatabaseOptions) bool {
	addr := net.JoinHostPort(db.Host, db.Port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func isCI() bool {
	return strings.TrimSpace(os.Getenv("CI")) != "" ||
		strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")
}

func databaseName(testName string) string {
	name := strings.ToLower(testName)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if len(name) > 50 {
		name = name[:50]
	}
	return "test_" + name
}

func recreateDatabase(tb testing.TB, ctx context.Context, db configuration.DatabaseOptions, name string) {
	tb.Helper()

	admin, err := pgx.Connect(ctx, db.ConnectionString())
	if err != nil {
		tb.Fatalf("connecting to postgres: %v", err)
	}
	defer func() { _ = admin.Close(ctx) }()

	if _, err := admin.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", name)); err != nil {
		tb.Fatalf("dropping test database %s: %v", name, err)
	}
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
		tb.Fatalf("creating test database %s: %v", name, err)
	}
}

func dsn(db configuration.DatabaseOptions, name string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		db.Host, db.Port, db.User, name, db.Password,
	)
}

func applyMigrations(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()

	filesystems := make([]fs.FS, 0, 3)
	for _, load := range []func() (fs.FS, error){
		orgmodule.MigrationsFS,
		delegationmodule.MigrationsFS,
		documentmodule.MigrationsFS,
	} {
		fsys, err := load()
		if err != nil {
			tb.Fatalf("loading migrations: %v", err)
		}
		filesystems = append(filesystems, fsys)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		tb.Fatalf("setting goose dialect: %v", err)
	}
	for _, fsys := range filesystems {
		goose.SetBaseFS(fsys)
		if err := goose.Up(db, "."); err != nil {
			tb.Fatalf("applying migrations: %v", err)
		}
	}
	goose.SetBaseFS(nil)
}
