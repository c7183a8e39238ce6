package sqlitemigrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", t.TempDir()+"/migrate.db")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsAppliesOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_create.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE widgets;
`)},
	}

	sqlDB := openTestDB(t)
	if err := ApplyMigrations(sqlDB, fsys, "."); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Second run is a no-op.
	if err := ApplyMigrations(sqlDB, fsys, "."); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", count)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (id) VALUES ('w1')"); err != nil {
		t.Fatalf("expected widgets table to exist: %v", err)
	}
}

func TestApplyMigrationsOrdersLexically(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
ALTER TABLE parts ADD COLUMN name TEXT;
`)},
		"0001_create.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE parts (id TEXT PRIMARY KEY);
`)},
	}

	sqlDB := openTestDB(t)
	if err := ApplyMigrations(sqlDB, fsys, "."); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO parts (id, name) VALUES ('p1', 'n1')"); err != nil {
		t.Fatalf("expected both migrations applied: %v", err)
	}
}

func TestExtractUpMigration(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no markers", "CREATE TABLE t (id TEXT);", "CREATE TABLE t (id TEXT);"},
		{"up only", "-- +migrate Up\nCREATE TABLE t (id TEXT);", "\nCREATE TABLE t (id TEXT);"},
		{"up and down", "-- +migrate Up\nCREATE TABLE t (id TEXT);\n-- +migrate Down\nDROP TABLE t;", "\nCREATE TABLE t (id TEXT);\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractUpMigration(tc.content); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestApplyMigrationsNilDB(t *testing.T) {
	if err := ApplyMigrations(nil, fstest.MapFS{}, "."); err == nil {
		t.Fatal("expected error for nil db")
	}
}
