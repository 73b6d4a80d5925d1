package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/msomdec/blog-desk/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The token table exists.
	if _, err := db.ExecContext(ctx, "INSERT INTO auth_token (key, value) VALUES ('token', 'abc')"); err != nil {
		t.Fatalf("insert into auth_token: %v", err)
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one migration recorded")
	}
}

func TestRunIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, _ := migrations.Applied(ctx, db)

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, _ := migrations.Applied(ctx, db)

	if len(first) != len(second) {
		t.Fatalf("expected %d migrations after rerun, got %d", len(first), len(second))
	}
}

func TestRunFS_OrderAndFailure(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("INSERT INTO a (v) VALUES (1);")},
		"001_a.sql": {Data: []byte("CREATE TABLE a (v INTEGER);")},
		"003_c.sql": {Data: []byte("THIS IS NOT SQL;")},
	}

	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected broken migration to fail")
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 2 || applied[0] != "001_a.sql" || applied[1] != "002_b.sql" {
		t.Fatalf("expected first two migrations applied in order, got %v", applied)
	}
}
