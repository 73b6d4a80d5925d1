package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/blog-desk/internal/domain"
	"github.com/msomdec/blog-desk/internal/repository/sqlite"
)

// Verify the SQLite types implement the domain interfaces at compile time.
var (
	_ domain.Database   = (*sqlite.DB)(nil)
	_ domain.TokenStore = (*sqlite.TokenRepository)(nil)
)

func newTestDB(t *testing.T, dbPath string) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	var fkEnabled int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("check foreign_keys: %v", err)
	}
	if fkEnabled != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkEnabled)
	}
}

func TestTokenRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer db.Close()
	tokens := db.Tokens()
	ctx := context.Background()

	got, err := tokens.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no token, got %q", got)
	}

	if err := tokens.Save(ctx, "first"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := tokens.Save(ctx, "second"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if got, _ := tokens.Load(ctx); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}

	if err := tokens.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := tokens.Load(ctx); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
	if err := tokens.Clear(ctx); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}
}

func TestTokenRepository_SaveEmptyClears(t *testing.T) {
	db := newTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer db.Close()
	ctx := context.Background()

	db.Tokens().Save(ctx, "abc")
	if err := db.Tokens().Save(ctx, ""); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	if got, _ := db.Tokens().Load(ctx); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
}

func TestTokenRepository_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db := newTestDB(t, dbPath)
	if err := db.Tokens().Save(ctx, "persisted"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	db.Close()

	reopened := newTestDB(t, dbPath)
	defer reopened.Close()
	got, err := reopened.Tokens().Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "persisted" {
		t.Fatalf("expected persisted token after reopen, got %q", got)
	}
}
