// Package test provides shared test helpers.
package test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-petr/trade-ledger/internal/ledgerrepo"
	"github.com/google/uuid"

	// sqlite3 driver registration.
	_ "github.com/mattn/go-sqlite3"
)

// SetupDB opens a private in-memory sqlite database with the ledger schema.
//
// The pool holds a single connection so concurrent callers interleave the way
// separate processes sharing one database would, one transaction at a time.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("sql.Open(sqlite3, %v) returned error: %v", dsn, err)
	}

	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() returned error: %v", err)
		}
	})

	if err := ledgerrepo.Migrate(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("ledgerrepo.Migrate returned error: %v", err)
	}

	return db
}
