// Package testutil provides throwaway destination databases for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/law-makers/encuestas/internal/store"
)

// Schema mirrors the DDL the host applies to the production database
const Schema = `
CREATE TABLE IF NOT EXISTS partidos(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	Fecha VARCHAR(50),
	Estimacion VARCHAR(50),
	Encuestadora VARCHAR(50),
	PAN INT,
	PRI INT,
	PRD INT,
	PVEM INT,
	PT INT,
	MC INT,
	MORENA INT,
	NR INT,
	time_insert TIMESTAMP
);
CREATE TABLE IF NOT EXISTS candidatos(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	Fecha VARCHAR(50),
	Estimacion VARCHAR(50),
	Encuestadora VARCHAR(50),
	XG INT,
	CS INT,
	JAM INT,
	time_insert TIMESTAMP
);
`

// SetupSQLite creates a file-backed sqlite database carrying Schema plus any
// extra statements. The file outlives individual connections so a test can
// reconnect the way each pipeline run does.
func SetupSQLite(t testing.TB, extra ...string) (store.Descriptor, *sqlx.DB) {
	t.Helper()

	desc := store.Descriptor{
		Driver: store.DriverSQLite,
		Schema: filepath.Join(t.TempDir(), "encuestas.db"),
	}

	db, err := desc.Connect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range append([]string{Schema}, extra...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	return desc, db
}
