package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestEmbeddedMigrationsHaveGooseMarkers(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(entries))
	}
	for _, e := range entries {
		raw, err := fs.ReadFile(migrationFiles, "migrations/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		body := string(raw)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s missing goose markers", e.Name())
		}
	}
}
