// Package testutil provides shared test helpers for setting up data
// directories, registries and journals.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/command"
	"github.com/starford/ansuz/internal/datadir"
	"github.com/starford/ansuz/internal/fsservice"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/storage"
)

// TestJournal creates a temporary journal database that is automatically closed.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRegistry returns a registry with the filesystem commands registered
// over the real filesystem, and the (not yet created) data directory that
// get_data_dir resolves to.
func TestRegistry(t *testing.T) (*command.Registry, string) {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "com.example.app")
	svc := fsservice.NewService(storage.NewFS(), datadir.New("com.example.app", dataDir))
	reg := command.NewRegistry()
	if err := svc.Register(reg); err != nil {
		t.Fatal(err)
	}
	return reg, dataDir
}
