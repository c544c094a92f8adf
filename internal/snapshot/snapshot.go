// Package snapshot writes full dumps of the catalog and ledger tables,
// one directory per snapshot ID.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"minipos/internal/catalog"
	"minipos/internal/ledger"
)

type Snapshotter interface {
	WriteSnapshot(snapshotID string, cat catalog.Store, led ledger.Store) error
}

// NewID mints a fresh snapshot ID.
func NewID() string { return uuid.NewString() }

type FilesystemSnapshotter struct {
	baseDir string
}

func NewFilesystemSnapshotter(baseDir string) *FilesystemSnapshotter {
	return &FilesystemSnapshotter{baseDir: baseDir}
}

// WriteSnapshot dumps both tables as indented JSON under
// <base>/<snapshotID>/{catalog,ledger}.json.
func (f *FilesystemSnapshotter) WriteSnapshot(snapshotID string, cat catalog.Store, led ledger.Store) error {
	dir := filepath.Join(f.baseDir, snapshotID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	products, err := cat.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "catalog.json"), products); err != nil {
		return err
	}
	sales, err := led.Load()
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	return writeJSON(filepath.Join(dir, "ledger.json"), sales)
}

func writeJSON(path string, v any) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
