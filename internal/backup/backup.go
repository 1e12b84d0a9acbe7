// Package backup exports all records into JSON files.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/obligo/backend/internal/models"
	"gorm.io/gorm"
)

// Export is the content of a backup file.
type Export struct {
	Version      string                     `json:"version"`      // The version of the backend the export was made with
	Data         map[string]json.RawMessage `json:"data"`         // The exported data, keyed by resource name
	CreationTime time.Time                  `json:"creationTime"` // Time the export was created
}

// Collect exports every model in the registry.
func Collect(db *gorm.DB, version string, now time.Time) (Export, error) {
	resources := make(map[string]json.RawMessage, len(models.Registry))

	for name, model := range models.Registry {
		b, err := model.Export(db)
		if err != nil {
			return Export{}, fmt.Errorf("exporting %s: %w", name, err)
		}
		resources[name] = b
	}

	return Export{
		Version:      version,
		Data:         resources,
		CreationTime: now.UTC(),
	}, nil
}

// FileName returns the name of the backup file created at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("obligo-%s.json", t.UTC().Format("20060102T150405Z"))
}

// Write exports all records into a new file in dir and returns its path.
// The file is written under a temporary name first so that an interrupted
// backup never leaves a truncated file behind.
func Write(db *gorm.DB, dir, version string, now time.Time) (string, error) {
	export, err := Collect(db, version, now)
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	b, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(now))
	tmp := path + ".tmp"

	err = os.WriteFile(tmp, b, 0o600)
	if err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	return path, nil
}
