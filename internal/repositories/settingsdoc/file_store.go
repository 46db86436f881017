// Package settingsdoc persists the service settings as a flat JSON
// document on disk, outside the relational store's transaction boundary.
package settingsdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
)

// FileStore implements repositories.SettingsRepository over a single
// JSON file. Writes are last-write-wins; the mutex keeps the
// read-merge-write sequence atomic within this process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) repositories.SettingsRepository {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (models.SettingsDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *FileStore) Save(ctx context.Context, doc models.SettingsDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked()
	if err != nil {
		return err
	}

	for k, v := range doc {
		current[k] = v
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	// Write to a sibling temp file then rename so readers never see a
	// partial document.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create settings temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close settings temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}

func (s *FileStore) loadLocked() (models.SettingsDocument, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var doc models.SettingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode settings file: %w", err)
	}

	return doc.MergedWithDefaults(), nil
}
