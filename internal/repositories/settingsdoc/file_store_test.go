package settingsdoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cnc-voile/cantine-service/internal/models"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file yields defaults", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))

		doc, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if doc[models.SettingDeadlineTime] != "11:00" {
			t.Errorf("expected default deadline 11:00, got %s", doc[models.SettingDeadlineTime])
		}
	})

	t.Run("save then load round trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		store := NewFileStore(path)

		err := store.Save(ctx, models.SettingsDocument{models.SettingDeadlineTime: "10:00"})
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}

		doc, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if doc[models.SettingDeadlineTime] != "10:00" {
			t.Errorf("expected deadline 10:00, got %s", doc[models.SettingDeadlineTime])
		}

		if _, err := os.Stat(path); err != nil {
			t.Errorf("settings file should exist: %v", err)
		}
	})

	t.Run("save merges over existing keys", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))

		if err := store.Save(ctx, models.SettingsDocument{"theme": "dark"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Save(ctx, models.SettingsDocument{models.SettingDeadlineTime: "09:45"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		doc, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if doc["theme"] != "dark" {
			t.Errorf("unknown keys must survive later saves, got %v", doc)
		}
		if doc[models.SettingDeadlineTime] != "09:45" {
			t.Errorf("expected deadline 09:45, got %s", doc[models.SettingDeadlineTime])
		}
	})

	t.Run("defaults fill missing keys on load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		store := NewFileStore(path)
		doc, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if doc[models.SettingDeadlineTime] != "11:00" {
			t.Errorf("expected default deadline 11:00, got %s", doc[models.SettingDeadlineTime])
		}
		if doc["theme"] != "dark" {
			t.Errorf("stored keys must survive the merge, got %v", doc)
		}
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		store := NewFileStore(path)
		if _, err := store.Load(ctx); err == nil {
			t.Error("expected an error for a corrupt settings file")
		}
	})
}
