package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Announce.Position || !cfg.Announce.Level || !cfg.Announce.Values || !cfg.Announce.State {
		t.Errorf("expected every announcement enabled, got %+v", cfg.Announce)
	}
	if !cfg.Typeahead.Enabled {
		t.Error("expected typeahead enabled")
	}
	if cfg.Fallback() != nav.FallbackIndex {
		t.Errorf("expected index fallback, got %v", cfg.Fallback())
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected 200ms debounce, got %v", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("expected default config, got theme %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
sources:
  - name: inventory
    path: ~/games/inventory.yaml
  - name: stats
    path: /absolute/stats.txt

announce:
  level: false

typeahead:
  enabled: false

refresh:
  fallback: sibling

watch:
  debounce: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "games/inventory.yaml")
	if cfg.Sources[0].Path != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.Sources[0].Path)
	}

	if cfg.Announce.Level {
		t.Error("expected level announcements disabled")
	}
	if !cfg.Announce.Position {
		t.Error("keys missing from the file should keep their defaults")
	}
	if cfg.Fallback() != nav.FallbackSibling {
		t.Errorf("expected sibling fallback, got %v", cfg.Fallback())
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.PollInterval != 2*time.Second {
		t.Errorf("expected default poll interval, got %v", cfg.Watch.PollInterval)
	}

	opts := cfg.SessionOptions()
	if !opts.DisableTypeahead {
		t.Error("expected typeahead disabled in session options")
	}
	if opts.Describe == nil || opts.Describe.Level || !opts.Describe.Values {
		t.Errorf("unexpected describe options %+v", opts.Describe)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "announce: [",
		"bad fallback": "refresh:\n  fallback: nearest\n",
		"bad theme":    "ui:\n  theme: neon\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sources = []Source{{Name: "menu", Path: "/tmp/menu.json"}}
	cfg.Refresh.Fallback = "sibling"
	cfg.UI.ShowDetail = false

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.FindSource("MENU") == nil {
		t.Error("expected case-insensitive source lookup")
	}
	if loaded.Refresh.Fallback != "sibling" || loaded.UI.ShowDetail {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("debounce = %v, want %v", loaded.Watch.Debounce, cfg.Watch.Debounce)
	}
}

func TestResolveSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []Source{{Name: "menu", Path: "/srv/menu.yaml"}}

	if got := cfg.ResolveSource("menu"); got != "/srv/menu.yaml" {
		t.Errorf("ResolveSource(menu) = %q", got)
	}
	if got := cfg.ResolveSource("other.json"); got != "other.json" {
		t.Errorf("ResolveSource(other.json) = %q", got)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigDir(); got != "/custom/config/readtree" {
		t.Errorf("ConfigDir = %q", got)
	}
	if got := ConfigPath(); got != "/custom/config/readtree/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
}
