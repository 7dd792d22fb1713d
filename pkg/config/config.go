// Package config reads and writes ~/.config/readtree/config.yaml (or the
// XDG_CONFIG_HOME equivalent) and turns it into engine options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// Source is a named outline registered in the config, so it can be opened
// with `readtree <name>` instead of a path.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// AnnounceConfig controls what is spoken when the cursor lands on a node.
type AnnounceConfig struct {
	Position bool `yaml:"position"` // "2 of 5" among siblings
	Level    bool `yaml:"level"`    // "level 3" when depth changes
	Values   bool `yaml:"values"`   // secondary value after the label
	State    bool `yaml:"state"`    // expanded / collapsed
}

// TypeaheadConfig controls incremental search.
type TypeaheadConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RefreshConfig controls cursor placement after a rebuild.
type RefreshConfig struct {
	Fallback string `yaml:"fallback,omitempty"` // index (default) or sibling
}

// WatchConfig tunes the outline file watcher.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowDetail bool   `yaml:"show_detail"`     // detail pane beside the tree
	Theme      string `yaml:"theme,omitempty"` // auto, dark, light, plain
}

// Config is the top-level configuration for readtree.
type Config struct {
	Sources   []Source        `yaml:"sources,omitempty"`
	Announce  AnnounceConfig  `yaml:"announce"`
	Typeahead TypeaheadConfig `yaml:"typeahead"`
	Refresh   RefreshConfig   `yaml:"refresh,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
	UI        UIConfig        `yaml:"ui"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Announce: AnnounceConfig{
			Position: true,
			Level:    true,
			Values:   true,
			State:    true,
		},
		Typeahead: TypeaheadConfig{Enabled: true},
		Refresh:   RefreshConfig{Fallback: "index"},
		Watch: WatchConfig{
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
		UI: UIConfig{
			ShowDetail: true,
			Theme:      "auto",
		},
	}
}

// ConfigDir is $XDG_CONFIG_HOME/readtree, or ~/.config/readtree when the
// variable is unset. It is empty if no home directory is known.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "readtree")
}

// ConfigPath is config.yaml inside ConfigDir, or empty.
func ConfigPath() string {
	if dir := ConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ""
}

var errNoConfigDir = errors.New("no config directory: neither XDG_CONFIG_HOME nor HOME is set")

// Load reads ConfigPath. No file, or no config directory at all, yields the
// defaults.
func Load() (Config, error) {
	if p := ConfigPath(); p != "" {
		return LoadFrom(p)
	}
	return DefaultConfig(), nil
}

// LoadFrom overlays the YAML at path onto DefaultConfig, so keys the file
// leaves out keep their defaults. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	for i, s := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(s.Path)
	}
	return cfg, nil
}

// Validate reports settings that cannot be applied.
func (c Config) Validate() error {
	if _, err := nav.ParseFallback(c.Refresh.Fallback); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Watch.Debounce < 0 || c.Watch.PollInterval < 0 {
		return fmt.Errorf("invalid config: watch durations must not be negative")
	}
	switch strings.ToLower(c.UI.Theme) {
	case "", "auto", "dark", "light", "plain":
	default:
		return fmt.Errorf("invalid config: unknown theme %q", c.UI.Theme)
	}
	return nil
}

// Save writes cfg to ConfigPath.
func Save(cfg Config) error {
	p := ConfigPath()
	if p == "" {
		return errNoConfigDir
	}
	return SaveTo(cfg, p)
}

// SaveTo writes cfg as YAML, creating the parent directory if needed.
func SaveTo(cfg Config, path string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// FindSource returns the source with the given name, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// ResolveSource maps a command-line argument to a path: registered source
// names win, anything else is returned with ~ expanded.
func (c Config) ResolveSource(arg string) string {
	if s := c.FindSource(arg); s != nil {
		return s.Path
	}
	return expandHome(arg)
}

// DescribeOptions converts the announce settings for the engine.
func (c Config) DescribeOptions() *nav.DescribeOptions {
	return &nav.DescribeOptions{
		Values:   c.Announce.Values,
		Position: c.Announce.Position,
		Level:    c.Announce.Level,
		State:    c.Announce.State,
	}
}

// Fallback returns the configured refresh fallback. Invalid values were
// rejected by Validate, so this falls back to index silently.
func (c Config) Fallback() nav.Fallback {
	f, _ := nav.ParseFallback(c.Refresh.Fallback)
	return f
}

// SessionOptions builds engine options from the config. Sink, actions and
// context are filled in by the caller.
func (c Config) SessionOptions() nav.Options {
	return nav.Options{
		Describe:         c.DescribeOptions(),
		Fallback:         c.Fallback(),
		DisableTypeahead: !c.Typeahead.Enabled,
	}
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, rest)
	}
	return path
}
