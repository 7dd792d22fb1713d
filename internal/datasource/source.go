// Package datasource discovers, validates and loads outline sources for
// readtree: YAML and JSON outline documents, SQLite outline databases and
// indented text breakdowns. Every source is turned into nav.Spec forests.
package datasource

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SourceType identifies the format of an outline source.
type SourceType string

const (
	SourceTypeYAML   SourceType = "yaml"
	SourceTypeJSON   SourceType = "json"
	SourceTypeSQLite SourceType = "sqlite"
	SourceTypeText   SourceType = "text"
)

// Priority values for source types (higher = preferred when timestamps tie).
const (
	PrioritySQLite = 100
	PriorityYAML   = 80
	PriorityJSON   = 70
	PriorityText   = 50
)

var (
	ErrUnknownType = errors.New("unknown outline source type")
	ErrNoSources   = errors.New("no valid outline sources")
)

// DataSource is a candidate outline file.
type DataSource struct {
	Type     SourceType `json:"type"`
	Path     string     `json:"path"`
	Priority int        `json:"priority"`
	ModTime  time.Time  `json:"mod_time"`
	Size     int64      `json:"size"`

	// Set by ValidateSource.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	NodeCount       int    `json:"node_count"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, nodes=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.NodeCount, status)
}

// Name is the file name without extension, used as the root label when
// several sources are shown together.
func (s DataSource) Name() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DetectType maps a file extension to a SourceType.
func DetectType(path string) (SourceType, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SourceTypeYAML, PriorityYAML, nil
	case ".json":
		return SourceTypeJSON, PriorityJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, PrioritySQLite, nil
	case ".txt", ".breakdown":
		return SourceTypeText, PriorityText, nil
	default:
		return "", 0, fmt.Errorf("%w: %s", ErrUnknownType, path)
	}
}

// NewSource stats path and returns a DataSource for it.
func NewSource(path string) (DataSource, error) {
	if _, _, err := DetectType(path); err != nil {
		return DataSource{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("outline source: %w", err)
	}
	s, _ := sourceFor(abs, info)
	return s, nil
}

// sourceFor describes a file already known to exist. ok is false when the
// extension is not an outline format.
func sourceFor(path string, info fs.FileInfo) (DataSource, bool) {
	typ, prio, err := DetectType(path)
	if err != nil {
		return DataSource{}, false
	}
	return DataSource{
		Type:     typ,
		Path:     path,
		Priority: prio,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, true
}

// DiscoveryOptions controls DiscoverSources.
type DiscoveryOptions struct {
	// Dir is scanned without recursion. Empty means the working directory.
	Dir string
	// ValidateAfterDiscovery parses every candidate and drops the broken ones.
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps candidates that failed validation.
	IncludeInvalid bool
	// Verbose sends progress lines to Logger.
	Verbose bool
	Logger  func(msg string)
}

func (o DiscoveryOptions) logf(format string, args ...any) {
	if o.Verbose && o.Logger != nil {
		o.Logger(fmt.Sprintf(format, args...))
	}
}

// DiscoverSources lists the outline files in a directory, newest first.
// Equal timestamps are ordered by format priority.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("discover sources: %w", err)
		}
		dir = wd
	}
	opts.logf("Discovering sources in: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover sources in %s: %w", dir, err)
	}

	var found []DataSource
	for _, e := range entries {
		if e.IsDir() || skipFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		s, ok := sourceFor(filepath.Join(dir, e.Name()), info)
		if !ok {
			continue
		}
		opts.logf("Found %s: %s (mod=%s)", s.Type, s.Path, s.ModTime.Format(time.RFC3339))
		found = append(found, s)
	}

	if opts.ValidateAfterDiscovery {
		kept := found[:0]
		for _, s := range found {
			if err := ValidateSource(&s); err != nil {
				opts.logf("Validation failed for %s: %v", s.Path, err)
			}
			if s.Valid || opts.IncludeInvalid {
				kept = append(kept, s)
			}
		}
		found = kept
	}

	sortSources(found)
	opts.logf("Discovered %d sources", len(found))
	return found, nil
}

// skipFile filters editor backups, lock files and our own config.
func skipFile(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.Contains(name, ".bak") ||
		strings.Contains(name, ".orig") ||
		name == "config.yaml"
}

// sortSources orders newest first, then by priority.
func sortSources(sources []DataSource) {
	slices.SortStableFunc(sources, func(a, b DataSource) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return cmp.Compare(b.Priority, a.Priority)
	})
}

// ValidateSource loads the source once and records whether it parsed and how
// many nodes it holds.
func ValidateSource(s *DataSource) error {
	count, err := countNodes(context.Background(), *s)
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.NodeCount = count
	return nil
}

// SelectBestSource returns the first valid source in discovery order.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, ErrNoSources
}
