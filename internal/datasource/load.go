package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/metrics"
	"github.com/vanderheijden86/readtree/pkg/nav"
)

// Loaded is the result of loading one source. Reader is set for SQLite
// sources and must stay open while the specs' lazy builders may run.
type Loaded struct {
	Source DataSource
	Specs  []nav.Spec
	Reader *SQLiteReader
}

// Close releases the SQLite connection, if any.
func (l Loaded) Close() error {
	if l.Reader != nil {
		return l.Reader.Close()
	}
	return nil
}

// LoadFromSource loads one source, dispatching on its type.
func LoadFromSource(ctx context.Context, source DataSource, readOnly bool) (Loaded, error) {
	defer metrics.Timer(metrics.SourceLoad)()

	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source, readOnly)
		if err != nil {
			return Loaded{}, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		specs, err := reader.Roots(ctx)
		if err != nil {
			reader.Close()
			return Loaded{}, err
		}
		return Loaded{Source: source, Specs: specs, Reader: reader}, nil

	case SourceTypeYAML, SourceTypeJSON, SourceTypeText:
		o, err := ReadOutline(source)
		if err != nil {
			return Loaded{}, fmt.Errorf("%s: %w", source.Path, err)
		}
		return Loaded{Source: source, Specs: o.Specs(source.Path)}, nil

	default:
		return Loaded{}, fmt.Errorf("%w: %s", ErrUnknownType, source.Type)
	}
}

// LoadAll loads every source concurrently. Results keep the order of
// sources. On error, anything already opened is closed.
func LoadAll(ctx context.Context, sources []DataSource, readOnly bool) ([]Loaded, error) {
	start := time.Now()
	out := make([]Loaded, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			l, err := LoadFromSource(gctx, s, readOnly)
			if err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, l := range out {
			l.Close()
		}
		return nil, err
	}

	debug.LogTiming(fmt.Sprintf("load %d sources", len(sources)), time.Since(start))
	return out, nil
}

// countNodes backs ValidateSource.
func countNodes(ctx context.Context, s DataSource) (int, error) {
	if s.Type == SourceTypeSQLite {
		reader, err := NewSQLiteReader(s, true)
		if err != nil {
			return 0, err
		}
		defer reader.Close()
		return reader.CountNodes(ctx)
	}
	o, err := ReadOutline(s)
	if err != nil {
		return 0, err
	}
	return o.Count(), nil
}

// Loader builds the root forest of a session from one or more sources and
// owns the SQLite connections behind lazy children. Build is a
// nav.RootBuilder, so Session.Refresh reloads every source.
type Loader struct {
	sources  []DataSource
	readOnly bool

	mu      sync.Mutex
	readers map[string]*SQLiteReader
	last    []nav.Spec
}

// NewLoader returns a loader over sources. With a single source its nodes
// are the roots; with several, each source becomes a category root named
// after its file.
func NewLoader(readOnly bool, sources ...DataSource) *Loader {
	return &Loader{
		sources:  sources,
		readOnly: readOnly,
		readers:  make(map[string]*SQLiteReader),
	}
}

// Sources returns the loaded sources.
func (l *Loader) Sources() []DataSource { return l.sources }

// Build loads every source. On failure the previous connections stay open so
// the tree already on screen keeps working.
func (l *Loader) Build() ([]nav.Spec, error) {
	if len(l.sources) == 0 {
		return nil, ErrNoSources
	}
	loaded, err := LoadAll(context.Background(), l.sources, l.readOnly)
	if err != nil {
		return nil, err
	}

	readers := make(map[string]*SQLiteReader)
	for _, ld := range loaded {
		if ld.Reader != nil {
			readers[ld.Source.Path] = ld.Reader
		}
	}

	var specs []nav.Spec
	if len(loaded) == 1 {
		specs = loaded[0].Specs
	} else {
		specs = make([]nav.Spec, len(loaded))
		for i, ld := range loaded {
			specs[i] = nav.Spec{
				Label:    ld.Source.Name(),
				Value:    string(ld.Source.Type),
				Kind:     nav.KindCategory,
				Payload:  Ref{Source: ld.Source.Path},
				Children: ld.Specs,
			}
		}
	}

	l.mu.Lock()
	old := l.readers
	l.readers = readers
	l.last = specs
	l.mu.Unlock()
	for _, r := range old {
		r.Close()
	}
	return specs, nil
}

// Last returns the specs produced by the most recent successful Build.
func (l *Loader) Last() []nav.Spec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Remove deletes the node's row from its SQLite source. It is meant to be
// registered as a nav.ActionFunc; the caller refreshes the session after.
func (l *Loader) Remove(n nav.Node) error {
	ref, ok := n.Payload.(Ref)
	if !ok || ref.ID == "" {
		return fmt.Errorf("%q: %w", n.Label, ErrReadOnly)
	}
	l.mu.Lock()
	r := l.readers[ref.Source]
	l.mu.Unlock()
	if r == nil {
		return fmt.Errorf("%q: %w", n.Label, ErrReadOnly)
	}
	return r.RemoveNode(context.Background(), ref.ID)
}

// Close closes every open connection.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	for _, r := range l.readers {
		errs = append(errs, r.Close())
	}
	l.readers = make(map[string]*SQLiteReader)
	return errors.Join(errs...)
}
