package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/config"
)

// pickSources asks which of several discovered sources to open. Tests
// replace it.
var pickSources = pickSourcesForm

// resolveSources turns command-line arguments into sources. Without
// arguments the working directory is searched; when that finds several
// outlines an interactive user is asked, anyone else gets the newest.
func resolveSources(cfg config.Config, args []string, interactive bool) ([]datasource.DataSource, error) {
	if len(args) > 0 {
		sources := make([]datasource.DataSource, 0, len(args))
		for _, arg := range args {
			s, err := datasource.NewSource(cfg.ResolveSource(arg))
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
		}
		return sources, nil
	}

	found, err := datasource.DiscoverSources(datasource.DiscoveryOptions{ValidateAfterDiscovery: true})
	if err != nil {
		return nil, err
	}
	switch {
	case len(found) == 0:
		return nil, datasource.ErrNoSources
	case len(found) == 1:
		return found, nil
	case interactive:
		return pickSources(found)
	default:
		best, err := datasource.SelectBestSource(found)
		if err != nil {
			return nil, err
		}
		return []datasource.DataSource{best}, nil
	}
}

// pickSourcesForm shows a huh select with every source plus "all of them".
func pickSourcesForm(found []datasource.DataSource) ([]datasource.DataSource, error) {
	choice := 0
	options := make([]huh.Option[int], 0, len(found)+1)
	for i, s := range found {
		label := fmt.Sprintf("%s (%s, %d nodes)", s.Name(), s.Type, s.NodeCount)
		options = append(options, huh.NewOption(label, i))
	}
	options = append(options, huh.NewOption("All of them", -1))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Several outlines found. Which one?").
				Options(options...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return nil, err
	}
	if choice < 0 {
		return found, nil
	}
	return []datasource.DataSource{found[choice]}, nil
}

// exportToSQLite converts a single document source into a database that can
// be browsed with lazy children and edited with remove.
func exportToSQLite(ctx context.Context, sources []datasource.DataSource, path string, stdout io.Writer) error {
	if len(sources) != 1 {
		return fmt.Errorf("export needs exactly one source, got %d", len(sources))
	}
	o, err := datasource.ReadOutline(sources[0])
	if err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if err := datasource.ExportSQLite(ctx, path, o); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d nodes to %s\n", o.Count(), path)
	return nil
}
