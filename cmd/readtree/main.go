package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/config"
	"github.com/vanderheijden86/readtree/pkg/console"
	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/metrics"
	"github.com/vanderheijden86/readtree/pkg/nav"
	"github.com/vanderheijden86/readtree/pkg/ui"
	"github.com/vanderheijden86/readtree/pkg/version"
	"github.com/vanderheijden86/readtree/pkg/watcher"
)

// isTerminal reports whether both stdin and stdout are attached to a
// terminal. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("readtree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default ~/.config/readtree/config.yaml)")
	watch := fs.Bool("watch", true, "Refresh when the source file changes on disk")
	lineMode := fs.Bool("line-mode", false, "Use the line-oriented console even on a terminal")
	showCues := fs.Bool("cues", false, "Print cues in line mode, e.g. [boundary]")
	theme := fs.String("theme", "", "Color theme: auto, dark, light or plain (overrides config)")
	readOnly := fs.Bool("read-only", false, "Open SQLite sources read-only")
	dumpJSON := fs.Bool("dump-json", false, "Print the visible sequence as JSON and exit")
	expandAll := fs.Bool("expand-all", false, "With -dump-json, expand every node first")
	exportSQLite := fs.String("export-sqlite", "", "Write the outline into a SQLite database and exit")
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	debugMetrics := fs.Bool("debug-metrics", false, "Print timing metrics to stderr on exit")
	versionFlag := fs.Bool("version", false, "Show version")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: readtree [options] [source...]")
		fmt.Fprintln(stderr, "\nBrowse outlines (YAML, JSON, SQLite or indented text) with a screen-reader friendly cursor.")
		fmt.Fprintln(stderr, "Sources may be paths or names registered in the config file.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "readtree %s\n", version.Version)
		return 0
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}
	if *debugMetrics {
		metrics.SetEnabled(true)
		defer metrics.WriteReport(stderr)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}

	interactive := isTerminal()
	sources, err := resolveSources(cfg, fs.Args(), interactive)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, datasource.ErrNoSources) {
			fmt.Fprintln(stderr, "Pass an outline file, or run readtree in a directory that has one.")
		}
		return 1
	}

	if *exportSQLite != "" {
		if err := exportToSQLite(context.Background(), sources, *exportSQLite, stdout); err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		return 0
	}

	loader := datasource.NewLoader(*readOnly, sources...)
	defer loader.Close()

	navOpts := cfg.SessionOptions()
	navOpts.Context = "readtree"
	navOpts.Actions = actionTable(loader, copyToClipboard)

	if *dumpJSON {
		if err := dumpVisible(loader.Build, navOpts, *expandAll, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	var w *watcher.Watcher
	if *watch {
		w = startWatcher(cfg, sources, stderr)
		if w != nil {
			defer w.Stop()
		}
	}

	if *lineMode || !interactive {
		err = runConsole(loader, navOpts, w, stdin, stdout, *showCues)
	} else {
		err = runTUI(loader, navOpts, w, cfg, title(sources))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads an explicit config file, or the XDG one. A broken XDG
// config is not fatal.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		debug.Log("warning: ignoring config: %v", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// startWatcher watches the source when there is exactly one. Failures only
// disable live reload.
func startWatcher(cfg config.Config, sources []datasource.DataSource, stderr io.Writer) *watcher.Watcher {
	if len(sources) != 1 {
		debug.Log("watch: %d sources, live reload disabled", len(sources))
		return nil
	}
	w, err := watcher.New(sources[0].Path,
		watcher.WithDebounceDuration(cfg.Watch.Debounce),
		watcher.WithPollInterval(cfg.Watch.PollInterval),
		watcher.WithOnError(func(err error) { debug.Log("watch: %v", err) }),
	)
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		fmt.Fprintf(stderr, "warning: live reload disabled: %v\n", err)
		return nil
	}
	return w
}

func title(sources []datasource.DataSource) string {
	if len(sources) == 1 {
		return "readtree: " + sources[0].Name()
	}
	return fmt.Sprintf("readtree: %d sources", len(sources))
}

func runConsole(loader *datasource.Loader, navOpts nav.Options, w *watcher.Watcher, stdin io.Reader, stdout io.Writer, cues bool) error {
	c, err := console.New(loader.Build, navOpts, stdout, console.Options{
		ShowCues:      cues,
		Loader:        loader,
		Watcher:       w,
		ChangesSource: changesSource,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := c.Run(ctx, stdin); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runTUI(loader *datasource.Loader, navOpts nav.Options, w *watcher.Watcher, cfg config.Config, title string) error {
	m, err := ui.NewModel(loader.Build, navOpts, ui.Options{
		Title:         title,
		Theme:         cfg.UI.Theme,
		ShowDetail:    cfg.UI.ShowDetail,
		Loader:        loader,
		Watcher:       w,
		ChangesSource: changesSource,
	})
	if err != nil {
		return err
	}
	defer m.Session().Close()

	// Trace lines would draw over the alternate screen.
	if debug.Enabled() {
		logPath := filepath.Join(os.TempDir(), "readtree-debug.log")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			debug.SetOutput(f)
			defer func() {
				debug.SetOutput(os.Stderr)
				f.Close()
			}()
		}
	}
	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set READTREE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("READTREE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
