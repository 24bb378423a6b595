// Package main is the entry point for cmdbar, a terminal command bar.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/cmdbar/internal/catalog"
	"github.com/dshills/cmdbar/internal/config"
	"github.com/dshills/cmdbar/internal/logging"
	"github.com/dshills/cmdbar/internal/match"
	"github.com/dshills/cmdbar/internal/palette"
	"github.com/dshills/cmdbar/internal/script"
	"github.com/dshills/cmdbar/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds command-line settings. Empty values leave the
// configuration untouched.
type options struct {
	ConfigPath string
	Menu       string
	Scripts    string
	Outline    string
	LogLevel   string
	LogFile    string
	Query      string
	QuerySet   bool
	Limit      int
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := openLogger(cfg, opts.QuerySet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	logging.SetDefault(logger)
	if cfg.Path != "" {
		logger.Debug("loaded config from %s", cfg.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := newCatalog(cfg, logger)
	matcher := match.NewMatcher(cfg.MatchOptions())

	if opts.QuerySet {
		return list(ctx, os.Stdout, cat, matcher, opts.Query)
	}
	return interactive(ctx, cfg, cat, matcher, logger)
}

// newCatalog composes the configured sources: menu, outline, scripts.
func newCatalog(cfg *config.Config, logger *logging.Logger) *catalog.Catalog {
	rt := script.New(
		script.WithTimeout(cfg.Catalog.ScriptTimeout.Std()),
		script.WithLogger(logger),
	)

	sources := []catalog.Source{&catalog.MenuSource{Path: cfg.Catalog.Menu}}
	if cfg.Catalog.Outline != "" {
		sources = append(sources, &catalog.OutlineSource{Path: cfg.Catalog.Outline})
	}
	sources = append(sources, &catalog.ScriptSource{Dir: cfg.Catalog.Scripts, Runtime: rt})
	return catalog.New(logger, sources...)
}

// list prints the ranked candidates for query, one per line, with
// matched ranges in brackets. It returns 1 when nothing matches.
func list(ctx context.Context, w io.Writer, supplier palette.Supplier, matcher *match.Matcher, query string) int {
	cmds, err := supplier.Catalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	candidates := matcher.Rank(cmds, query)
	for _, c := range candidates {
		line := fmt.Sprintf("%c %s", c.Command.Kind.Symbol(), ui.RowText(c, "[", "]"))
		if c.Command.Shortcut != "" {
			line += "  " + c.Command.Shortcut
		}
		fmt.Fprintln(w, line)
	}
	if len(candidates) == 0 {
		return 1
	}
	return 0
}

// interactive runs the bar on the terminal and performs the chosen command
// after the screen is torn down.
func interactive(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, matcher *match.Matcher, logger *logging.Logger) int {
	bar := palette.New(cat, palette.WithMatcher(matcher), palette.WithLogger(logger))

	screen, err := ui.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	view := ui.NewView(cfg.UI.Width, cfg.UI.Height)
	view.Prompt = cfg.UI.Prompt
	view.Theme = ui.NewTheme(cfg.UI.Highlight, cfg.UI.Selected)
	u := ui.New(screen, bar, ui.WithView(view), ui.WithLogger(logger))
	defer u.Close()

	if cfg.Catalog.Watch {
		stopWatch := watch(ctx, cfg, cat, u.Notify, logger)
		defer stopWatch()
	}

	if _, err := u.Run(ctx); err != nil {
		u.Close()
		bar.Deactivate()
		if errors.Is(err, ui.ErrCancelled) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := bar.Perform(ctx, u.Close); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// watch starts a catalog watcher in the background. Failures only
// disable live reloading. The returned function stops the watcher.
func watch(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, notify func(), logger *logging.Logger) func() {
	w, err := catalog.NewWatcher(catalog.WithWatchLogger(logger))
	if err != nil {
		logger.Warn("catalog watcher disabled: %v", err)
		return func() {}
	}

	if err := w.AddFile(cfg.Catalog.Menu); err != nil {
		logger.Warn("not watching menu %s: %v", cfg.Catalog.Menu, err)
	}
	if cfg.Catalog.Outline != "" {
		if err := w.AddFile(cfg.Catalog.Outline); err != nil {
			logger.Warn("not watching outline %s: %v", cfg.Catalog.Outline, err)
		}
	}
	if err := w.AddDir(cfg.Catalog.Scripts); err != nil {
		logger.Warn("not watching scripts %s: %v", cfg.Catalog.Scripts, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := catalog.WatchCatalog(ctx, w, cat, notify); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("catalog watcher stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
		_ = w.Close()
	}
}

// openLogger writes to the configured log file. Without one, list mode
// logs warnings to stderr and interactive mode discards logs, since the
// terminal belongs to the UI.
func openLogger(cfg *config.Config, listMode bool) (*logging.Logger, func(), error) {
	if cfg.Log.File != "" {
		logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.LogLevel())
		if err != nil {
			return nil, nil, err
		}
		return logger, func() { _ = closer.Close() }, nil
	}
	if listMode {
		level := max(cfg.LogLevel(), logging.LevelWarn)
		return logging.New(logging.Config{Level: level, Output: os.Stderr, Prefix: "cmdbar"}), func() {}, nil
	}
	return logging.Nop, func() {}, nil
}

// applyFlags overrides configuration with command-line values and
// validates the result.
func applyFlags(cfg *config.Config, opts options) error {
	if opts.Menu != "" {
		cfg.Catalog.Menu = opts.Menu
	}
	if opts.Scripts != "" {
		cfg.Catalog.Scripts = opts.Scripts
	}
	if opts.Outline != "" {
		cfg.Catalog.Outline = opts.Outline
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.Limit >= 0 {
		cfg.Palette.Limit = opts.Limit
	}
	return cfg.Validate()
}

func parseFlags() options {
	opts := options{Limit: -1}
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Menu, "menu", "", "Menu file (YAML)")
	flag.StringVar(&opts.Scripts, "scripts", "", "Scripts directory")
	flag.StringVar(&opts.Outline, "outline", "", "Markdown document whose headings are offered")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log file")
	flag.StringVar(&opts.Query, "query", "", "Print ranked matches for the query and exit")
	flag.StringVar(&opts.Query, "q", "", "Print ranked matches for the query and exit (shorthand)")
	flag.IntVar(&opts.Limit, "limit", -1, "Maximum number of matches (0 for no limit)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cmdbar - quick-actions command bar\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cmdbar [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cmdbar                       Open the command bar\n")
		fmt.Fprintf(os.Stderr, "  cmdbar -outline README.md    Include the headings of README.md\n")
		fmt.Fprintf(os.Stderr, "  cmdbar -q fmt                List matches for \"fmt\" (exit 1 if none)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cmdbar %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "query" || f.Name == "q" {
			opts.QuerySet = true
		}
	})

	return opts
}
