package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/index"
	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/schema"
	"github.com/paramcheck/paramcheck/internal/validator"
	"github.com/paramcheck/paramcheck/internal/watcher"
)

var ErrNoFiles = errors.New("no files found")

type checkCommand struct {
	CommonOptions

	Vehicle  string `long:"vehicle" description:"Vehicle type to generate metadata for"`
	Metadata string `long:"metadata" description:"Pre-generated metadata JSON file; skips the generator"`

	NoMissing      bool `long:"no-missing" description:"Disable missing check"`
	NoRedefinition bool `long:"no-redefinition" description:"Disable redefinition check"`
	NoReadOnly     bool `long:"no-readonly" description:"Disable read-only check"`
	NoBitmask      bool `long:"no-bitmask" description:"Disable bitmask check"`
	NoRange        bool `long:"no-range" description:"Disable range check"`
	NoValues       bool `long:"no-values" description:"Disable values check"`

	Watch bool `short:"w" long:"watch" description:"Check again whenever a parameter file changes"`

	Args struct {
		Files []string `positional-arg-name:"FILES" description:"Parameter files or glob patterns"`
	} `positional-args:"yes"`
}

func (c *checkCommand) Execute(_ []string) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	c.apply(cfg)

	files, err := expandPatterns(c.Args.Files)
	if errors.Is(err, ErrNoFiles) {
		fmt.Fprintln(stdout, "No files found")
		return errFailed
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := schemaProvider(cfg).Load(ctx, cfg.Vehicle)
	if err != nil {
		return err
	}
	checker := validator.NewChecker(s, cfg.Checks)

	if c.Watch {
		return c.watch(ctx, checker, files)
	}

	failed, err := checkFiles(stdout, checker, files)
	if err != nil {
		return err
	}
	if failed {
		return errFailed
	}
	return nil
}

// apply layers the command line over the configuration file.
func (c *checkCommand) apply(cfg *config.Config) {
	if c.Vehicle != "" {
		cfg.Vehicle = c.Vehicle
	}
	if c.Metadata != "" {
		cfg.Metadata = c.Metadata
	}
	disable := []struct {
		off bool
		on  *bool
	}{
		{c.NoMissing, &cfg.Checks.Missing},
		{c.NoRedefinition, &cfg.Checks.Redefinition},
		{c.NoReadOnly, &cfg.Checks.ReadOnly},
		{c.NoBitmask, &cfg.Checks.Bitmask},
		{c.NoRange, &cfg.Checks.Range},
		{c.NoValues, &cfg.Checks.Values},
	}
	for _, d := range disable {
		if d.off {
			*d.on = false
		}
	}
}

// watch checks files again whenever one of them, or a file they include,
// changes. Includes are followed again on every pass so that new include
// directories join the watched set.
func (c *checkCommand) watch(ctx context.Context, checker *validator.Checker, files []string) error {
	graph := index.NewIncludeGraph()
	var w *watcher.Watcher

	recheck := func() {
		files, err := expandPatterns(c.Args.Files)
		if err != nil {
			logger.Warn("no files to check", "error", err)
			return
		}
		if err := w.Watch(graph.Follow(files)); err != nil {
			logger.Error("watch included files", "error", err)
		}
		if _, err := checkFiles(stdout, checker, files); err != nil {
			logger.Error(err.Error())
		}
	}

	w, err := watcher.NewWatcher(watcher.DefaultDebounce, nil, func(paths []string) {
		logger.Info("files changed", "count", len(paths))
		recheck()
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(graph.Follow(files)); err != nil {
		return err
	}

	recheck()
	<-ctx.Done()
	return nil
}

func schemaProvider(cfg *config.Config) schema.Provider {
	if cfg.Metadata != "" {
		return schema.FileProvider{Path: cfg.Metadata}
	}
	return schema.GeneratorProvider{
		Command: cfg.Generator.Command,
		Output:  cfg.Generator.Output,
	}
}

// expandPatterns expands every pattern with ** support. Duplicates are
// dropped and the first occurrence keeps its position.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// checkFiles checks every file and prints the report. It reports whether
// any file failed.
func checkFiles(w io.Writer, checker *validator.Checker, files []string) (bool, error) {
	results, err := checker.CheckFiles(files)
	if err != nil {
		return false, err
	}
	return report(w, results), nil
}

func report(w io.Writer, results []validator.Result) bool {
	failed := false
	for _, r := range results {
		name := relPath(r.File)
		if r.Passed() {
			fmt.Fprintf(w, "%s: Passed\n", name)
			continue
		}
		failed = true
		fmt.Fprintf(w, "%s: Failed\n", name)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d.Message)
		}
	}
	return failed
}

func relPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return path
	}
	return rel
}
