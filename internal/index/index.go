package index

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/parser"
)

// DefaultPatterns select the files indexed by ScanDirectory.
var DefaultPatterns = []string{"**/*.parm", "**/*.param", "**/*.params"}

// IncludeGraph records which parameter files include which. Paths are
// cleaned absolute paths where possible.
type IncludeGraph struct {
	mu       sync.RWMutex
	includes map[string][]string
	included map[string]map[string]bool
}

func NewIncludeGraph() *IncludeGraph {
	return &IncludeGraph{
		includes: make(map[string][]string),
		included: make(map[string]map[string]bool),
	}
}

// ScanDirectory indexes every file under root matching one of patterns.
// Files are read concurrently; unreadable files are skipped.
func (g *IncludeGraph) ScanDirectory(root string, patterns []string) error {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		for _, p := range patterns {
			if ok, _ := doublestar.PathMatch(p, rel); ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 8) // Limit concurrency

	for _, f := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("skipping unreadable file", "path", path, "error", err)
				return
			}
			g.AddFile(path, string(content))
		}(f)
	}
	wg.Wait()

	logger.Debug("indexed parameter files", "root", root, "files", len(files))
	return nil
}

// AddFile replaces the include edges of path with those found in content.
func (g *IncludeGraph) AddFile(path, content string) {
	path = normalize(path)

	var targets []string
	for _, d := range parser.Parse(content).Directives() {
		if d.Kind != parser.DirectiveInclude {
			continue
		}
		target := d.Arg
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		targets = append(targets, normalize(target))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, old := range g.includes[path] {
		delete(g.included[old], path)
	}
	g.includes[path] = targets
	for _, t := range targets {
		if g.included[t] == nil {
			g.included[t] = make(map[string]bool)
		}
		g.included[t][path] = true
	}
}

func (g *IncludeGraph) RemoveFile(path string) {
	path = normalize(path)

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range g.includes[path] {
		delete(g.included[t], path)
	}
	delete(g.includes, path)
}

// Includes returns the files path includes directly, in file order.
func (g *IncludeGraph) Includes(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.includes[normalize(path)]...)
}

// Dependents returns every file that includes path directly or through
// other files, sorted. Cycles are tolerated.
func (g *IncludeGraph) Dependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	start := normalize(path)
	seen := map[string]bool{start: true}
	queue := []string{start}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for parent := range g.included[cur] {
			if seen[parent] {
				continue
			}
			seen[parent] = true
			out = append(out, parent)
			queue = append(queue, parent)
		}
	}
	sort.Strings(out)
	return out
}

// Follow indexes paths and every file they include, directly or through
// other files, reading each from disk. It returns all of them sorted.
// Unreadable files are listed but contribute no edges.
func (g *IncludeGraph) Follow(paths []string) []string {
	seen := make(map[string]bool)
	var queue []string
	for _, p := range paths {
		p = normalize(p)
		if !seen[p] {
			seen[p] = true
			queue = append(queue, p)
		}
	}

	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)

		content, err := os.ReadFile(cur)
		if err != nil {
			logger.Debug("skipping unreadable file", "path", cur, "error", err)
			g.RemoveFile(cur)
			continue
		}
		g.AddFile(cur, string(content))
		for _, inc := range g.Includes(cur) {
			if !seen[inc] {
				seen[inc] = true
				queue = append(queue, inc)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (g *IncludeGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.includes)
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(strings.TrimSpace(path))
}
