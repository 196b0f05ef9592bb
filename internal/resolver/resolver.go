package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/parser"
)

// MaxIncludeDepth bounds @include nesting. A deeper chain is almost always a
// cycle, and aborts the run.
const MaxIncludeDepth = 10

var ErrIncludeDepth = errors.New("too many levels of @include")

// File is one loaded parameter file.
type File struct {
	Path string
	// Params holds one entry per name, in order of first definition. A
	// redefinition replaces the value but keeps the position.
	Params []*parser.Entry
	// Errors holds parse, directive and redefinition errors in line order.
	Errors []*parser.Error
	// Names is the defined-name set at the end of the file.
	Names NameSet
}

type Resolver struct {
	checks   config.Checks
	readFile func(string) ([]byte, error)
}

func New(checks config.Checks) *Resolver {
	return &Resolver{
		checks:   checks,
		readFile: os.ReadFile,
	}
}

func (r *Resolver) Load(path string) (*File, error) {
	return r.loadPath(path, 0)
}

// LoadContent loads a file whose content is already in memory. Included
// files are still read from disk, relative to path.
func (r *Resolver) LoadContent(path, content string) (*File, error) {
	return r.load(path, content, 0)
}

func (r *Resolver) loadPath(path string, depth int) (*File, error) {
	if depth > MaxIncludeDepth {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}
	content, err := r.readFile(path)
	if err != nil {
		return nil, err
	}
	return r.load(path, string(content), depth)
}

func (r *Resolver) load(path, content string, depth int) (*File, error) {
	if depth > MaxIncludeDepth {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}

	f := &File{Path: path, Names: make(NameSet)}
	index := make(map[string]int)

	for _, line := range parser.Parse(content).Lines {
		switch line.Kind {
		case parser.LineDirective:
			if err := r.applyDirective(f, line, depth); err != nil {
				return nil, err
			}
			continue
		case parser.LineParam:
			if f.Names.Has(line.Name) && r.checks.Redefinition {
				f.Errors = append(f.Errors, &parser.Error{
					Line:    line.Number,
					Message: fmt.Sprintf("%s redefined", line.Name),
				})
			}
			f.Names.Add(line.Name)
		}

		if line.Err != nil {
			f.Errors = append(f.Errors, line.Err)
		}
		if e := line.Entry; e != nil {
			if i, ok := index[e.Name]; ok {
				f.Params[i] = e
			} else {
				index[e.Name] = len(f.Params)
				f.Params = append(f.Params, e)
			}
		}
	}
	return f, nil
}

func (r *Resolver) applyDirective(f *File, line parser.Line, depth int) error {
	d := line.Directive
	switch d.Kind {
	case parser.DirectiveInclude:
		target := d.Arg
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(f.Path), target)
		}
		inc, err := r.loadPath(target, depth+1)
		if err != nil {
			return fmt.Errorf("%s:%d: @include %s: %w", f.Path, line.Number, d.Arg, err)
		}
		f.Names.Union(inc.Names)
		logger.Debug("included parameter file", "file", f.Path, "include", target, "names", len(inc.Names))

	case parser.DirectiveDelete:
		g, err := CompilePattern(d.Arg)
		if err != nil {
			f.Errors = append(f.Errors, &parser.Error{
				Line:    line.Number,
				Message: fmt.Sprintf("Invalid pattern for @delete: `%s`", line.Raw),
			})
			return nil
		}
		removed := f.Names.DeleteMatching(g)
		logger.Debug("deleted parameters", "file", f.Path, "pattern", d.Arg, "removed", len(removed))
	}
	return nil
}
