package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/resolver"
)

const deletedPrefix = "#deleted "

// Builder flattens a defaults file into a single file without directives,
// suitable for tools that do not understand @include and @delete.
type Builder struct {
	readFile func(string) ([]byte, error)
}

func NewBuilder() *Builder {
	return &Builder{readFile: os.ReadFile}
}

// Build writes the flattened content of path to w. Lines are joined with
// '\n' and no trailing newline is added.
func (b *Builder) Build(path string, w io.Writer) error {
	lines, err := b.Flatten(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// Flatten returns the lines of path with every @include replaced by the
// included lines and every @delete applied to the lines before it.
func (b *Builder) Flatten(path string) ([]string, error) {
	return b.flatten(path, 0)
}

func (b *Builder) flatten(path string, depth int) ([]string, error) {
	if depth > resolver.MaxIncludeDepth {
		return nil, fmt.Errorf("%w: %s", resolver.ErrIncludeDepth, path)
	}

	content, err := b.readFile(path)
	if err != nil {
		return nil, err
	}

	var out []string
	for n, line := range splitLines(string(content)) {
		directive, arg := splitDirective(line)
		switch directive {
		case "@include":
			if arg == "" {
				return nil, fmt.Errorf("%s:%d: missing argument for @include", path, n+1)
			}
			target := arg
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			inc, err := b.flatten(target, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: @include %s: %w", path, n+1, arg, err)
			}
			out = append(out, inc...)
			continue

		case "@delete":
			if arg == "" {
				return nil, fmt.Errorf("%s:%d: missing argument for @delete", path, n+1)
			}
			g, err := resolver.CompilePattern(arg)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid pattern %q: %w", path, n+1, arg, err)
			}
			deleted := 0
			for i, prev := range out {
				if name := paramName(prev); name != "" && g.Match(name) {
					out[i] = deletedPrefix + prev
					deleted++
				}
			}
			logger.Debug("deleted default lines", "file", path, "pattern", arg, "lines", deleted)
			line = "#" + line
		}

		out = append(out, line)
	}
	return out, nil
}

// splitLines splits like Python's splitlines: a trailing newline does not
// produce an empty last line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func splitDirective(line string) (string, string) {
	if !strings.HasPrefix(line, "@") {
		return "", ""
	}
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// paramName returns the name of a parameter line, or "" for blank, comment
// and directive lines.
func paramName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' || line[0] == '@' {
		return ""
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
