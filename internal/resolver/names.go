package resolver

import (
	"sort"

	"github.com/gobwas/glob"
)

// NameSet is the set of parameter names defined so far in a file, after
// includes and deletes have been applied.
type NameSet map[string]struct{}

func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Union(other NameSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// DeleteMatching removes every name matched by g and returns the removed
// names in sorted order.
func (s NameSet) DeleteMatching(g glob.Glob) []string {
	var removed []string
	for name := range s {
		if g.Match(name) {
			removed = append(removed, name)
		}
	}
	for _, name := range removed {
		delete(s, name)
	}
	sort.Strings(removed)
	return removed
}

func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompilePattern compiles a shell-style @delete pattern: '*' matches any run
// of characters, '?' a single character, and bracket classes are supported.
func CompilePattern(pattern string) (glob.Glob, error) {
	return glob.Compile(pattern)
}
