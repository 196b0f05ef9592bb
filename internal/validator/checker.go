package validator

import (
	"fmt"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/parser"
	"github.com/paramcheck/paramcheck/internal/resolver"
	"github.com/paramcheck/paramcheck/internal/schema"
)

type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string { return d.Message }

// Messages returns the plain diagnostic strings in order.
func Messages(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

// Checker validates parameter files against a schema. A nil schema limits it
// to parse, directive and redefinition errors. The check set is fixed at
// construction and shared by the resolver and the validation rules.
type Checker struct {
	schema   *schema.Schema
	checks   config.Checks
	resolver *resolver.Resolver
}

func NewChecker(s *schema.Schema, checks config.Checks) *Checker {
	return &Checker{
		schema:   s,
		checks:   checks,
		resolver: resolver.New(checks),
	}
}

// CheckFile returns the diagnostics of one file. The error is reserved for
// conditions that abort the whole run, such as an include cycle.
func (c *Checker) CheckFile(path string) ([]Diagnostic, error) {
	f, err := c.resolver.Load(path)
	if err != nil {
		return nil, err
	}
	return c.check(f), nil
}

func (c *Checker) CheckContent(path, content string) ([]Diagnostic, error) {
	f, err := c.resolver.LoadContent(path, content)
	if err != nil {
		return nil, err
	}
	return c.check(f), nil
}

func (c *Checker) check(f *resolver.File) []Diagnostic {
	var diags []Diagnostic
	for _, e := range f.Errors {
		diags = append(diags, Diagnostic{Line: e.Line, Message: e.Message})
	}
	if c.schema == nil {
		return diags
	}

	for _, e := range f.Params {
		if msg, failed := c.checkEntry(e); failed {
			diags = append(diags, Diagnostic{Line: e.Line, Message: msg})
		}
	}
	return diags
}

func (c *Checker) checkEntry(e *parser.Entry) (string, bool) {
	p, ok := c.schema.Lookup(e.Name)
	if !ok {
		if !c.checks.Missing {
			return "", false
		}
		return fmt.Sprintf("%s not found in metadata", e.Name), true
	}

	if !e.Suppressed {
		return Check(e.Name, e.Value, p, c.checks)
	}

	// A suppression is only accepted when the full check set would have
	// rejected the value; otherwise the marker itself is the problem.
	if _, failed := Check(e.Name, e.Value, p, config.AllChecks()); failed {
		return "", false
	}
	return fmt.Sprintf("%s does not need DISABLE_CHECKS", e.Name), true
}

// Result is the outcome of checking one file.
type Result struct {
	File        string
	Diagnostics []Diagnostic
}

func (r Result) Passed() bool { return len(r.Diagnostics) == 0 }

// CheckFiles checks files one after another and stops at the first fatal
// error.
func (c *Checker) CheckFiles(paths []string) ([]Result, error) {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		diags, err := c.CheckFile(path)
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, Result{File: path, Diagnostics: diags})
	}
	return results, nil
}
