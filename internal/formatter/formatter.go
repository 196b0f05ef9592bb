package formatter

import (
	"io"
	"strings"

	"github.com/paramcheck/paramcheck/internal/parser"
)

// Format writes content in canonical layout:
//
//	NAME, VALUE @TAG # comment
//
// Directives get a single space before their argument and comments a space
// after '#'. Lines that do not parse are copied unchanged so that formatting
// never hides an error. Runs of blank lines collapse to one.
func Format(content string, w io.Writer) error {
	var out []string
	blank := false
	for i, text := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line := formatLine(i+1, text)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(out, "\n")+"\n")
	return err
}

func formatLine(number int, text string) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}
	if raw[0] == '#' {
		return fixComment(raw)
	}

	line, ok := parser.ScanLine(number, text)
	if !ok || line.Err != nil {
		return raw
	}

	switch line.Kind {
	case parser.LineDirective:
		d := line.Directive
		if d.Arg == "" {
			return d.Name
		}
		return d.Name + " " + d.Arg
	case parser.LineParam:
		if line.Entry == nil {
			return raw
		}
		return formatEntry(line.Entry, raw)
	}
	return raw
}

func formatEntry(e *parser.Entry, raw string) string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString(", ")
	b.WriteString(e.Literal)

	// Tags and comment come from the raw text: the parsed comment has
	// its tags removed.
	body, comment, hasComment := strings.Cut(raw, "#")
	for _, tag := range parser.Tags(body) {
		b.WriteString(" ")
		b.WriteString(tag)
	}
	if hasComment {
		b.WriteString(" ")
		b.WriteString(fixComment("#" + strings.TrimSpace(comment)))
	}
	return b.String()
}

func fixComment(text string) string {
	if len(text) > 1 && text[1] != ' ' && text[1] != '#' {
		return "# " + text[1:]
	}
	return strings.TrimRight(text, " \t")
}
