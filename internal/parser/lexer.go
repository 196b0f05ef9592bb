package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	SuppressMarker = "DISABLE_CHECKS"

	// MinJustification is the number of non-whitespace characters a
	// DISABLE_CHECKS comment needs besides the marker itself.
	MinJustification = 5
)

var tagPattern = regexp.MustCompile(`@\S*`)

// ScanLine runs the per-line stages: directive detection, tag stripping,
// comment split, suppression check and the name/value split. It returns
// false for lines that carry nothing (blank or comment only).
func ScanLine(number int, text string) (Line, bool) {
	raw := strings.TrimSpace(text)
	line := Line{Number: number, Raw: raw}

	if strings.HasPrefix(raw, "@") {
		line.Kind = LineDirective
		d, msg := scanDirective(raw)
		if msg != "" {
			line.Kind = LineError
			line.Err = &Error{Line: number, Message: msg}
			return line, true
		}
		line.Directive = d
		return line, true
	}

	body, comment := splitComment(stripTags(raw))

	suppressed, justified := suppression(comment)
	if suppressed && !justified {
		line.Kind = LineError
		line.Err = &Error{
			Line:    number,
			Message: fmt.Sprintf("Explanation required for disabled checks: `%s`", raw),
		}
		return line, true
	}

	if body == "" {
		return line, false
	}

	name, literal := splitNameValue(body)
	if name == "" {
		line.Kind = LineError
		line.Err = parseError(number, raw)
		return line, true
	}

	line.Kind = LineParam
	line.Name = name

	value, err := ParseValue(literal)
	if err != nil {
		line.Err = parseError(number, raw)
		return line, true
	}

	line.Entry = &Entry{
		Line:       number,
		Name:       name,
		Value:      value,
		Literal:    literal,
		Suppressed: suppressed,
		Comment:    comment,
		Raw:        raw,
	}
	return line, true
}

func parseError(number int, raw string) *Error {
	return &Error{Line: number, Message: fmt.Sprintf("Error parsing line: `%s`", raw)}
}

func scanDirective(raw string) (*Directive, string) {
	name, arg := raw, ""
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		name, arg = raw[:i], strings.TrimSpace(raw[i:])
	}

	d := &Directive{Name: name, Arg: arg}
	switch name {
	case "@include":
		d.Kind = DirectiveInclude
	case "@delete":
		d.Kind = DirectiveDelete
	default:
		return d, ""
	}

	if arg == "" {
		return nil, fmt.Sprintf("Missing argument for %s: `%s`", name, raw)
	}
	return d, ""
}

// Tags returns the inline annotations of s in order of appearance.
func Tags(s string) []string {
	return tagPattern.FindAllString(s, -1)
}

// stripTags removes inline annotations such as @READONLY.
func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func splitComment(s string) (body, comment string) {
	i := strings.IndexByte(s, '#')
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
}

func suppression(comment string) (suppressed, justified bool) {
	if !strings.Contains(comment, SuppressMarker) {
		return false, true
	}
	rest := strings.ReplaceAll(comment, SuppressMarker, "")
	n := 0
	for _, r := range rest {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return true, n >= MinJustification
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// splitNameValue splits on the first run of commas and whitespace. The
// literal is everything after that run, so trailing junk makes it invalid.
func splitNameValue(s string) (name, literal string) {
	i := strings.IndexFunc(s, isSeparator)
	if i < 0 {
		return s, ""
	}
	rest := strings.TrimLeftFunc(s[i:], isSeparator)
	return s[:i], rest
}
