package parser

import (
	"strings"
)

// Parse scans every line of a parameter file. It never stops at a bad line:
// errors are kept on the lines they belong to, in file order.
func Parse(content string) *ParamFile {
	f := &ParamFile{}
	for i, text := range strings.Split(content, "\n") {
		if line, ok := ScanLine(i+1, text); ok {
			f.Lines = append(f.Lines, line)
		}
	}
	return f
}
