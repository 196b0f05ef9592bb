package parser

type LineKind int

const (
	LineParam LineKind = iota
	LineDirective
	LineError
)

type DirectiveKind int

const (
	DirectiveUnknown DirectiveKind = iota
	DirectiveInclude
	DirectiveDelete
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveInclude:
		return "@include"
	case DirectiveDelete:
		return "@delete"
	default:
		return "@unknown"
	}
}

type Directive struct {
	Kind DirectiveKind
	Name string
	Arg  string
}

// Entry is one successfully parsed parameter assignment.
type Entry struct {
	Line       int
	Name       string
	Value      float64
	Literal    string
	Suppressed bool
	Comment    string
	Raw        string
}

type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Line is the result of scanning one non-blank line of a parameter file.
//
// A LineParam line always carries Name. Entry is nil when the value could not
// be converted, in which case Err is set as well: the name still counts as
// defined for redefinition tracking.
type Line struct {
	Number    int
	Kind      LineKind
	Raw       string
	Name      string
	Directive *Directive
	Entry     *Entry
	Err       *Error
}

type ParamFile struct {
	Lines []Line
}

// Entries returns the parsed entries in file order, including redefinitions.
func (f *ParamFile) Entries() []*Entry {
	var out []*Entry
	for i := range f.Lines {
		if f.Lines[i].Entry != nil {
			out = append(out, f.Lines[i].Entry)
		}
	}
	return out
}

func (f *ParamFile) Errors() []*Error {
	var out []*Error
	for i := range f.Lines {
		if f.Lines[i].Err != nil {
			out = append(out, f.Lines[i].Err)
		}
	}
	return out
}

func (f *ParamFile) Directives() []*Directive {
	var out []*Directive
	for i := range f.Lines {
		if f.Lines[i].Directive != nil {
			out = append(out, f.Lines[i].Directive)
		}
	}
	return out
}
