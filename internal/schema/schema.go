package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed metadata.cue
var metadataCUE string

var ErrInvalidMetadata = errors.New("invalid metadata")

// Param is the metadata record of a single parameter. Only ReadOnly,
// Bitmask, Range and Values take part in validation; the rest is kept for
// display.
type Param struct {
	DisplayName    string            `json:"DisplayName,omitempty"`
	Description    string            `json:"Description,omitempty"`
	User           string            `json:"User,omitempty"`
	Units          string            `json:"Units,omitempty"`
	RebootRequired Flag              `json:"RebootRequired,omitempty"`
	ReadOnly       *Flag             `json:"ReadOnly,omitempty"`
	Bitmask        map[string]string `json:"Bitmask,omitempty"`
	Range          *Range            `json:"Range,omitempty"`
	Values         map[string]string `json:"Values,omitempty"`
}

type Range struct {
	Low  Bound `json:"low"`
	High Bound `json:"high"`
}

// Bound keeps a range limit exactly as the generator wrote it. JSON numbers
// are accepted and kept as their literal text.
type Bound string

func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("range bound: %w", err)
	}
	*b = Bound(n.String())
	return nil
}

// Flag is a boolean that also accepts the "True"/"False" strings some
// generator versions emit.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	switch strings.ToLower(s) {
	case "true":
		*f = true
	case "false", "":
		*f = false
	default:
		return fmt.Errorf("flag: unexpected value %q", s)
	}
	return nil
}

type Schema struct {
	Params map[string]Param
}

func New(params map[string]Param) *Schema {
	if params == nil {
		params = make(map[string]Param)
	}
	return &Schema{Params: params}
}

func (s *Schema) Lookup(name string) (Param, bool) {
	if s == nil {
		return Param{}, false
	}
	p, ok := s.Params[name]
	return p, ok
}

func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Params)
}

// LoadSchema reads a generated metadata document from disk.
func LoadSchema(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode checks the generated document against metadata.cue and flattens
// its parameter groups into a single name -> record map.
func Decode(content []byte) (*Schema, error) {
	var raw map[string]any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err := validateShape(raw); err != nil {
		return nil, err
	}

	var groups map[string]map[string]Param
	if err := json.Unmarshal(content, &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	s := New(nil)
	for _, group := range groups {
		for name, p := range group {
			s.Params[name] = p
		}
	}
	return s, nil
}

func validateShape(raw map[string]any) error {
	ctx := cuecontext.New()
	def := ctx.CompileString(metadataCUE).LookupPath(cue.ParsePath("#Document"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("metadata definition: %w", err)
	}

	res := def.Unify(ctx.Encode(raw))
	if err := res.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(msgs, "; "))
	}
	return nil
}
