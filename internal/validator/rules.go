package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/schema"
)

// Kind identifies a check category governed by a metadata field.
type Kind int

const (
	KindReadOnly Kind = iota
	KindBitmask
	KindRange
	KindValues
)

func (k Kind) String() string {
	switch k {
	case KindReadOnly:
		return "ReadOnly"
	case KindBitmask:
		return "Bitmask"
	case KindRange:
		return "Range"
	case KindValues:
		return "Values"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) Enabled(c config.Checks) bool {
	switch k {
	case KindReadOnly:
		return c.ReadOnly
	case KindBitmask:
		return c.Bitmask
	case KindRange:
		return c.Range
	case KindValues:
		return c.Values
	default:
		return false
	}
}

// Rule is one validity constraint taken from a metadata record.
type Rule interface {
	Kind() Kind
	// Check returns the diagnostic text and true when value is invalid.
	Check(name string, value float64) (string, bool)
}

// RulesFor returns the rules present in p, highest priority first:
// ReadOnly, Bitmask, Range, Values. Only the first enabled one is applied.
func RulesFor(p schema.Param) []Rule {
	var rules []Rule
	if p.ReadOnly != nil {
		rules = append(rules, ReadOnlyRule{ReadOnly: bool(*p.ReadOnly)})
	}
	if p.Bitmask != nil {
		rules = append(rules, BitmaskRule{Bits: p.Bitmask})
	}
	if p.Range != nil {
		rules = append(rules, RangeRule{Low: p.Range.Low, High: p.Range.High})
	}
	if p.Values != nil {
		rules = append(rules, ValuesRule{Values: p.Values})
	}
	return rules
}

type ReadOnlyRule struct {
	ReadOnly bool
}

func (ReadOnlyRule) Kind() Kind { return KindReadOnly }

func (r ReadOnlyRule) Check(name string, _ float64) (string, bool) {
	if r.ReadOnly {
		return fmt.Sprintf("%s is read only", name), true
	}
	return "", false
}

const bitmaskBits = 64

type BitmaskRule struct {
	Bits map[string]string
}

func (BitmaskRule) Kind() Kind { return KindBitmask }

func (r BitmaskRule) Check(name string, value float64) (string, bool) {
	if math.IsNaN(value) || math.Trunc(value) != value {
		return fmt.Sprintf("%s: %s is not an integer", name, FormatValue(value)), true
	}
	if value < 0 {
		return fmt.Sprintf("%s: %s is negative", name, FormatValue(value)), true
	}
	if value >= math.Ldexp(1, bitmaskBits) {
		return fmt.Sprintf("%s: %s is larger than %d bits", name, FormatValue(value), bitmaskBits), true
	}

	bits := uint64(value)
	for i := 0; i < bitmaskBits; i++ {
		if bits < uint64(1)<<i {
			break
		}
		if bits&(uint64(1)<<i) == 0 {
			continue
		}
		if _, ok := r.Bits[strconv.Itoa(i)]; !ok {
			return fmt.Sprintf("%s: bit %d is not valid", name, i), true
		}
	}
	return "", false
}

type RangeRule struct {
	Low  schema.Bound
	High schema.Bound
}

func (RangeRule) Kind() Kind { return KindRange }

func (r RangeRule) Check(name string, value float64) (string, bool) {
	low, err := parseBound(r.Low)
	if err != nil {
		return fmt.Sprintf("%s: invalid range bound %q in metadata", name, string(r.Low)), true
	}
	high, err := parseBound(r.High)
	if err != nil {
		return fmt.Sprintf("%s: invalid range bound %q in metadata", name, string(r.High)), true
	}

	if value < low {
		return fmt.Sprintf("%s: %s is below minimum value %s", name, FormatValue(value), r.Low), true
	}
	if value > high {
		return fmt.Sprintf("%s: %s is above maximum value %s", name, FormatValue(value), r.High), true
	}
	return "", false
}

func parseBound(b schema.Bound) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}

type ValuesRule struct {
	Values map[string]string
}

func (ValuesRule) Kind() Kind { return KindValues }

func (r ValuesRule) Check(name string, value float64) (string, bool) {
	if _, ok := r.Values[FormatValue(value)]; !ok {
		return fmt.Sprintf("%s: %s is not a valid value", name, FormatValue(value)), true
	}
	return "", false
}
