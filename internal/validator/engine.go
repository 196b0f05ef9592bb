package validator

import (
	"math"
	"strconv"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/schema"
)

// Check applies the highest-priority rule of p whose category is enabled in
// checks. A disabled category is skipped as if the field were absent. A
// record without any enabled rule is always valid.
func Check(name string, value float64, p schema.Param, checks config.Checks) (string, bool) {
	for _, rule := range RulesFor(p) {
		if !rule.Kind().Enabled(checks) {
			continue
		}
		return rule.Check(name, value)
	}
	return "", false
}

// FormatValue renders v as the shortest decimal string that parses back to
// v, without an exponent ("1", "0.5", "-3"). This is also the form the
// generator uses for the keys of Values.
func FormatValue(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
