package parser

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

var ErrInvalidValue = errors.New("invalid value literal")

// ParseValue converts a value literal to float64. Literals containing a '.'
// are decimal floats; anything else is an integer literal in decimal or with a
// 0x, 0b or 0o prefix. Single underscores may group digits. A decimal integer
// may not start with 0 unless every digit is 0. Integers are not limited to
// 64 bits so that oversized bitmasks still reach validation.
func ParseValue(lit string) (float64, error) {
	if lit == "" {
		return 0, ErrInvalidValue
	}
	if strings.Contains(lit, ".") {
		return parseFloat(lit)
	}
	return parseInteger(lit)
}

func parseFloat(lit string) (float64, error) {
	body := strings.TrimLeft(lit, "+-")
	if len(body) > 1 && body[0] == '0' && strings.ContainsAny(body[1:2], "xXbBoO") {
		return 0, ErrInvalidValue
	}
	if strings.ContainsAny(lit, "pP") {
		return 0, ErrInvalidValue
	}
	digits, ok := removeUnderscores(lit, isDecimalDigit)
	if !ok {
		return 0, ErrInvalidValue
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	return f, nil
}

func parseInteger(lit string) (float64, error) {
	neg := false
	body := lit
	switch {
	case strings.HasPrefix(body, "-"):
		neg = true
		body = body[1:]
	case strings.HasPrefix(body, "+"):
		body = body[1:]
	}

	base := 10
	if len(body) >= 2 && body[0] == '0' {
		switch body[1] {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 10 {
			// one underscore may follow the prefix: 0x_FF
			body = strings.TrimPrefix(body[2:], "_")
		}
	}
	if body == "" || strings.ContainsAny(body, "+-") {
		return 0, ErrInvalidValue
	}

	digits, ok := removeUnderscores(body, isAlphanumeric)
	if !ok {
		return 0, ErrInvalidValue
	}
	if base == 10 && len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
		return 0, ErrInvalidValue
	}

	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, ErrInvalidValue
	}
	if neg {
		n.Neg(n)
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, nil
}

// removeUnderscores drops digit-group separators. Each underscore must sit
// between two characters accepted by digit.
func removeUnderscores(s string, digit func(byte) bool) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !digit(s[i-1]) || !digit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlphanumeric(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
