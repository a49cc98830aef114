package jsonish

import (
	"strconv"
	"strings"
)

// Number is a JSON number. It preserves the integer-vs-fractional
// distinction JSON itself makes: a bareword that parses as an integer
// literal (no '.', 'e', or 'E') within the int64 range is stored as an
// int64 and re-serializes without a decimal point; everything else is
// stored as a float64.
//
// Number is not arbitrary-precision: integer literals outside the int64
// range, and every literal with a decimal point or exponent, are held as
// float64 and lose precision beyond it, like encoding/json does. This matches the behavior of every JSON library in this module's
// surrounding ecosystem and keeps Number a plain, comparable struct.
type Number struct {
	isInt bool
	i     int64
	f     float64
}

// IntNumber builds an integer Number.
func IntNumber(i int64) Number { return Number{isInt: true, i: i} }

// FloatNumber builds a fractional Number.
func FloatNumber(f float64) Number { return Number{isInt: false, f: f} }

// ParseNumber attempts to parse s as a finite JSON number. It reports
// false if s does not match JSON number grammar or is not finite
// (NaN/Inf are not valid JSON numbers).
func ParseNumber(s string) (Number, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Number{}, false
	}
	if !looksLikeJSONNumber(trimmed) {
		return Number{}, false
	}
	if !strings.ContainsAny(trimmed, ".eE") {
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return IntNumber(i), true
		}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Number{}, false
	}
	return FloatNumber(f), true
}

// looksLikeJSONNumber performs a structural check matching JSON's number
// grammar: an optional '-', digits, an optional fraction, an optional
// exponent. It rejects leading '+' and barewords like "Infinity"/"NaN"
// that strconv would otherwise happily parse as floats.
func looksLikeJSONNumber(s string) bool {
	i := 0
	n := len(s)
	if i < n && s[i] == '-' {
		i++
	}
	if i >= n || s[i] < '0' || s[i] > '9' {
		return false
	}
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < n && s[i] == '.' {
		i++
		start := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == n
}

// IsInteger reports whether n was parsed without a fractional part.
func (n Number) IsInteger() bool { return n.isInt }

// Int64 returns the integer value and true if n is an integer.
func (n Number) Int64() (int64, bool) {
	if !n.isInt {
		return 0, false
	}
	return n.i, true
}

// Float64 returns n as a float64 regardless of variant.
func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// String returns the canonical decimal representation used for equality
// and hashing.
func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}
