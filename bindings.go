package jsonish

import "fmt"

// ParseToJSONString is the minimal host-binding surface this package
// exposes for embedders that just want "free-form text in, canonical
// JSON out": it parses raw with default options and serializes the
// result compactly in one call.
//
// On failure the returned error includes the original input alongside
// the underlying error, mirroring the error-reporting convention used by
// bindings that need to surface both the offending text and the cause to
// a caller outside this module.
func ParseToJSONString(raw string) (string, error) {
	value, err := NewParser().Parse(raw)
	if err != nil {
		return "", bindingError(raw, fmt.Errorf("failed to parse input into a value: %w", err))
	}
	out, err := ToJSONString(value)
	if err != nil {
		return "", bindingError(raw, err)
	}
	return out, nil
}

// ParseToJSONStringPretty is ParseToJSONString with indented output.
func ParseToJSONStringPretty(raw string) (string, error) {
	value, err := NewParser().Parse(raw)
	if err != nil {
		return "", bindingError(raw, fmt.Errorf("failed to parse input into a value: %w", err))
	}
	out, err := ToJSONStringPretty(value)
	if err != nil {
		return "", bindingError(raw, err)
	}
	return out, nil
}

// bindingError wraps err with the original input string, so a caller that
// only sees the formatted message still has enough context to reproduce
// the failure.
func bindingError(original string, err error) error {
	return fmt.Errorf("original_string: %s, error: %w", original, err)
}
