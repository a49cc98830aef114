// Package jsonish parses JSON-ish text: input that is nominally JSON but
// may be malformed, embedded in prose, wrapped in fenced code blocks,
// contain comments, use unquoted keys, mixed quoting styles, trailing
// garbage, or truncated structures. It is meant for callers that need to
// extract structured values from the free-form textual output of language
// models, where well-formed JSON cannot be assumed.
package jsonish

import (
	"fmt"
	"strings"
)

// Type identifies the variant held by a Value.
type Type int

const (
	TypeString Type = iota
	TypeNumber
	TypeBoolean
	TypeNull
	TypeObject
	TypeArray
	TypeMarkdown
	TypeFixedJson
	TypeAnyOf
)

var typeStrings = [...]string{
	"String", "Number", "Boolean", "Null", "Object", "Array",
	"Markdown", "FixedJson", "AnyOf",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeStrings) {
		return "<unknown>"
	}
	return typeStrings[t]
}

// Fix records a recovery step the parser applied while building a Value.
type Fix int

const (
	// GreppedForJSON marks that the value was located by scanning prose
	// for the first plausible opening bracket rather than parsing the
	// whole input directly.
	GreppedForJSON Fix = iota
	// InferredArray marks that multiple top-level values were wrapped
	// into a single array because the caller allowed it.
	InferredArray
)

func (f Fix) String() string {
	switch f {
	case GreppedForJSON:
		return "GreppedForJSON"
	case InferredArray:
		return "InferredArray"
	default:
		return fmt.Sprintf("Fix(%d)", int(f))
	}
}

// Pair is a single (key, value) entry of an Object, kept in insertion
// order. Keys are not deduplicated at build time.
type Pair struct {
	Key   string
	Value Value
}

// Value is the recursive tagged union produced by the parser and
// consumed by the serde bridge. Only the fields matching Type are
// meaningful; the zero Value is an empty String (use Null for Null).
type Value struct {
	typ Type

	str     string
	num     Number
	boolean bool

	// Object holds ordered (key, value) pairs.
	object []Pair
	// Array holds ordered elements.
	array []Value

	// Markdown payload.
	mdTag   string
	mdInner *Value

	// FixedJson payload.
	fixedInner *Value
	fixes      []Fix

	// AnyOf payload.
	anyOfCandidates []Value
	anyOfOriginal   string
	// anyOfNames holds the synthetic name assigned to each candidate when
	// it completed as a top-level value (see the collection stack's
	// synthetic-name generation), letting a driver address one candidate
	// among several structurally-identical ones. Empty when the
	// candidates did not come from the same completed-top-level batch.
	anyOfNames []string
}

// Null is the singular Null value.
var Null = Value{typ: TypeNull}

// NewString builds a String value.
func NewString(s string) Value { return Value{typ: TypeString, str: s} }

// NewNumber builds a Number value.
func NewNumber(n Number) Value { return Value{typ: TypeNumber, num: n} }

// NewBoolean builds a Boolean value.
func NewBoolean(b bool) Value { return Value{typ: TypeBoolean, boolean: b} }

// NewObject builds an Object value from ordered pairs. The slice is
// copied defensively.
func NewObject(pairs []Pair) Value {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Value{typ: TypeObject, object: cp}
}

// NewArray builds an Array value from ordered elements. The slice is
// copied defensively.
func NewArray(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{typ: TypeArray, array: cp}
}

// NewMarkdown wraps inner, recording that it was extracted from a fenced
// code block labeled tag.
func NewMarkdown(tag string, inner Value) Value {
	return Value{typ: TypeMarkdown, mdTag: tag, mdInner: &inner}
}

// NewFixedJson wraps inner, recording the recovery steps applied to
// produce it.
func NewFixedJson(inner Value, fixes []Fix) Value {
	cp := make([]Fix, len(fixes))
	copy(cp, fixes)
	return Value{typ: TypeFixedJson, fixedInner: &inner, fixes: cp}
}

// NewAnyOf records that multiple plausible parses of original exist,
// ordered strongest candidate first. Panics if candidates is empty, since
// an AnyOf must always carry at least one candidate.
func NewAnyOf(candidates []Value, original string) Value {
	return NewAnyOfNamed(candidates, nil, original)
}

// NewAnyOfNamed is NewAnyOf with each candidate's synthetic top-level
// name attached, so a caller can address candidate i by names[i] rather
// than only by position. names may be nil or shorter than candidates;
// missing entries are simply empty strings.
func NewAnyOfNamed(candidates []Value, names []string, original string) Value {
	if len(candidates) == 0 {
		panic("jsonish: AnyOf requires at least one candidate")
	}
	cp := make([]Value, len(candidates))
	copy(cp, candidates)
	nm := make([]string, len(candidates))
	copy(nm, names)
	return Value{typ: TypeAnyOf, anyOfCandidates: cp, anyOfOriginal: original, anyOfNames: nm}
}

// Type reports the variant held by v.
func (v Value) Type() Type { return v.typ }

// AsString returns the String payload and whether v is a String.
func (v Value) AsString() (string, bool) {
	if v.typ != TypeString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the Number payload and whether v is a Number.
func (v Value) AsNumber() (Number, bool) {
	if v.typ != TypeNumber {
		return Number{}, false
	}
	return v.num, true
}

// AsBoolean returns the Boolean payload and whether v is a Boolean.
func (v Value) AsBoolean() (bool, bool) {
	if v.typ != TypeBoolean {
		return false, false
	}
	return v.boolean, true
}

// AsObject returns the ordered pairs and whether v is an Object.
func (v Value) AsObject() ([]Pair, bool) {
	if v.typ != TypeObject {
		return nil, false
	}
	return v.object, true
}

// AsArray returns the ordered elements and whether v is an Array.
func (v Value) AsArray() ([]Value, bool) {
	if v.typ != TypeArray {
		return nil, false
	}
	return v.array, true
}

// AsMarkdown returns the tag and inner value and whether v is Markdown.
func (v Value) AsMarkdown() (string, Value, bool) {
	if v.typ != TypeMarkdown {
		return "", Value{}, false
	}
	return v.mdTag, *v.mdInner, true
}

// AsFixedJson returns the inner value and applied fixes, and whether v is
// FixedJson.
func (v Value) AsFixedJson() (Value, []Fix, bool) {
	if v.typ != TypeFixedJson {
		return Value{}, nil, false
	}
	return *v.fixedInner, v.fixes, true
}

// AsAnyOf returns the candidates and original span, and whether v is
// AnyOf.
func (v Value) AsAnyOf() ([]Value, string, bool) {
	if v.typ != TypeAnyOf {
		return nil, "", false
	}
	return v.anyOfCandidates, v.anyOfOriginal, true
}

// AnyOfNames returns the synthetic name recorded for each AnyOf
// candidate (see NewAnyOfNamed), or nil if v is not an AnyOf. An AnyOf
// always has one entry per candidate; entries with no recorded name are
// empty strings. A non-empty names[i] lets a driver address candidates[i]
// directly instead of only by position.
func (v Value) AnyOfNames() []string {
	if v.typ != TypeAnyOf {
		return nil
	}
	return v.anyOfNames
}

// Display renders v in a human-readable, non-JSON form. This is used
// internally when a completed value needs to become an object key (see
// the collection stack's finalization rules) and is not a substitute for
// the serde bridge.
func (v Value) Display() string {
	var b strings.Builder
	v.writeDisplay(&b)
	return b.String()
}

func (v Value) writeDisplay(b *strings.Builder) {
	switch v.typ {
	case TypeString:
		b.WriteString(v.str)
	case TypeNumber:
		b.WriteString(v.num.String())
	case TypeBoolean:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case TypeNull:
		b.WriteString("null")
	case TypeObject:
		b.WriteByte('{')
		for i, p := range v.object {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Key)
			b.WriteString(": ")
			p.Value.writeDisplay(b)
		}
		b.WriteByte('}')
	case TypeArray:
		b.WriteByte('[')
		for i, e := range v.array {
			if i > 0 {
				b.WriteString(", ")
			}
			e.writeDisplay(b)
		}
		b.WriteByte(']')
	case TypeMarkdown:
		b.WriteString(v.mdTag)
		b.WriteByte('\n')
		v.mdInner.writeDisplay(b)
	case TypeFixedJson:
		v.fixedInner.writeDisplay(b)
	case TypeAnyOf:
		b.WriteString("AnyOf[")
		b.WriteString(v.anyOfOriginal)
		b.WriteByte(',')
		for _, c := range v.anyOfCandidates {
			c.writeDisplay(b)
			b.WriteByte(',')
		}
		b.WriteByte(']')
	}
}

// Equal reports whether v and other are structurally equal: same variant
// tags and payloads, with numbers compared by canonical decimal
// representation.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.str == other.str
	case TypeNumber:
		return v.num.String() == other.num.String()
	case TypeBoolean:
		return v.boolean == other.boolean
	case TypeNull:
		return true
	case TypeObject:
		if len(v.object) != len(other.object) {
			return false
		}
		for i, p := range v.object {
			if p.Key != other.object[i].Key || !p.Value.Equal(other.object[i].Value) {
				return false
			}
		}
		return true
	case TypeArray:
		if len(v.array) != len(other.array) {
			return false
		}
		for i, e := range v.array {
			if !e.Equal(other.array[i]) {
				return false
			}
		}
		return true
	case TypeMarkdown:
		return v.mdTag == other.mdTag && v.mdInner.Equal(*other.mdInner)
	case TypeFixedJson:
		return v.fixedInner.Equal(*other.fixedInner)
	case TypeAnyOf:
		if len(v.anyOfCandidates) != len(other.anyOfCandidates) {
			return false
		}
		for i, c := range v.anyOfCandidates {
			if !c.Equal(other.anyOfCandidates[i]) {
				return false
			}
		}
		return v.anyOfOriginal == other.anyOfOriginal
	default:
		return false
	}
}

// Hash returns a hash stable across runs for a given in-memory value.
// FixedJson hashes transparently through to its inner value, matching the
// Display/equality treatment of recovery wrappers.
func (v Value) Hash() uint64 {
	h := fnvOffset
	h = hashMix(h, uint64(v.typ))
	switch v.typ {
	case TypeString:
		h = hashString(h, v.str)
	case TypeNumber:
		h = hashString(h, v.num.String())
	case TypeBoolean:
		if v.boolean {
			h = hashMix(h, 1)
		} else {
			h = hashMix(h, 0)
		}
	case TypeNull:
		h = hashString(h, "null")
	case TypeObject:
		for _, p := range v.object {
			h = hashString(h, p.Key)
			h = hashMix(h, p.Value.Hash())
		}
	case TypeArray:
		for _, e := range v.array {
			h = hashMix(h, e.Hash())
		}
	case TypeMarkdown:
		h = hashString(h, v.mdTag)
		h = hashMix(h, v.mdInner.Hash())
	case TypeFixedJson:
		h = hashMix(h, v.fixedInner.Hash())
	case TypeAnyOf:
		for _, c := range v.anyOfCandidates {
			h = hashMix(h, c.Hash())
		}
	}
	return h
}

const fnvOffset uint64 = 14695981039346656037

func hashMix(h, x uint64) uint64 {
	h ^= x
	h *= 1099511628211
	return h
}

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
