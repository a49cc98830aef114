package jsonish

import (
	"bytes"
	"encoding/json"
)

// ToJSONString renders v as compact canonical JSON per §4.4: Markdown and
// FixedJson wrappers unwrap transparently, and AnyOf emits its first
// candidate whose recursive serialization is non-null, else null.
func ToJSONString(v Value) (string, error) {
	raw, err := toRawJSON(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", newParseErr(KindSerialization, err.Error())
	}
	return buf.String(), nil
}

// ToJSONStringPretty renders v as indented JSON using the same mapping as
// ToJSONString.
func ToJSONStringPretty(v Value) (string, error) {
	raw, err := toRawJSON(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", newParseErr(KindSerialization, err.Error())
	}
	return buf.String(), nil
}

// toRawJSON converts v into an encoding/json-compatible tree, then
// marshals it. Object keys preserve insertion order of first occurrence;
// a later duplicate key overwrites the value at that key's original
// position rather than appending a new entry.
func toRawJSON(v Value) (json.RawMessage, error) {
	switch v.typ {
	case TypeString:
		return json.Marshal(v.str)
	case TypeNumber:
		return jsonRawNumber(v.num), nil
	case TypeBoolean:
		return json.Marshal(v.boolean)
	case TypeNull:
		return json.Marshal(nil)
	case TypeObject:
		return objectToRawJSON(v.object)
	case TypeArray:
		return arrayToRawJSON(v.array)
	case TypeMarkdown:
		return toRawJSON(*v.mdInner)
	case TypeFixedJson:
		return toRawJSON(*v.fixedInner)
	case TypeAnyOf:
		return anyOfToRawJSON(v.anyOfCandidates)
	default:
		return json.Marshal(nil)
	}
}

func jsonRawNumber(n Number) json.RawMessage {
	return json.RawMessage(n.String())
}

func objectToRawJSON(pairs []Pair) (json.RawMessage, error) {
	order := make([]string, 0, len(pairs))
	values := make(map[string]json.RawMessage, len(pairs))
	for _, p := range pairs {
		raw, err := toRawJSON(p.Value)
		if err != nil {
			return nil, err
		}
		if _, seen := values[p.Key]; !seen {
			order = append(order, p.Key)
		}
		values[p.Key] = raw
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, newParseErr(KindSerialization, err.Error())
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func arrayToRawJSON(elems []Value) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := toRawJSON(e)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// anyOfToRawJSON emits the first candidate whose serialization is
// non-null, matching the documented (if debatable) tie-breaking rule in
// DESIGN.md's resolved open questions: first non-null wins regardless of
// how many other candidates are also non-null.
func anyOfToRawJSON(candidates []Value) (json.RawMessage, error) {
	for _, c := range candidates {
		raw, err := toRawJSON(c)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return raw, nil
		}
	}
	return json.Marshal(nil)
}
