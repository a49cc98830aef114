package jsonish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string, opts ...Option) Value {
	t.Helper()
	v, err := Parse(raw, opts...)
	require.NoError(t, err)
	return v
}

func TestParseWellFormedObject(t *testing.T) {
	v := mustParse(t, `{"a": 1, "b": "two"}`)
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].Key)
	assert.Equal(t, "b", pairs[1].Key)
	str, _ := pairs[1].Value.AsString()
	assert.Equal(t, "two", str)
}

func TestParseUnquotedKeysAndBarewordValues(t *testing.T) {
	// Entries end at a comma followed by a newline; on one line, ", active"
	// after the bareword Alice would be kept as part of its value.
	v := mustParse(t, "{name: Alice,\nactive: true,\nage: 30}")
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 3)

	name, _ := pairs[0].Value.AsString()
	assert.Equal(t, "Alice", name)

	active, _ := pairs[1].Value.AsBoolean()
	assert.True(t, active)

	age, _ := pairs[2].Value.AsNumber()
	i, _ := age.Int64()
	assert.EqualValues(t, 30, i)
}

func TestParseSingleAndTripleQuotedStrings(t *testing.T) {
	v := mustParse(t, `{'name': 'single', note: """triple quoted"""}`)
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	single, _ := pairs[0].Value.AsString()
	assert.Equal(t, "single", single)
	triple, _ := pairs[1].Value.AsString()
	assert.Equal(t, "triple quoted", triple)
}

func TestParseArrayOfMixedElements(t *testing.T) {
	v := mustParse(t, `[1, "two", true, null, {"nested": 4}]`)
	elems, ok := v.AsArray()
	require.True(t, ok)
	require.Len(t, elems, 5)
	assert.Equal(t, TypeNumber, elems[0].Type())
	assert.Equal(t, TypeString, elems[1].Type())
	assert.Equal(t, TypeBoolean, elems[2].Type())
	assert.Equal(t, TypeNull, elems[3].Type())
	assert.Equal(t, TypeObject, elems[4].Type())
}

func TestParseEscapedQuotedString(t *testing.T) {
	v := mustParse(t, `{"msg": "line one\nline two, \"quoted\""}`)
	pairs, _ := v.AsObject()
	require.Len(t, pairs, 1)
	s, _ := pairs[0].Value.AsString()
	assert.Equal(t, "line one\nline two, \"quoted\"", s)
}

func TestParseMarkdownFencedJSON(t *testing.T) {
	v := mustParse(t, "Here is the result:\n```json\n{\"ok\": true}\n```\n")
	tag, inner, ok := v.AsMarkdown()
	require.True(t, ok)
	assert.Equal(t, "json", tag)
	pairs, _ := inner.AsObject()
	require.Len(t, pairs, 1)
	b, _ := pairs[0].Value.AsBoolean()
	assert.True(t, b)
}

func TestParseGrepFallbackFindsEmbeddedJSON(t *testing.T) {
	v := mustParse(t, `The model says: {"result": 42} and nothing else.`)
	inner, fixes, ok := v.AsFixedJson()
	require.True(t, ok)
	assert.Contains(t, fixes, GreppedForJSON)
	pairs, _ := inner.AsObject()
	require.Len(t, pairs, 1)
}

func TestParseUnparseableFallsBackToString(t *testing.T) {
	v := mustParse(t, "just plain prose, no structure here")
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "just plain prose, no structure here", s)
}

func TestParseDisallowAsStringReturnsError(t *testing.T) {
	_, err := Parse("just plain prose", WithAllowAsString(false), WithGrepFallback(false), WithMarkdownFences(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestParseMultipleTopLevelValuesInferredArray(t *testing.T) {
	v := mustParse(t, `{"a": 1} {"b": 2}`)
	arr, fixes, ok := v.AsFixedJson()
	require.True(t, ok)
	assert.Contains(t, fixes, InferredArray)
	elems, ok := arr.AsArray()
	require.True(t, ok)
	require.Len(t, elems, 2)
}

func TestParseMultipleTopLevelValuesAsAnyOfWhenDisallowed(t *testing.T) {
	const raw = `{"a": 1} {"b": 2}`
	v := mustParse(t, raw, WithAllowMultipleValues(false))
	candidates, original, ok := v.AsAnyOf()
	require.True(t, ok)
	assert.Len(t, candidates, 2)
	assert.Equal(t, raw, original, "AnyOf.original must be the exact source span, not a rendered candidate")

	names := v.AnyOfNames()
	require.Len(t, names, 2)
	assert.NotEmpty(t, names[0])
	assert.NotEmpty(t, names[1])
	assert.NotEqual(t, names[0], names[1], "each top-level completion gets its own synthetic name")
}

func TestParseBlockCommentBetweenFieldsIsDropped(t *testing.T) {
	v := mustParse(t, `{"a": 1, /* note */ "b": 2}`)
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	assert.Equal(t, "b", pairs[1].Key)
}

func TestParseTrailingCommentAfterTopLevelValueIsDropped(t *testing.T) {
	v := mustParse(t, "{\"a\": 1}\n// trailing note")
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 1)
}

func TestParseObjectValueCommaAmbiguity(t *testing.T) {
	v := mustParse(t, `{"a": hello, "b": 2}`)
	pairs, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	a, _ := pairs[0].Value.AsString()
	assert.Equal(t, "hello", a)
	b, _ := pairs[1].Value.AsNumber()
	i, _ := b.Int64()
	assert.EqualValues(t, 2, i)
}

func TestParserIsSafeForConcurrentUse(t *testing.T) {
	p := NewParser()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = p.Parse(`{"a": 1, "b": [1,2,3]}`)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
