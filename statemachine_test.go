package jsonish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMachine(t *testing.T, input string) []completedTop {
	t.Helper()
	stack := NewStack(nil)
	m := newMachine([]rune(input), stack, nil)
	require.NoError(t, m.Run())
	return stack.Completed()
}

func TestMachineLiteralUTF8WithinQuotedString(t *testing.T) {
	tops := runMachine(t, `"café"`)
	require.Len(t, tops, 1)
	s, ok := tops[0].value.AsString()
	require.True(t, ok)
	assert.Equal(t, "café", s)
}

func TestMachineUnicodeEscapeWithinQuotedString(t *testing.T) {
	tops := runMachine(t, "\"caf\\u00e9\"")
	require.Len(t, tops, 1)
	s, ok := tops[0].value.AsString()
	require.True(t, ok)
	assert.Equal(t, "café", s)
}

func TestMachineTripleBacktickFenceCapturesLangAndBody(t *testing.T) {
	tops := runMachine(t, "```python\nprint(1)\n```")
	require.Len(t, tops, 1)
	tag, inner, ok := tops[0].value.AsMarkdown()
	require.True(t, ok)
	assert.Equal(t, "python", tag)
	s, _ := inner.AsString()
	assert.Equal(t, "print(1)\n", s)
}

func TestMachineSingleQuoteDoesNotCloseDoubleQuotedString(t *testing.T) {
	tops := runMachine(t, `"it's fine"`)
	require.Len(t, tops, 1)
	s, _ := tops[0].value.AsString()
	assert.Equal(t, "it's fine", s)
}

func TestMachineDropsTrailingLineCommentAfterValue(t *testing.T) {
	tops := runMachine(t, "{\"a\": 1} // done")
	require.Len(t, tops, 1)
	pairs, ok := tops[0].value.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 1)
}

func TestMachineUnterminatedObjectDrainsAtEOF(t *testing.T) {
	tops := runMachine(t, `{"a": 1, "b": 2`)
	require.Len(t, tops, 1)
	pairs, ok := tops[0].value.AsObject()
	require.True(t, ok)
	require.Len(t, pairs, 2)
}

func TestMachineMismatchedArrayClosesAtEOF(t *testing.T) {
	tops := runMachine(t, `[1, 2, 3`)
	require.Len(t, tops, 1)
	elems, ok := tops[0].value.AsArray()
	require.True(t, ok)
	require.Len(t, elems, 3)
}

func TestMachineClassifyReportsObjectKeyThenValue(t *testing.T) {
	stack := NewStack(nil)
	m := newMachine([]rune(""), stack, nil)

	stack.Push(&builder{kind: kindObject})
	stack.Push(newStringBuilder(kindQuotedString, "k"))
	assert.Equal(t, classObjectKey, m.classify())

	stack.CompleteCollection() // "k" becomes a key
	stack.Push(newStringBuilder(kindQuotedString, "v"))
	assert.Equal(t, classObjectValue, m.classify())
}

func TestMachineClassifyReportsArrayElement(t *testing.T) {
	stack := NewStack(nil)
	m := newMachine([]rune(""), stack, nil)
	stack.Push(&builder{kind: kindArray})
	stack.Push(newStringBuilder(kindQuotedString, "x"))
	assert.Equal(t, classArrayElement, m.classify())
}

func TestMachineClassifyReportsBareAtTopLevel(t *testing.T) {
	stack := NewStack(nil)
	m := newMachine([]rune(""), stack, nil)
	stack.Push(newStringBuilder(kindUnquotedString, "x"))
	assert.Equal(t, classBare, m.classify())
}
