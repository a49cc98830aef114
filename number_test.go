package jsonish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberInteger(t *testing.T) {
	n, ok := ParseNumber("42")
	require.True(t, ok)
	assert.True(t, n.IsInteger())
	i, ok := n.Int64()
	require.True(t, ok)
	assert.EqualValues(t, 42, i)
	assert.Equal(t, "42", n.String())
}

func TestParseNumberNegative(t *testing.T) {
	n, ok := ParseNumber("-17")
	require.True(t, ok)
	i, _ := n.Int64()
	assert.EqualValues(t, -17, i)
}

func TestParseNumberFraction(t *testing.T) {
	n, ok := ParseNumber("3.14")
	require.True(t, ok)
	assert.False(t, n.IsInteger())
	assert.InDelta(t, 3.14, n.Float64(), 0.0001)
}

func TestParseNumberExponent(t *testing.T) {
	n, ok := ParseNumber("6.022e23")
	require.True(t, ok)
	assert.InDelta(t, 6.022e23, n.Float64(), 1e18)
}

func TestParseNumberRejectsLeadingPlus(t *testing.T) {
	_, ok := ParseNumber("+5")
	assert.False(t, ok)
}

func TestParseNumberRejectsNonFiniteWords(t *testing.T) {
	for _, s := range []string{"Infinity", "-Infinity", "NaN"} {
		_, ok := ParseNumber(s)
		assert.False(t, ok, "%q must not parse as a JSON number", s)
	}
}

func TestParseNumberRejectsTrailingGarbage(t *testing.T) {
	_, ok := ParseNumber("12abc")
	assert.False(t, ok)
}

func TestParseNumberRejectsEmptyFraction(t *testing.T) {
	_, ok := ParseNumber("1.")
	assert.False(t, ok)
}

func TestParseNumberTrimsWhitespace(t *testing.T) {
	n, ok := ParseNumber("  7  ")
	require.True(t, ok)
	i, _ := n.Int64()
	assert.EqualValues(t, 7, i)
}
