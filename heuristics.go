package jsonish

import "strings"

// parentClass describes what the collection directly beneath the current
// builder on the stack implies about the position of the string/bareword
// currently being built, per §4.2.3/§4.2.4.
type parentClass int

const (
	classBare parentClass = iota
	classInsideOpaqueParent
	classObjectKey
	classObjectValue
	classArrayElement
)

// classify inspects the entry directly beneath the top of the stack (the
// collection that will receive the builder currently being built) to
// determine the position class used by both closure heuristics.
func (m *machine) classify() parentClass {
	n := len(m.stack.entries)
	if n < 2 {
		return classBare
	}
	parent := m.stack.entries[n-2]
	switch parent.kind {
	case kindObject:
		if len(parent.keys) == len(parent.values) {
			return classObjectKey
		}
		return classObjectValue
	case kindArray:
		return classArrayElement
	default:
		return classInsideOpaqueParent
	}
}

// hasParent reports whether there is any entry beneath the top builder,
// regardless of its kind (mirrors the "has_some_object" check used to
// decide whether a stray delimiter starts a new top-level value).
func (m *machine) hasParent() bool {
	return len(m.stack.entries) >= 2
}

// unescapedQuoteCount counts the unescaped '"' occurrences already
// buffered in the current QuotedString builder: a quote is unescaped
// when it is preceded by an even number of consecutive backslashes.
func (m *machine) unescapedQuoteCount() int {
	top := m.stack.Top()
	if top == nil || top.kind != kindQuotedString {
		return 0
	}
	runes := []rune(top.buf.String())
	count := 0
	for i, c := range runes {
		if c != '"' {
			continue
		}
		backslashes := 0
		j := i
		for j > 0 {
			j--
			if runes[j] == '\\' {
				backslashes++
			} else {
				break
			}
		}
		if backslashes%2 == 0 {
			count++
		}
	}
	return count
}

// shouldCloseString decides, per §4.2.3, whether an in-string occurrence
// of closingChar is a genuine close or literal text the producer failed
// to escape.
func (m *machine) shouldCloseString(closingChar rune) bool {
	class := m.classify()
	p, ok := m.peekAt(0)
	if !ok {
		return true
	}

	switch {
	case (p == ':' || p == '}') && class == classObjectKey:
		return true
	case p == ',' && (class == classObjectValue || class == classArrayElement):
		qc := 0
		if closingChar == '"' {
			qc = m.unescapedQuoteCount()
		}
		return qc%2 == 0
	case p == '}' && class == classObjectValue:
		return true
	case p == ']' && class == classArrayElement:
		return true
	case isJSONWhitespace(p):
		i := 1
		for {
			c, ok := m.peekAt(i)
			if !ok {
				return true
			}
			if isJSONWhitespace(c) {
				i++
				continue
			}
			switch {
			case c == '}' && (class == classObjectKey || class == classObjectValue):
				return true
			case c == ':' && class == classObjectKey:
				return true
			case c == ',' && class == classObjectValue:
				return true
			case c == '"' && class == classObjectValue:
				// A quote after whitespace starts the next key of an
				// object whose producer left out the separating comma.
				return true
			case (c == ',' || c == ']') && class == classArrayElement:
				return true
			case c == '/':
				nc, ok2 := m.peekAt(i + 1)
				return ok2 && (nc == '/' || nc == '*')
			default:
				return false
			}
		}
	case p == closingChar:
		return false
	case (p == '{' || p == '"' || p == '\'' || p == '[') && !m.hasParent():
		return true
	default:
		return false
	}
}

// shouldCloseUnescapedString decides, per §4.2.4, whether the current
// UnquotedString builder should close now. It returns the skip count and
// true when it should; false means keep consuming.
func (m *machine) shouldCloseUnescapedString() (int, bool) {
	switch m.classify() {
	case classBare:
		return m.scanUntilValueStart()
	case classInsideOpaqueParent:
		return 0, false
	case classObjectKey:
		return m.scanUntilColon()
	case classObjectValue:
		return m.scanObjectValueClose()
	case classArrayElement:
		return m.scanUntilArrayClose()
	default:
		return 0, false
	}
}

func (m *machine) scanUntilValueStart() (int, bool) {
	i := 0
	for {
		c, ok := m.peekAt(i)
		if !ok {
			return i, true
		}
		if c == '{' || c == '[' {
			return i, true
		}
		_ = m.stack.Consume(c)
		i++
	}
}

func (m *machine) scanUntilColon() (int, bool) {
	i := 0
	for {
		c, ok := m.peekAt(i)
		if !ok {
			return i, true
		}
		if c == ':' {
			return i, true
		}
		_ = m.stack.Consume(c)
		i++
	}
}

func (m *machine) scanUntilArrayClose() (int, bool) {
	i := 0
	for {
		c, ok := m.peekAt(i)
		if !ok {
			return i, true
		}
		if c == ',' || c == ']' {
			return i, true
		}
		_ = m.stack.Consume(c)
		i++
	}
}

// scanObjectValueClose implements the comma-ambiguity handling of
// §4.2.4 position 3: a comma after an object value might end the value,
// or might be literal content the producer forgot to escape.
func (m *machine) scanObjectValueClose() (int, bool) {
	i := 0
	for {
		c, ok := m.peekAt(i)
		if !ok {
			return i, true
		}
		switch c {
		case '}':
			return i, true
		case ',':
			if skip, done := m.resolveCommaInValue(i); done {
				return skip, true
			} else if skip < 0 {
				// comma was literal content; advance past it and keep
				// scanning from the returned offset.
				i = -skip
				continue
			}
			i++
		default:
			_ = m.stack.Consume(c)
			i++
		}
	}
}

// resolveCommaInValue examines the character(s) following a comma found
// at relative offset i while scanning an object value. It returns
// (skip, true) when the value should close at the comma, or a negative
// encoded resume offset with done=false when the comma (and some
// trailing text) was literal and scanning should continue from there.
func (m *machine) resolveCommaInValue(i int) (int, bool) {
	cur := strings.TrimSpace(m.stack.Top().buf.String())
	isPossibleValue := false
	if _, ok := ParseNumber(cur); ok {
		isPossibleValue = true
	}
	if strings.EqualFold(cur, "true") || strings.EqualFold(cur, "false") || strings.EqualFold(cur, "null") {
		isPossibleValue = true
	}

	nc, okNc := m.peekAt(i + 1)
	if !okNc {
		return i, true
	}
	switch nc {
	case '\n':
		return i, true
	case ' ':
		if isPossibleValue {
			return i, true
		}
		return m.resolveCommaSpaceRun(i)
	default:
		if isPossibleValue {
			return i, true
		}
		_ = m.stack.Consume(',')
		return -(i + 1), false
	}
}

// resolveCommaSpaceRun scans past "<comma><space>..." looking for a
// comment, a new quoted key, or a blank-line-terminated comma to drop,
// per the nested loop of §4.2.4. On a hard stop (any other character) it
// flushes the scanned run back as literal content and signals the
// caller to resume from the returned offset.
func (m *machine) resolveCommaSpaceRun(commaIdx int) (int, bool) {
	var buffer strings.Builder
	buffer.WriteByte(',')
	anythingButWhitespace := false
	j := commaIdx + 1
	for {
		nn, ok := m.peekAt(j)
		if !ok {
			return commaIdx, true
		}
		anythingButWhitespace = anythingButWhitespace || !isJSONWhitespace(nn)
		buffer.WriteRune(nn)
		stop := false
		switch nn {
		case ' ':
		case '\n':
			if !anythingButWhitespace {
				return commaIdx, true
			}
		case '/':
			if nxt, ok := m.peekAt(j + 1); ok && (nxt == '/' || nxt == '*') {
				return commaIdx, true
			}
		case '"':
			return commaIdx, true
		default:
			stop = true
		}
		j++
		if stop {
			break
		}
	}
	for _, bc := range buffer.String() {
		_ = m.stack.Consume(bc)
	}
	return -j, false
}
