package jsonish

import (
	"log/slog"
	"strings"
)

// machine drives a Stack one character at a time over a fixed []rune
// input, with look-ahead implemented as read-only slicing rather than a
// peek that mutates iterator state (single-character look-ahead is not
// enough to recognize triple-quoted delimiters).
type machine struct {
	input  []rune
	pos    int
	stack  *Stack
	logger *slog.Logger
}

func newMachine(input []rune, stack *Stack, logger *slog.Logger) *machine {
	if logger == nil {
		logger = discardLogger()
	}
	return &machine{input: input, pos: 0, stack: stack, logger: logger}
}

// peekAt returns the rune at pos+1+offset (offset 0 is "the next
// character after the one being processed") and whether it exists.
func (m *machine) peekAt(offset int) (rune, bool) {
	idx := m.pos + 1 + offset
	if idx < 0 || idx >= len(m.input) {
		return 0, false
	}
	return m.input[idx], true
}

// Run processes the entire input, then drains any still-open builders
// at EOF, accepting them as-is rather than raising an error.
func (m *machine) Run() error {
	for m.pos < len(m.input) {
		ch := m.input[m.pos]
		skip, err := m.processToken(ch)
		if err != nil {
			return err
		}
		m.pos += 1 + skip
	}
	m.stack.Drain()
	return nil
}

// processToken dispatches on the top-of-stack builder kind, per §4.2.1.
func (m *machine) processToken(ch rune) (int, error) {
	top := m.stack.Top()
	if top == nil {
		return m.findAnyStartingValue(ch)
	}

	switch top.kind {
	case kindObject:
		switch ch {
		case '}':
			m.stack.CompleteCollection()
			return 0, nil
		case ',', ':':
			return 0, nil
		default:
			return m.findAnyStartingValue(ch)
		}
	case kindArray:
		switch ch {
		case ']':
			m.stack.CompleteCollection()
			return 0, nil
		case ',':
			return 0, nil
		default:
			return m.findAnyStartingValue(ch)
		}
	case kindQuotedString:
		return m.processQuotedString(ch, top)
	case kindSingleQuotedString:
		if ch == '\'' {
			if m.shouldCloseString('\'') {
				m.stack.CompleteCollection()
				return 0, nil
			}
			return 0, m.stack.Consume(ch)
		}
		return 0, m.stack.Consume(ch)
	case kindBacktickString:
		if ch == '`' {
			if m.shouldCloseString('`') {
				m.stack.CompleteCollection()
				return 0, nil
			}
			return 0, m.stack.Consume(ch)
		}
		return 0, m.stack.Consume(ch)
	case kindTripleQuotedString:
		return m.processTripleDelimited(ch, '"')
	case kindTripleBacktickString:
		return m.processTripleDelimited(ch, '`')
	case kindUnquotedString:
		if err := m.stack.Consume(ch); err != nil {
			return 0, err
		}
		if skip, ok := m.shouldCloseUnescapedString(); ok {
			m.stack.CompleteCollection()
			return skip, nil
		}
		return 0, nil
	case kindTrailingComment:
		if ch == '\n' {
			m.stack.CompleteCollection()
			return 0, nil
		}
		return 0, m.stack.Consume(ch)
	case kindBlockComment:
		if ch == '*' {
			if next, ok := m.peekAt(0); ok && next == '/' {
				m.stack.CompleteCollection()
				return 1, nil
			}
			return 0, nil
		}
		return 0, m.stack.Consume(ch)
	default:
		return 0, newParseErr(KindUnexpectedState, "unknown builder kind")
	}
}

func (m *machine) processQuotedString(ch rune, top *builder) (int, error) {
	switch ch {
	case '"':
		if m.shouldCloseString('"') {
			m.stack.CompleteCollection()
			return 0, nil
		}
		return 0, m.stack.Consume(ch)
	case '\\':
		next, ok := m.peekAt(0)
		if !ok {
			return 0, m.stack.Consume(ch)
		}
		switch next {
		case 'n':
			return 1, m.stack.Consume('\n')
		case 't':
			return 1, m.stack.Consume('\t')
		case 'r':
			return 1, m.stack.Consume('\r')
		case 'b':
			return 1, m.stack.Consume('\b')
		case 'f':
			return 1, m.stack.Consume('\f')
		case '\\':
			return 1, m.stack.Consume('\\')
		case '"':
			return 1, m.stack.Consume('"')
		case 'u':
			var hex strings.Builder
			for i := 0; i < 4; i++ {
				c, ok := m.peekAt(1 + i)
				if !ok {
					break
				}
				hex.WriteRune(c)
			}
			r, ok := decodeUnicodeEscape(hex.String())
			if !ok {
				// Malformed escape: fall back to consuming the literal
				// characters rather than aborting the parse.
				return 0, m.stack.Consume(ch)
			}
			return 5, m.stack.Consume(r)
		default:
			return 0, m.stack.Consume(ch)
		}
	default:
		return 0, m.stack.Consume(ch)
	}
}

func decodeUnicodeEscape(hex string) (rune, bool) {
	if len(hex) != 4 {
		return 0, false
	}
	var v int32
	for _, c := range hex {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= c - '0'
		case c >= 'a' && c <= 'f':
			v |= c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v |= c - 'A' + 10
		default:
			return 0, false
		}
	}
	return rune(v), true
}

// processTripleDelimited handles TripleQuotedString and
// TripleBacktickString: these close only on three consecutive matching
// delimiters (or EOF), which requires true two-character look-ahead
// rather than a single peek.
func (m *machine) processTripleDelimited(ch rune, delim rune) (int, error) {
	if ch != delim {
		return 0, m.stack.Consume(ch)
	}
	c1, ok1 := m.peekAt(0)
	c2, ok2 := m.peekAt(1)
	if !ok1 {
		// EOF right after a single delimiter: accept it as the close.
		m.stack.CompleteCollection()
		return 0, nil
	}
	if c1 == delim && (!ok2 || c2 == delim) {
		m.stack.CompleteCollection()
		return 2, nil
	}
	return 0, m.stack.Consume(ch)
}

// findAnyStartingValue inspects ch to decide what, if anything, to push
// onto the stack, per §4.2.2.
func (m *machine) findAnyStartingValue(ch rune) (int, error) {
	switch ch {
	case '{':
		m.stack.Push(&builder{kind: kindObject})
		return 0, nil
	case '[':
		m.stack.Push(&builder{kind: kindArray})
		return 0, nil
	case '"':
		c1, ok1 := m.peekAt(0)
		c2, ok2 := m.peekAt(1)
		if ok1 && c1 == '"' && ok2 && c2 == '"' {
			m.stack.Push(&builder{kind: kindTripleQuotedString})
			return 2, nil
		}
		m.stack.Push(&builder{kind: kindQuotedString})
		return 0, nil
	case '\'':
		m.stack.Push(&builder{kind: kindSingleQuotedString})
		return 0, nil
	case '`':
		c1, ok1 := m.peekAt(0)
		c2, ok2 := m.peekAt(1)
		if ok1 && c1 == '`' && ok2 && c2 == '`' {
			b := &builder{kind: kindTripleBacktickString}
			skip, lang, path := m.readFenceHeader(m.pos + 3)
			b.mdLang = lang
			b.mdPath = path
			m.stack.Push(b)
			return 2 + skip, nil
		}
		m.stack.Push(&builder{kind: kindBacktickString})
		return 0, nil
	case '/':
		switch next, ok := m.peekAt(0); {
		case ok && next == '/':
			m.stack.Push(&builder{kind: kindTrailingComment})
			return 1, nil
		case ok && next == '*':
			m.stack.Push(&builder{kind: kindBlockComment})
			return 1, nil
		default:
			if top := m.stack.Top(); top != nil && top.kind == kindObject {
				m.stack.Push(newStringBuilder(kindUnquotedString, string(ch)))
				if skip, ok := m.shouldCloseUnescapedString(); ok {
					m.stack.CompleteCollection()
					return skip, nil
				}
				return 0, nil
			}
			return 0, nil
		}
	default:
		if isJSONWhitespace(ch) {
			return 0, nil
		}
		m.stack.Push(newStringBuilder(kindUnquotedString, string(ch)))
		if skip, ok := m.shouldCloseUnescapedString(); ok {
			m.stack.CompleteCollection()
			return skip, nil
		}
		return 0, nil
	}
}

// readFenceHeader scans the optional "lang path" header line following a
// ``` opening fence, starting at absolute index start. It returns the
// number of additional characters to skip (covering the header and its
// trailing newline), plus the parsed language tag and path.
func (m *machine) readFenceHeader(start int) (skip int, lang, path string) {
	i := start
	var tag strings.Builder
	for i < len(m.input) && !isJSONWhitespace(m.input[i]) && m.input[i] != '`' {
		tag.WriteRune(m.input[i])
		i++
	}
	lang = tag.String()

	// Skip spaces/tabs (not newlines) between the lang tag and an
	// optional path.
	for i < len(m.input) && (m.input[i] == ' ' || m.input[i] == '\t') {
		i++
	}
	var pathBuf strings.Builder
	for i < len(m.input) && m.input[i] != '\n' && m.input[i] != '`' {
		pathBuf.WriteRune(m.input[i])
		i++
	}
	path = strings.TrimSpace(pathBuf.String())

	if i < len(m.input) && m.input[i] == '\n' {
		i++
	}
	return i - start, lang, path
}

func isJSONWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}
