package jsonish

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// builderKind identifies which PartialCollection variant a stack entry
// holds.
type builderKind int

const (
	kindObject builderKind = iota
	kindArray
	kindQuotedString
	kindSingleQuotedString
	kindBacktickString
	kindTripleQuotedString
	kindTripleBacktickString
	kindUnquotedString
	kindTrailingComment
	kindBlockComment
)

// builder is a PartialCollection: a mutable, in-progress value held on
// the parser's stack. It never escapes the parser; complete_collection
// turns it into an immutable Value.
type builder struct {
	kind builderKind

	// String/comment variants accumulate into buf.
	buf strings.Builder

	// Object: invariant keys.len()==values.len() (ready for next key) or
	// keys.len()==values.len()+1 (ready for next value).
	keys   []string
	values []Value

	// Array.
	elements []Value

	// TripleBacktickString: optional language tag and path recorded from
	// the opening fence line.
	mdLang string
	mdPath string

	// fixes accumulates recovery steps applied while this builder was
	// being built.
	fixes []Fix
}

func newStringBuilder(kind builderKind, seed string) *builder {
	b := &builder{kind: kind}
	if seed != "" {
		b.buf.WriteString(seed)
	}
	return b
}

// completedTop is a finalized value that had no parent on the stack when
// it completed: a top-level result of a single parse pass.
type completedTop struct {
	name  string
	value Value
	fixes []Fix
}

// Stack owns the LIFO stack of PartialCollection builders plus the list
// of completed top-level values produced once builders pop with no
// parent left underneath them.
type Stack struct {
	entries   []*builder
	completed []completedTop
	logger    *slog.Logger
}

// NewStack returns an empty collection stack. A nil logger disables
// debug logging for synthetic-name generation fallbacks.
func NewStack(logger *slog.Logger) *Stack {
	if logger == nil {
		logger = discardLogger()
	}
	return &Stack{logger: logger}
}

// Push begins a new builder on top of the stack.
func (s *Stack) Push(b *builder) {
	s.entries = append(s.entries, b)
}

// Top returns the top-of-stack builder, or nil if the stack is empty.
func (s *Stack) Top() *builder {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// Len reports the current stack depth.
func (s *Stack) Len() int { return len(s.entries) }

// Consume appends ch to the current builder's buffer. It is only valid
// for string/comment builders; Object and Array builders do not accept
// raw characters and return an error (an internal invariant violation,
// since the state machine should never route characters to them).
func (s *Stack) Consume(ch rune) error {
	top := s.Top()
	if top == nil {
		return newParseErr(KindUnexpectedState, fmt.Sprintf("no collection to consume token %q", ch))
	}
	switch top.kind {
	case kindObject, kindArray:
		return newParseErr(KindUnexpectedState, fmt.Sprintf("unexpected token %q for collection kind", ch))
	default:
		top.buf.WriteRune(ch)
		return nil
	}
}

// CompleteCollection pops the top builder, converts it into a Value, and
// integrates it into its new parent (or into the completed top-level
// list if the stack is now empty). It is a no-op if the stack is empty.
func (s *Stack) CompleteCollection() {
	n := len(s.entries)
	if n == 0 {
		return
	}
	top := s.entries[n-1]
	s.entries = s.entries[:n-1]

	value, ok := s.finalize(top)
	if !ok {
		// Comments produce no value.
		return
	}

	parent := s.Top()
	if parent == nil {
		s.completed = append(s.completed, completedTop{
			name:  s.syntheticName(value.Type()),
			value: value,
			fixes: top.fixes,
		})
		return
	}

	switch parent.kind {
	case kindObject:
		if len(parent.keys) == len(parent.values) {
			// Completed value is the next key.
			switch {
			case value.typ == TypeString:
				parent.keys = append(parent.keys, value.str)
			case value.typ == TypeAnyOf:
				parent.keys = append(parent.keys, value.anyOfOriginal)
			default:
				parent.keys = append(parent.keys, value.Display())
			}
		} else {
			parent.values = append(parent.values, value)
		}
	case kindArray:
		parent.elements = append(parent.elements, value)
	default:
		// Only Object/Array ever hold children on the stack; anything
		// else finalizing underneath a string/comment builder is an
		// internal invariant violation that we drop rather than panic
		// on, matching the tolerant-recovery philosophy of this parser.
	}
}

// finalize converts a popped builder into a Value. The second return
// value is false for comment builders, which produce no Value.
func (s *Stack) finalize(b *builder) (Value, bool) {
	switch b.kind {
	case kindQuotedString, kindSingleQuotedString, kindBacktickString, kindTripleQuotedString:
		return NewString(b.buf.String()), true
	case kindTripleBacktickString:
		inner := NewString(b.buf.String())
		if b.mdLang != "" {
			return NewMarkdown(b.mdLang, inner), true
		}
		return inner, true
	case kindUnquotedString:
		return resolveUnquoted(b.buf.String()), true
	case kindObject:
		keys := b.keys
		if len(keys) == len(b.values)+1 {
			// Trailing orphan key: the producer opened a key but never
			// supplied a value before the object closed.
			keys = keys[:len(keys)-1]
		}
		pairs := make([]Pair, len(keys))
		for i, k := range keys {
			pairs[i] = Pair{Key: k, Value: b.values[i]}
		}
		return NewObject(pairs), true
	case kindArray:
		return NewArray(b.elements), true
	case kindTrailingComment, kindBlockComment:
		return Value{}, false
	default:
		return Value{}, false
	}
}

// resolveUnquoted classifies a bareword buffer: true/false/null literals,
// then a JSON number, otherwise a plain string.
func resolveUnquoted(s string) Value {
	switch s {
	case "true":
		return NewBoolean(true)
	case "false":
		return NewBoolean(false)
	case "null":
		return Null
	}
	if n, ok := ParseNumber(s); ok {
		return NewNumber(n)
	}
	return NewString(s)
}

// syntheticName produces a synthetic name identifying the variant, used
// to disambiguate multiple top-level completions (see the entry
// driver's AnyOf construction). UUIDv7 is used for the same reason this
// ecosystem's tool-call IDs use it: a sortable, virtually-collision-free
// suffix with negligible generation cost.
func (s *Stack) syntheticName(t Type) string {
	id, err := uuid.NewV7()
	if err != nil {
		s.logger.Debug("uuidv7 generation failed, falling back to uuidv4", "error", err)
		id = uuid.New()
	}
	return t.String() + "-" + id.String()
}

// Completed returns the top-level values finalized so far, in the order
// they completed.
func (s *Stack) Completed() []completedTop {
	return s.completed
}

// Drain finalizes every remaining builder on the stack, as the entry
// driver does at EOF: open collections are accepted as-is rather than
// treated as an error.
func (s *Stack) Drain() {
	for s.Len() > 0 {
		s.CompleteCollection()
	}
}
