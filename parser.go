package jsonish

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// fencePattern matches a markdown fenced code block: an opening ``` with
// an optional language tag, a body, and a closing ```. It is intentionally
// non-greedy so multiple fences in one input are matched independently.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_-]*)[ \t]*\r?\n(.*?)```")

// Parser extracts structured Values from free-form, possibly malformed
// text. The zero value is not usable; construct one with NewParser.
//
// A Parser is safe for concurrent use: Parse holds no parser-level
// mutable state, building a fresh Stack and machine per call.
type Parser struct {
	logger              *slog.Logger
	metricsCallback     func(MetricEventData)
	allowMultipleValues bool
	grepFallback        bool
	markdownFences      bool
	allowFixes          bool
	allowAsString       bool
}

// NewParser builds a Parser with the given options applied over sensible
// defaults: markdown fences and the grep-for-JSON fallback are enabled,
// recovered values are wrapped in FixedJson, and unparseable input falls
// back to a String rather than an error.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:              discardLogger(),
		allowMultipleValues: true,
		grepFallback:        true,
		markdownFences:      true,
		allowFixes:          true,
		allowAsString:       true,
	}
	applyOptions(p, opts)
	return p
}

// Parse runs the entry driver over raw: it looks for markdown fences and
// also runs a direct parse of the whole input; only when neither yields
// a candidate does it scan for the first plausible opening bracket. It
// combines whatever candidates those strategies produced per §4.3.
func (p *Parser) Parse(raw string) (Value, error) {
	start := time.Now()
	value, err := p.parse(raw)

	success := err == nil
	topLevel := 0
	if success {
		topLevel = 1
		if cands, _, ok := value.AsAnyOf(); ok {
			topLevel = len(cands)
		}
	}
	p.emitMetric(ParseAttemptedData{
		Success:       success,
		TopLevelCount: topLevel,
		Performance: PerformanceMetrics{
			ProcessingDuration: time.Since(start),
			InputBytes:         len(raw),
		},
	})
	return value, err
}

func (p *Parser) parse(raw string) (Value, error) {
	var candidates []Value

	if p.markdownFences {
		if fenced := p.parseFencedBlocks(raw); len(fenced) > 0 {
			candidates = append(candidates, fenced...)
		}
	}

	rawValue, rawOK := p.parseDirect(raw)
	if rawOK {
		candidates = append(candidates, rawValue)
	}

	if !rawOK && len(candidates) == 0 && p.grepFallback {
		if grepped, ok := p.parseGrepped(raw); ok {
			candidates = append(candidates, grepped)
		}
	}

	switch len(candidates) {
	case 0:
		if p.allowAsString {
			return NewString(raw), nil
		}
		return Value{}, newParseErr(KindParseFailed, "no value found in input")
	case 1:
		return candidates[0], nil
	default:
		p.emitMetric(AnyOfConstructedData{CandidateCount: len(candidates)})
		return NewAnyOf(candidates, raw), nil
	}
}

// parseFencedBlocks locates every markdown fence in raw and parses each
// body independently, wrapping a successful parse in Markdown(tag, ...).
func (p *Parser) parseFencedBlocks(raw string) []Value {
	matches := fencePattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	var out []Value
	for _, m := range matches {
		lang, body := m[1], m[2]
		inner, ok := p.collapseTops(p.runOnce(body), body)
		if !ok {
			continue
		}
		out = append(out, NewMarkdown(lang, inner))
	}
	return out
}

// parseDirect runs the state machine over the entire input with no
// pre-processing. Per §4.3 point 2, a direct parse only counts as
// successful when its completion is neither empty nor trivial: a lone
// bareword spanning the whole input, or a mix of incidental prose
// fragments around a structured value, both signal that the caller's
// text is free-form and should instead be routed to the grep-for-JSON
// fallback.
func (p *Parser) parseDirect(raw string) (Value, bool) {
	tops := p.runOnce(raw)
	if len(tops) == 0 {
		return Value{}, false
	}
	if isTrivialCompletion(raw, tops) {
		return Value{}, false
	}
	return p.collapseTops(tops, raw)
}

// isTrivialCompletion reports whether a direct parse's completions look
// like incidental prose rather than a deliberate value: either a single
// bareword String that reproduces the entire trimmed input verbatim (no
// quoting was ever consumed), or several completions where at least one
// is not an Object, Array or Markdown value, indicating the structured
// value found was incidental to surrounding prose rather than the whole
// input.
func isTrivialCompletion(raw string, tops []completedTop) bool {
	if len(tops) == 1 {
		return isBarewordSpanningInput(raw, tops[0].value)
	}
	for _, t := range tops {
		switch t.value.Type() {
		case TypeObject, TypeArray, TypeMarkdown:
		default:
			return true
		}
	}
	return false
}

func isBarewordSpanningInput(raw string, v Value) bool {
	s, ok := v.AsString()
	if !ok {
		return false
	}
	return strings.TrimSpace(raw) == s
}

// parseGrepped scans raw for the first '{' or '[' and retries the parse
// from there, keeping only the first value it completes (trailing prose
// after that point is discarded, matching the "scan for the first
// plausible opening bracket" intent of §4.3 point 2) and tagging the
// result as FixedJson with GreppedForJSON as its last fix.
func (p *Parser) parseGrepped(raw string) (Value, bool) {
	idx := -1
	for i, r := range raw {
		if r == '{' || r == '[' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Value{}, false
	}
	start := time.Now()
	tops := p.runOnce(raw[idx:])
	if len(tops) == 0 {
		return Value{}, false
	}
	top := tops[0]
	p.emitMetric(EntryFallbackData{
		Strategy: "grep_json",
		Performance: PerformanceMetrics{
			ProcessingDuration: time.Since(start),
			InputBytes:         len(raw),
		},
	})
	if !p.allowFixes {
		return top.value, true
	}
	fixes := append(append([]Fix{}, top.fixes...), GreppedForJSON)
	p.emitMetric(FixesAppliedData{Fixes: fixes})
	return NewFixedJson(top.value, fixes), true
}

// runOnce drives the state machine over text once and returns whatever
// top-level values it completed.
func (p *Parser) runOnce(text string) []completedTop {
	stack := NewStack(p.logger)
	m := newMachine([]rune(text), stack, p.logger)
	if err := m.Run(); err != nil {
		p.logger.Debug("state machine reported an internal error, using partial result", "error", err)
	}
	return stack.Completed()
}

// collapseTops turns the raw list of completed top-level values from one
// strategy into a single Value per §4.3 point 3: zero values is a
// failure, one value passes through, and more than one is either combined
// into an inferred array or kept as an AnyOf depending on options. text
// is the exact source span this batch of tops was parsed from, recorded
// verbatim as the AnyOf's original span (§3.1) rather than re-derived
// from a candidate's display form.
func (p *Parser) collapseTops(tops []completedTop, text string) (Value, bool) {
	if len(tops) == 0 {
		return Value{}, false
	}
	if len(tops) == 1 {
		return p.wrapFixes(tops[0]), true
	}

	values := make([]Value, len(tops))
	names := make([]string, len(tops))
	for i, t := range tops {
		values[i] = p.wrapFixes(t)
		names[i] = t.name
	}

	if p.allowMultipleValues {
		arr := NewArray(values)
		if p.allowFixes {
			arr = NewFixedJson(arr, []Fix{InferredArray})
		}
		return arr, true
	}

	// Each candidate keeps the synthetic name it was given when it
	// completed with no parent on the stack, so a driver can address one
	// of several structurally-identical candidates directly instead of
	// only by position.
	p.emitMetric(AnyOfConstructedData{CandidateCount: len(values)})
	return NewAnyOfNamed(values, names, text), true
}

func (p *Parser) wrapFixes(t completedTop) Value {
	if len(t.fixes) == 0 || !p.allowFixes {
		return t.value
	}
	p.emitMetric(FixesAppliedData{Fixes: t.fixes})
	return NewFixedJson(t.value, t.fixes)
}

// Parse is a package-level convenience wrapping NewParser(opts...).Parse,
// useful for one-off calls that do not need to reuse a configured Parser.
func Parse(raw string, opts ...Option) (Value, error) {
	return NewParser(opts...).Parse(raw)
}
