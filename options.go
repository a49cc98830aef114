package jsonish

import (
	"io"
	"log/slog"
	"os"
)

// Option configures a Parser. Functional options keep new configuration
// additive: callers only specify what they want to change, and zero
// options yields sensible defaults.
type Option func(*Parser)

// WithLogger sets a custom slog.Logger for the parser. A nil logger
// installs a no-op logger so callers never need a nil check.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger == nil {
			p.logger = discardLogger()
			return
		}
		p.logger = logger
	}
}

// WithLogLevel is a convenience option for controlling the verbosity of
// the parser's default logger without constructing one by hand. For
// production use, prefer WithLogger with a properly configured handler.
func WithLogLevel(level slog.Leveler) Option {
	return func(p *Parser) {
		p.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}
}

// WithMetricsCallback sets a callback invoked with typed event data at
// key points during a parse (see MetricEvent). The callback runs
// synchronously and is wrapped in panic recovery, so a callback that
// panics never aborts the parse in progress; it should still be fast,
// since it runs on the parsing path.
func WithMetricsCallback(callback func(MetricEventData)) Option {
	return func(p *Parser) {
		p.metricsCallback = callback
	}
}

// WithAllowMultipleValues controls what happens when the input contains
// more than one plausible top-level value (e.g. several JSON objects
// separated by prose). When true (the default), the driver wraps them in
// a single Array, tagged FixedJson with InferredArray when fixes are
// allowed. When false, it keeps them as an AnyOf with every completed
// top-level value as a candidate, first completed first.
func WithAllowMultipleValues(allow bool) Option {
	return func(p *Parser) {
		p.allowMultipleValues = allow
	}
}

// WithGrepFallback controls whether the entry driver, after a direct
// parse of the full input yields nothing, falls back to scanning the
// input for the first plausible opening bracket and retrying from there.
// Enabled by default; disable it if the caller has already isolated the
// candidate JSON region and wants a direct-or-nothing parse.
func WithGrepFallback(enabled bool) Option {
	return func(p *Parser) {
		p.grepFallback = enabled
	}
}

// WithMarkdownFences controls whether the entry driver looks for fenced
// code blocks (```lang\n...\n```) in addition to its direct parse of the
// whole input. Enabled by default, since LLM output routinely wraps JSON
// in markdown.
func WithMarkdownFences(enabled bool) Option {
	return func(p *Parser) {
		p.markdownFences = enabled
	}
}

// WithAllowFixes controls whether values produced via recovery (grep
// fallback, multi-value array inference) are wrapped in FixedJson
// recording the Fix steps applied. Enabled by default; disabling it
// returns the bare recovered value with no wrapper.
func WithAllowFixes(allow bool) Option {
	return func(p *Parser) {
		p.allowFixes = allow
	}
}

// WithAllowAsString controls the final fallback: when nothing could be
// parsed as structured data, return the entire input as a String value
// instead of failing. Enabled by default.
func WithAllowAsString(allow bool) Option {
	return func(p *Parser) {
		p.allowAsString = allow
	}
}

// applyOptions applies opts to p in order.
func applyOptions(p *Parser, opts []Option) {
	for _, opt := range opts {
		opt(p)
	}
}

// discardLogger returns a *slog.Logger that drops everything, used as
// the parser's default so nil-logger checks are never needed elsewhere
// in the package.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}
