// Package wdlerrors defines the diagnostic model shared by the lexer, parser,
// scope builder, type checker, and lint framework. A Diagnostic is the single
// user-facing output of analysis; per-document diagnostics accumulate and
// analysis never aborts a whole request because of one (see the Analysis
// Engine's propagation policy).
package wdlerrors

import "fmt"

// Severity is how serious a Diagnostic is.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Span is a byte offset and length into a single document's source.
type Span struct {
	Start uint32
	Len   uint32
}

// End returns the exclusive end offset of the span.
func (s Span) End() uint32 {
	return s.Start + s.Len
}

// Contains reports whether the span fully contains o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End() <= s.End()
}

// Label attaches explanatory text to a span within a Diagnostic.
type Label struct {
	Span    Span
	Message string
}

// Diagnostic is a structured message emitted by the toolchain. Diagnostics
// are per-document; an AnalysisResult carries an immutable shared slice of
// them.
type Diagnostic struct {
	Severity Severity
	Message  string
	RuleID   string // optional; set by lint rules, empty for lexer/parser/semantic diagnostics
	Spans    []Span
	Labels   []Label
	Fix      string // optional fix hint text
}

// New creates an Error-severity Diagnostic highlighting the given span.
func New(message string, primary Span) Diagnostic {
	return Diagnostic{Severity: Error, Message: message, Spans: []Span{primary}}
}

// Newf is like New but formats the message.
func Newf(primary Span, format string, args ...interface{}) Diagnostic {
	return New(fmt.Sprintf(format, args...), primary)
}

// WithSeverity returns a copy of d with Severity set to sev.
func (d Diagnostic) WithSeverity(sev Severity) Diagnostic {
	d.Severity = sev
	return d
}

// WithRule returns a copy of d with RuleID set.
func (d Diagnostic) WithRule(id string) Diagnostic {
	d.RuleID = id
	return d
}

// WithLabel appends a label to d and returns the result.
func (d Diagnostic) WithLabel(span Span, message string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Message: message})
	return d
}

// WithFix returns a copy of d with fix hint text attached.
func (d Diagnostic) WithFix(hint string) Diagnostic {
	d.Fix = hint
	return d
}

// Primary returns the diagnostic's primary span, or the zero Span if none was
// set.
func (d Diagnostic) Primary() Span {
	if len(d.Spans) == 0 {
		return Span{}
	}
	return d.Spans[0]
}
