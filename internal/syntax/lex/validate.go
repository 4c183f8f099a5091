package lex

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// Validator performs the semantic validation pass spec.md §4.1/§4.3 describe
// as separate from primary lexing: decoding every StringEscape token found
// in a parsed tree and collecting a diagnostic for each malformed one. It
// carries no state that outlives one call to Validate beyond a reusable
// scratch buffer, so one Validator can be kept per worker goroutine and
// reused across parse tasks instead of being allocated fresh each time (see
// internal/engine, which holds one per pool worker via a factory closure).
type Validator struct {
	scratch []wdlerrors.Diagnostic
}

// NewValidator creates a Validator ready for reuse across many Validate
// calls.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate walks root looking for StringEscape tokens and decodes each one,
// returning a diagnostic for every malformed escape found. The underlying
// slice is reused between calls; callers must copy the result before the
// next call if they need to retain it past that point.
func (v *Validator) Validate(root cst.Red) []wdlerrors.Diagnostic {
	v.scratch = v.scratch[:0]
	root.PreOrder(func(r cst.Red) {
		if r.Kind() != token.StringEscape {
			return
		}
		span := wdlerrors.Span{Start: r.Span().Start, Len: r.Span().Len}
		if _, diag := DecodeEscape(r.Text(), span); diag != nil {
			v.scratch = append(v.scratch, *diag)
		}
	})
	out := make([]wdlerrors.Diagnostic, len(v.scratch))
	copy(out, v.scratch)
	return out
}
