package parse

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// Result is the outcome of parsing one document: a lossless green tree
// (covering the entire input byte-for-byte, Unparsed tail included where
// applicable) plus every diagnostic raised while getting there, lexical and
// syntactic alike.
type Result struct {
	Tree        *cst.GreenNode
	Diagnostics []wdlerrors.Diagnostic
}

// Parse lexes and parses a single WDL document into a lossless CST.
func Parse(src []byte) Result {
	p := New(src)
	p.parseDocument()
	tree, parseDiags := p.buildTree()

	diags := append([]wdlerrors.Diagnostic(nil), p.LexDiagnostics()...)
	diags = append(diags, parseDiags...)

	return Result{Tree: tree, Diagnostics: diags}
}
