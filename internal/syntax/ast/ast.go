// Package ast provides a typed view over the lossless CST produced by
// internal/syntax/parse. Every AST type wraps a cst.Red cursor and exposes
// domain accessors; none of them copy or own source text, and none of them
// are valid to use once the underlying green tree has been discarded.
package ast

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
)

// Document is the typed root of a parsed WDL file: a version statement
// followed by any number of imports, structs, and tasks, and at most one
// workflow.
type Document struct {
	red cst.Red
}

// NewDocument wraps a NodeRoot cursor as a Document. Panics if red is not a
// NodeRoot -- callers should only ever get a Document from a parsed tree's
// root.
func NewDocument(red cst.Red) Document {
	if red.Kind() != token.NodeRoot {
		panic("ast: NewDocument requires a NodeRoot cursor")
	}
	return Document{red: red}
}

func (d Document) Red() cst.Red { return d.red }

// VersionStatement returns the document's version statement, if present.
func (d Document) VersionStatement() (VersionStatement, bool) {
	if r, ok := d.red.FirstChildOfKind(token.NodeVersionStatement); ok {
		return VersionStatement{red: r}, true
	}
	return VersionStatement{}, false
}

// Imports returns every import statement in source order.
func (d Document) Imports() []Import {
	var out []Import
	for _, r := range d.red.ChildrenOfKind(token.NodeImportStatement) {
		out = append(out, Import{red: r})
	}
	return out
}

// Structs returns every struct definition in source order.
func (d Document) Structs() []StructDefinition {
	var out []StructDefinition
	for _, r := range d.red.ChildrenOfKind(token.NodeStructDefinition) {
		out = append(out, StructDefinition{red: r})
	}
	return out
}

// Tasks returns every task definition in source order.
func (d Document) Tasks() []TaskDefinition {
	var out []TaskDefinition
	for _, r := range d.red.ChildrenOfKind(token.NodeTaskDefinition) {
		out = append(out, TaskDefinition{red: r})
	}
	return out
}

// Workflow returns the document's workflow, if one is present. Per the
// grammar at most one workflow is syntactically representable per document
// (the scope builder, not the parser, would reject a second one if a future
// grammar revision ever allowed it).
func (d Document) Workflow() (WorkflowDefinition, bool) {
	if r, ok := d.red.FirstChildOfKind(token.NodeWorkflowDefinition); ok {
		return WorkflowDefinition{red: r}, true
	}
	return WorkflowDefinition{}, false
}

// IsUnparsed reports whether the document's version header was unsupported,
// in which case the remainder of the tree is a single Unparsed tail with no
// further structure.
func (d Document) IsUnparsed() bool {
	_, ok := d.red.FirstChildOfKind(token.Unparsed)
	return ok
}

// VersionStatement wraps a NodeVersionStatement.
type VersionStatement struct {
	red cst.Red
}

// Version returns the raw version text (e.g. "1.1"), or "" if malformed.
func (v VersionStatement) Version() string {
	for _, c := range v.red.NonTrivia() {
		if c.Kind() == token.KwVersion {
			continue
		}
		return c.Text()
	}
	return ""
}

func (v VersionStatement) Span() cst.Span { return v.red.Span() }

// Import wraps a NodeImportStatement: `import "uri" as name alias X as Y ...`.
type Import struct {
	red cst.Red
}

func (i Import) Red() cst.Red { return i.red }
func (i Import) Span() cst.Span { return i.red.Span() }

// URI returns the literal text of the quoted import path, unescaped text
// runs only (placeholders are not legal in an import URI, but a malformed
// document might still have one; it is ignored here since semantic
// validation is responsible for rejecting it).
func (i Import) URI() string {
	if lit, ok := i.red.FirstChildOfKind(token.NodeStringLiteral); ok {
		return literalStringText(lit)
	}
	return ""
}

// Namespace returns the `as name` identifier, if present.
func (i Import) Namespace() (string, bool) {
	kids := i.red.NonTrivia()
	sawAs := false
	for _, c := range kids {
		if c.Kind() == token.KwAs {
			sawAs = true
			continue
		}
		if sawAs && c.Kind() == token.Ident {
			return c.Text(), true
		}
	}
	return "", false
}

// Aliases returns every `alias X as Y` clause in source order.
func (i Import) Aliases() []ImportAlias {
	var out []ImportAlias
	for _, r := range i.red.ChildrenOfKind(token.NodeImportAlias) {
		out = append(out, ImportAlias{red: r})
	}
	return out
}

// ImportAlias wraps `alias X as Y`.
type ImportAlias struct {
	red cst.Red
}

func (a ImportAlias) Names() (from, to string) {
	idents := a.red.ChildrenOfKind(token.Ident)
	if len(idents) >= 1 {
		from = idents[0].Text()
	}
	if len(idents) >= 2 {
		to = idents[1].Text()
	}
	return
}

func (a ImportAlias) Span() cst.Span { return a.red.Span() }

// literalStringText concatenates the non-placeholder text runs of a string
// literal node, ignoring escapes' raw spelling (escape decoding belongs to
// the lex package's sub-lexer, invoked by semantic validation, not here).
func literalStringText(lit cst.Red) string {
	var out string
	for _, c := range lit.Children() {
		switch c.Kind() {
		case token.StringText:
			out += c.Text()
		}
	}
	return out
}

// StructDefinition wraps a NodeStructDefinition.
type StructDefinition struct {
	red cst.Red
}

func (s StructDefinition) Red() cst.Red { return s.red }
func (s StructDefinition) Span() cst.Span { return s.red.Span() }

func (s StructDefinition) Name() string {
	if r, ok := s.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

// Members returns every bound/unbound decl inside the struct body, in
// declared order.
func (s StructDefinition) Members() []Decl {
	var out []Decl
	for _, c := range s.red.NonTrivia() {
		if c.Kind() == token.NodeBoundDecl || c.Kind() == token.NodeUnboundDecl {
			out = append(out, Decl{red: c})
		}
	}
	return out
}

// TaskDefinition wraps a NodeTaskDefinition.
type TaskDefinition struct {
	red cst.Red
}

func (t TaskDefinition) Red() cst.Red { return t.red }
func (t TaskDefinition) Span() cst.Span { return t.red.Span() }

func (t TaskDefinition) Name() string {
	if r, ok := t.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

func (t TaskDefinition) Input() (Section, bool) {
	if r, ok := t.red.FirstChildOfKind(token.NodeInputSection); ok {
		return Section{red: r}, true
	}
	return Section{}, false
}

func (t TaskDefinition) Output() (Section, bool) {
	if r, ok := t.red.FirstChildOfKind(token.NodeOutputSection); ok {
		return Section{red: r}, true
	}
	return Section{}, false
}

func (t TaskDefinition) Command() (CommandSection, bool) {
	if r, ok := t.red.FirstChildOfKind(token.NodeCommandSection); ok {
		return CommandSection{red: r}, true
	}
	return CommandSection{}, false
}

func (t TaskDefinition) Runtime() (Section, bool) {
	if r, ok := t.red.FirstChildOfKind(token.NodeRuntimeSection); ok {
		return Section{red: r}, true
	}
	return Section{}, false
}

// PrivateDecls returns the task's top-level private declarations: those
// direct children that are bound/unbound decls outside any section.
func (t TaskDefinition) PrivateDecls() []Decl {
	var out []Decl
	for _, c := range t.red.NonTrivia() {
		if c.Kind() == token.NodeBoundDecl || c.Kind() == token.NodeUnboundDecl {
			out = append(out, Decl{red: c})
		}
	}
	return out
}

// Section wraps input/output sections, which share a shape: a sequence of
// decls.
type Section struct {
	red cst.Red
}

func (s Section) Red() cst.Red { return s.red }
func (s Section) Span() cst.Span { return s.red.Span() }

func (s Section) Decls() []Decl {
	var out []Decl
	for _, c := range s.red.NonTrivia() {
		if c.Kind() == token.NodeBoundDecl || c.Kind() == token.NodeUnboundDecl {
			out = append(out, Decl{red: c})
		}
	}
	return out
}

// CommandSection wraps a NodeCommandSection: literal text runs interleaved
// with placeholders.
type CommandSection struct {
	red cst.Red
}

func (c CommandSection) Red() cst.Red { return c.red }
func (c CommandSection) Span() cst.Span { return c.red.Span() }

// Placeholders returns every ~{...} / ${...} interpolation in the command
// body, in source order.
func (c CommandSection) Placeholders() []Placeholder {
	var out []Placeholder
	for _, ch := range c.red.ChildrenOfKind(token.NodePlaceholder) {
		out = append(out, Placeholder{red: ch})
	}
	return out
}

// Placeholder wraps a ~{expr} / ${expr} interpolation site.
type Placeholder struct {
	red cst.Red
}

func (p Placeholder) Span() cst.Span { return p.red.Span() }

func (p Placeholder) Expr() (Expr, bool) {
	for _, c := range p.red.NonTrivia() {
		if e, ok := asExpr(c); ok {
			return e, true
		}
	}
	return nil, false
}

// WorkflowDefinition wraps a NodeWorkflowDefinition.
type WorkflowDefinition struct {
	red cst.Red
}

func (w WorkflowDefinition) Red() cst.Red { return w.red }
func (w WorkflowDefinition) Span() cst.Span { return w.red.Span() }

func (w WorkflowDefinition) Name() string {
	if r, ok := w.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

func (w WorkflowDefinition) Input() (Section, bool) {
	if r, ok := w.red.FirstChildOfKind(token.NodeInputSection); ok {
		return Section{red: r}, true
	}
	return Section{}, false
}

func (w WorkflowDefinition) Output() (Section, bool) {
	if r, ok := w.red.FirstChildOfKind(token.NodeOutputSection); ok {
		return Section{red: r}, true
	}
	return Section{}, false
}

// Body returns the direct body items of the workflow in source order:
// decls, calls, scatters, and conditionals (sections are excluded; fetch
// those via Input/Output).
func (w WorkflowDefinition) Body() []BodyItem {
	return bodyItemsOf(w.red)
}

func bodyItemsOf(parent cst.Red) []BodyItem {
	var out []BodyItem
	for _, c := range parent.NonTrivia() {
		switch c.Kind() {
		case token.NodeBoundDecl, token.NodeUnboundDecl:
			out = append(out, Decl{red: c})
		case token.NodeCallStatement:
			out = append(out, CallStatement{red: c})
		case token.NodeScatterStatement:
			out = append(out, ScatterStatement{red: c})
		case token.NodeConditionalStatement:
			out = append(out, ConditionalStatement{red: c})
		}
	}
	return out
}

// BodyItem is the sum of things that may appear in a workflow body: a decl,
// a call, a scatter, or a conditional.
type BodyItem interface {
	Span() cst.Span
	isBodyItem()
}

func (Decl) isBodyItem()                  {}
func (CallStatement) isBodyItem()         {}
func (ScatterStatement) isBodyItem()      {}
func (ConditionalStatement) isBodyItem()  {}

// Decl wraps a NodeBoundDecl or NodeUnboundDecl: `Type name` or
// `Type name = expr`.
type Decl struct {
	red cst.Red
}

func (d Decl) Red() cst.Red { return d.red }
func (d Decl) Span() cst.Span { return d.red.Span() }

func (d Decl) IsBound() bool {
	return d.red.Kind() == token.NodeBoundDecl
}

func (d Decl) Type() (Type, bool) {
	for _, c := range d.red.NonTrivia() {
		if t, ok := asType(c); ok {
			return t, true
		}
	}
	return nil, false
}

func (d Decl) Name() string {
	if r, ok := d.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

// Expr returns the initializer expression for a bound decl, if any.
func (d Decl) Expr() (Expr, bool) {
	if !d.IsBound() {
		return nil, false
	}
	kids := d.red.NonTrivia()
	sawEquals := false
	for _, c := range kids {
		if c.Kind() == token.Equals {
			sawEquals = true
			continue
		}
		if sawEquals {
			return asExpr(c)
		}
	}
	return nil, false
}

// CallStatement wraps a NodeCallStatement.
type CallStatement struct {
	red cst.Red
}

func (c CallStatement) Red() cst.Red { return c.red }
func (c CallStatement) Span() cst.Span { return c.red.Span() }

// Callee returns the dotted callee name, e.g. "lib.greet".
func (c CallStatement) Callee() string {
	if r, ok := c.red.FirstChildOfKind(token.NodeNameRefExpr); ok {
		var out string
		for _, id := range r.ChildrenOfKind(token.Ident) {
			if out != "" {
				out += "."
			}
			out += id.Text()
		}
		return out
	}
	return ""
}

// Alias returns the `as name` alias, if present.
func (c CallStatement) Alias() (string, bool) {
	kids := c.red.NonTrivia()
	sawAs := false
	for _, k := range kids {
		if k.Kind() == token.KwAs {
			sawAs = true
			continue
		}
		if sawAs && k.Kind() == token.Ident {
			return k.Text(), true
		}
	}
	return "", false
}

// ResultName is the name this call introduces into scope: its alias if one
// is present, otherwise the last dotted segment of its callee.
func (c CallStatement) ResultName() string {
	if alias, ok := c.Alias(); ok {
		return alias
	}
	callee := c.Callee()
	if i := lastDot(callee); i >= 0 {
		return callee[i+1:]
	}
	return callee
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// Afters returns the `after x` dependency names.
func (c CallStatement) Afters() []string {
	var out []string
	for _, a := range c.red.ChildrenOfKind(token.NodeCallAfter) {
		if r, ok := a.FirstChildOfKind(token.Ident); ok {
			out = append(out, r.Text())
		}
	}
	return out
}

// Inputs returns the call's `input: ...` bindings in source order.
func (c CallStatement) Inputs() []CallInput {
	var out []CallInput
	for _, r := range c.red.ChildrenOfKind(token.NodeCallInput) {
		out = append(out, CallInput{red: r})
	}
	return out
}

// CallInput wraps one `name = expr` (or bare `name`) binding inside a call.
type CallInput struct {
	red cst.Red
}

func (ci CallInput) Name() string {
	if r, ok := ci.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

func (ci CallInput) Expr() (Expr, bool) {
	kids := ci.red.NonTrivia()
	sawEquals := false
	for _, c := range kids {
		if c.Kind() == token.Equals {
			sawEquals = true
			continue
		}
		if sawEquals {
			return asExpr(c)
		}
	}
	return nil, false
}

// ScatterStatement wraps a NodeScatterStatement: `scatter (x in expr) { ... }`.
type ScatterStatement struct {
	red cst.Red
}

func (s ScatterStatement) Red() cst.Red { return s.red }
func (s ScatterStatement) Span() cst.Span { return s.red.Span() }

func (s ScatterStatement) Variable() string {
	if r, ok := s.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

func (s ScatterStatement) Collection() (Expr, bool) {
	kids := s.red.NonTrivia()
	sawIn := false
	for _, c := range kids {
		if c.Kind() == token.KwIn {
			sawIn = true
			continue
		}
		if sawIn {
			return asExpr(c)
		}
	}
	return nil, false
}

func (s ScatterStatement) Body() []BodyItem {
	return bodyItemsOf(s.red)
}

// ConditionalStatement wraps a NodeConditionalStatement: `if (expr) { ... }`.
type ConditionalStatement struct {
	red cst.Red
}

func (c ConditionalStatement) Red() cst.Red { return c.red }
func (c ConditionalStatement) Span() cst.Span { return c.red.Span() }

func (c ConditionalStatement) Condition() (Expr, bool) {
	for _, k := range c.red.NonTrivia() {
		if e, ok := asExpr(k); ok {
			return e, true
		}
	}
	return nil, false
}

func (c ConditionalStatement) Body() []BodyItem {
	return bodyItemsOf(c.red)
}
