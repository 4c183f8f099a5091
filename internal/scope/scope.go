// Package scope builds the per-document scope tree described in spec.md §3
// and §4.4: imports resolved against the document graph, struct type
// unification across imports, and flat (task) or tree-shaped (workflow)
// name resolution with implicit propagation out of scatter/conditional
// bodies.
package scope

import (
	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/wdltype"
)

// Context is the kind of binding a ScopedName represents.
type Context int

const (
	CtxInput Context = iota
	CtxOutput
	CtxDecl
	CtxCall
	CtxScatterVariable
)

func (c Context) String() string {
	switch c {
	case CtxInput:
		return "Input"
	case CtxOutput:
		return "Output"
	case CtxDecl:
		return "Decl"
	case CtxCall:
		return "Call"
	case CtxScatterVariable:
		return "ScatterVariable"
	default:
		return "Context(?)"
	}
}

// ScopedName is one entry in a Scope, per spec.md §3:
// `ScopedName { context, defining_node, is_implicit }`.
type ScopedName struct {
	Name        string
	Context     Context
	DefiningNode cst.Span
	IsImplicit  bool
	Type        wdltype.ID
}

// Scope is a flat mapping of names to bindings, optionally chained to a
// parent (used for the workflow's nested scatter/conditional scopes; task
// scopes never have a parent).
type Scope struct {
	Parent  *Scope
	Entries map[string]ScopedName
}

// NewScope creates an empty Scope, optionally chained to parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Entries: map[string]ScopedName{}}
}

// Lookup walks from s up through its parents looking for name.
func (s *Scope) Lookup(name string) (ScopedName, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sn, ok := cur.Entries[name]; ok {
			return sn, true
		}
	}
	return ScopedName{}, false
}

// LocalLookup looks up name in s only, not its ancestors.
func (s *Scope) LocalLookup(name string) (ScopedName, bool) {
	sn, ok := s.Entries[name]
	return sn, ok
}

// Define adds name to s, replacing any entry of the same name in s. Define
// does no conflict check itself; the scope builder checks with LocalLookup
// beforehand, so a name is compared only against names bound directly in
// s, not against names bound in its ancestor scopes.
func (s *Scope) Define(sn ScopedName) {
	s.Entries[sn.Name] = sn
}

// Names returns every name bound directly in s (not ancestors), in no
// particular order.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.Entries))
	for n := range s.Entries {
		out = append(out, n)
	}
	return out
}

// PublishImplicit copies every entry of child into parent as an implicit
// binding, except for entries whose Context is CtxScatterVariable (the
// scatter variable itself never propagates outward, per spec.md §4.4 /
// §3's scope tree invariant). Used when a conditional or scatter body
// closes.
func PublishImplicit(parent, child *Scope) {
	for _, sn := range child.Entries {
		if sn.Context == CtxScatterVariable {
			continue
		}
		implicit := sn
		implicit.IsImplicit = true
		if _, exists := parent.LocalLookup(sn.Name); exists {
			continue
		}
		parent.Define(implicit)
	}
}

// TaskScope is a task's single flat scope over inputs, outputs, and private
// declarations.
type TaskScope struct {
	Name  string
	Span  cst.Span
	Scope *Scope
}

// WorkflowScope is a workflow's root scope plus, per AST node, the child
// scope introduced by that node's body (for conditional/scatter
// statements). Node identity is the statement's CST span, which is unique
// within one document.
type WorkflowScope struct {
	Name       string
	Span       cst.Span
	Root       *Scope
	ChildScope map[cst.Span]*Scope
}

// ScopeFor returns the child scope associated with a scatter/conditional
// statement's span, or Root if none is recorded (shouldn't happen for a
// well-formed tree, but keeps callers from nil-dereferencing on a malformed
// one).
func (w *WorkflowScope) ScopeFor(span cst.Span) *Scope {
	if s, ok := w.ChildScope[span]; ok {
		return s
	}
	return w.Root
}

// Namespace is an imported document's binding into this one, per spec.md
// §4.4: `Namespace{span, source_uri, scope_ref}`.
type Namespace struct {
	Span      cst.Span
	SourceURI string
	SourceID  docgraph.DocumentID
	Doc       *Document
}

// Document is one document's fully-built scope: its arena, its structs,
// tasks, optional workflow, and imported namespaces.
type Document struct {
	ID         docgraph.DocumentID
	Arena      *wdltype.Arena
	Namespaces map[string]*Namespace
	Structs    map[string]wdltype.ID
	Tasks      map[string]*TaskScope
	Workflow   *WorkflowScope
}

// NewDocument creates an empty Document scope ready for the builder to
// populate.
func NewDocument(id docgraph.DocumentID) *Document {
	return &Document{
		ID:         id,
		Arena:      wdltype.NewArena(),
		Namespaces: map[string]*Namespace{},
		Structs:    map[string]wdltype.ID{},
		Tasks:      map[string]*TaskScope{},
	}
}

// LookupCallable reports whether name resolves to a task or the workflow at
// the document's top level. The scope builder does not call it.
func (d *Document) LookupCallable(name string) bool {
	if _, ok := d.Tasks[name]; ok {
		return true
	}
	if d.Workflow != nil && d.Workflow.Name == name {
		return true
	}
	return false
}
