package scope

import (
	"path"
	"strings"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/syntax/ast"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wdltype"
)

// Build constructs id's Document scope from its parsed ast.Document, using g
// to resolve imports. Per spec.md §4.3's layer-by-layer analysis order,
// every document id imports must already have an analyzed *Document
// attached to its docgraph.Node by the time Build runs.
func Build(g *docgraph.Graph, id docgraph.DocumentID, doc ast.Document) (*Document, []wdlerrors.Diagnostic) {
	d := NewDocument(id)
	var diags []wdlerrors.Diagnostic

	diags = append(diags, buildImports(g, d, id, doc)...)
	diags = append(diags, resolveStructDefinitions(d, doc.Structs())...)

	for _, t := range doc.Tasks() {
		ts, tdiags := buildTask(d, t)
		diags = append(diags, tdiags...)
		if _, dup := d.Tasks[t.Name()]; dup {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(t.Span()), "duplicate task definition %q", t.Name()))
			continue
		}
		d.Tasks[t.Name()] = ts
	}

	if wf, ok := doc.Workflow(); ok {
		ws, wdiags := buildWorkflow(d, wf)
		diags = append(diags, wdiags...)
		d.Workflow = ws
	}

	return d, diags
}

func buildImports(g *docgraph.Graph, d *Document, id docgraph.DocumentID, doc ast.Document) []wdlerrors.Diagnostic {
	var diags []wdlerrors.Diagnostic

	for _, imp := range doc.Imports() {
		target, err := docgraph.ResolveImport(id, imp.URI())
		if err != nil {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()), "cannot resolve import %q: %v", imp.URI(), err))
			continue
		}
		if g.IsCycleEdge(id, target) {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()), "import of %q would create a cyclic import chain", imp.URI()))
			continue
		}
		node, ok := g.Get(target)
		if !ok {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()), "import target %q was not found in the document graph", imp.URI()))
			continue
		}
		imported, ok := node.Analyzed().(*Document)
		if !ok {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()), "import target %q has not been analyzed", imp.URI()))
			continue
		}

		ns, hasNs := imp.Namespace()
		if !hasNs {
			ns = deriveNamespace(string(target))
		}
		if _, dup := d.Namespaces[ns]; dup {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()), "duplicate import namespace %q", ns))
			continue
		}
		d.Namespaces[ns] = &Namespace{
			Span:      imp.Span(),
			SourceURI: imp.URI(),
			SourceID:  target,
			Doc:       imported,
		}

		renameTo := map[string]string{}
		for _, al := range imp.Aliases() {
			from, to := al.Names()
			renameTo[from] = to
		}

		for name := range imported.Structs {
			localName := name
			if renamed, ok := renameTo[name]; ok {
				localName = renamed
			}
			copiedID, ok := d.Arena.CopyStructFrom(imported.Arena, name)
			if !ok {
				continue
			}
			if existingID, exists := d.Structs[localName]; exists {
				if !wdltype.StructsEqual(d.Arena, existingID, d.Arena, copiedID) {
					diags = append(diags, wdlerrors.Newf(toWdlSpan(imp.Span()),
						"imported struct %q conflicts with a differently-shaped struct already in scope", localName))
				}
				continue
			}
			d.Structs[localName] = copiedID
		}
	}

	return diags
}

// deriveNamespace derives the implicit namespace for an import with no `as`
// clause: the base filename without its extension, per spec.md §6.
func deriveNamespace(uri string) string {
	base := path.Base(uri)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func buildTask(d *Document, t ast.TaskDefinition) (*TaskScope, []wdlerrors.Diagnostic) {
	var diags []wdlerrors.Diagnostic
	scope := NewScope(nil)
	resolver := &typeResolver{doc: d, diags: &diags}

	if input, ok := t.Input(); ok {
		for _, decl := range input.Decls() {
			defineDecl(scope, resolver, decl, CtxInput, &diags)
		}
	}
	for _, decl := range t.PrivateDecls() {
		defineDecl(scope, resolver, decl, CtxDecl, &diags)
	}
	if output, ok := t.Output(); ok {
		for _, decl := range output.Decls() {
			defineDecl(scope, resolver, decl, CtxOutput, &diags)
		}
	}

	return &TaskScope{Name: t.Name(), Span: t.Span(), Scope: scope}, diags
}

func defineDecl(scope *Scope, resolver *typeResolver, decl ast.Decl, ctx Context, diags *[]wdlerrors.Diagnostic) {
	name := decl.Name()
	if _, exists := scope.LocalLookup(name); exists {
		*diags = append(*diags, wdlerrors.Newf(toWdlSpan(decl.Span()), "name %q is already defined in this scope", name))
		return
	}
	var id wdltype.ID
	if t, ok := decl.Type(); ok {
		id = resolver.resolve(t)
	} else {
		id = resolver.doc.Arena.Primitive(wdltype.KindUnion)
	}
	scope.Define(ScopedName{Name: name, Context: ctx, DefiningNode: decl.Span(), Type: id})
}

func buildWorkflow(d *Document, wf ast.WorkflowDefinition) (*WorkflowScope, []wdlerrors.Diagnostic) {
	var diags []wdlerrors.Diagnostic
	root := NewScope(nil)
	ws := &WorkflowScope{Name: wf.Name(), Span: wf.Span(), Root: root, ChildScope: map[cst.Span]*Scope{}}
	resolver := &typeResolver{doc: d, diags: &diags}

	if input, ok := wf.Input(); ok {
		for _, decl := range input.Decls() {
			defineDecl(root, resolver, decl, CtxInput, &diags)
		}
	}

	processBody(d, ws, root, wf.Body(), resolver, &diags)

	if output, ok := wf.Output(); ok {
		for _, decl := range output.Decls() {
			defineDecl(root, resolver, decl, CtxOutput, &diags)
		}
	}

	return ws, diags
}

func processBody(d *Document, ws *WorkflowScope, scope *Scope, items []ast.BodyItem, resolver *typeResolver, diags *[]wdlerrors.Diagnostic) {
	for _, item := range items {
		switch it := item.(type) {
		case ast.Decl:
			defineDecl(scope, resolver, it, CtxDecl, diags)
		case ast.CallStatement:
			buildCall(d, scope, it, diags)
		case ast.ScatterStatement:
			child := NewScope(scope)
			elemType := d.Arena.Primitive(wdltype.KindUnion)
			child.Define(ScopedName{
				Name:         it.Variable(),
				Context:      CtxScatterVariable,
				DefiningNode: it.Span(),
				Type:         elemType,
			})
			processBody(d, ws, child, it.Body(), resolver, diags)
			ws.ChildScope[it.Span()] = child
			publishScatterImplicit(d, scope, child)
		case ast.ConditionalStatement:
			child := NewScope(scope)
			processBody(d, ws, child, it.Body(), resolver, diags)
			ws.ChildScope[it.Span()] = child
			publishConditionalImplicit(d, scope, child)
		}
	}
}

// publishScatterImplicit propagates a scatter body's bindings out to its
// enclosing scope, per spec.md §4.4: every name bound inside a scatter
// becomes visible outside it as an Array of its inner type (one element per
// iteration), except for the scatter variable itself, which never escapes.
func publishScatterImplicit(d *Document, parent, child *Scope) {
	for _, sn := range child.Entries {
		if sn.Context == CtxScatterVariable {
			continue
		}
		if _, exists := parent.LocalLookup(sn.Name); exists {
			continue
		}
		wrapped := sn
		wrapped.IsImplicit = true
		wrapped.Type = d.Arena.Array(sn.Type, false, false)
		parent.Define(wrapped)
	}
}

// publishConditionalImplicit propagates a conditional body's bindings out to
// its enclosing scope as optional: the body may not have executed, so every
// name it binds might be unset.
func publishConditionalImplicit(d *Document, parent, child *Scope) {
	for _, sn := range child.Entries {
		if _, exists := parent.LocalLookup(sn.Name); exists {
			continue
		}
		wrapped := sn
		wrapped.IsImplicit = true
		wrapped.Type = d.Arena.ToOptional(sn.Type)
		parent.Define(wrapped)
	}
}

// buildCall resolves a call statement's callee (a local task/workflow, or
// one reached through an import namespace) and defines its result name as a
// struct aggregating the callee's declared outputs, per spec.md §4.4's
// "a call introduces a name bound to the shape of the callee's outputs".
func buildCall(d *Document, scope *Scope, call ast.CallStatement, diags *[]wdlerrors.Diagnostic) {
	resultName := call.ResultName()
	if _, exists := scope.LocalLookup(resultName); exists {
		*diags = append(*diags, wdlerrors.Newf(toWdlSpan(call.Span()), "name %q is already defined in this scope", resultName))
		return
	}

	outputScope, ok := resolveCallee(d, call.Callee())
	if !ok {
		*diags = append(*diags, wdlerrors.Newf(toWdlSpan(call.Span()), "call to undefined task or workflow %q", call.Callee()))
		return
	}

	var members []wdltype.Member
	if outputScope != nil {
		for _, name := range outputScope.Names() {
			sn, _ := outputScope.LocalLookup(name)
			if sn.Context != CtxOutput {
				continue
			}
			members = append(members, wdltype.Member{Name: sn.Name, Type: sn.Type})
		}
	}
	resultType := d.Arena.DefineStruct(callResultTypeName(resultName, call.Span()), members)

	scope.Define(ScopedName{
		Name:         resultName,
		Context:      CtxCall,
		DefiningNode: call.Span(),
		Type:         resultType,
	})
}

// callResultTypeName mints a struct name for a call's synthetic output
// aggregate that cannot collide with a user-declared struct, since it
// carries a byte offset no source identifier can contain.
func callResultTypeName(resultName string, span cst.Span) string {
	return "call:" + resultName + "@" + itoa(span.Start)
}

func itoa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

// resolveCallee looks up a call's dotted callee name against the document's
// own tasks/workflow, or, if it is namespace-qualified, against an imported
// document's tasks/workflow. It returns the callee's scope (so its output
// bindings can be read) and whether resolution succeeded.
func resolveCallee(d *Document, callee string) (*Scope, bool) {
	if i := strings.IndexByte(callee, '.'); i >= 0 {
		ns, rest := callee[:i], callee[i+1:]
		namespace, ok := d.Namespaces[ns]
		if !ok {
			return nil, false
		}
		return resolveCallee(namespace.Doc, rest)
	}

	if ts, ok := d.Tasks[callee]; ok {
		return ts.Scope, true
	}
	if d.Workflow != nil && d.Workflow.Name == callee {
		return d.Workflow.Root, true
	}
	return nil, false
}
