// Package docgraph implements the document graph described in spec.md §3
// and §4.3: one node per resolved document identity, import dependency
// edges between them, and a cycle set recording would-be cycle edges that
// were elided to keep the graph acyclic.
package docgraph

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// DocumentID identifies one document: either an absolute local filesystem
// path or an absolute URI (file/http/https). Two DocumentIDs are equal iff
// their normalized string forms are equal.
type DocumentID string

// ResolveImport resolves an import URI relative to the importer's own
// DocumentID, per spec.md §6: local paths resolve relative to the importing
// file's directory; absolute URIs (carrying a scheme) are used as-is.
func ResolveImport(importer DocumentID, importURI string) (DocumentID, error) {
	if u, err := url.Parse(importURI); err == nil && u.IsAbs() {
		return DocumentID(importURI), nil
	}

	importerStr := string(importer)
	if iu, err := url.Parse(importerStr); err == nil && iu.IsAbs() {
		resolved, err := iu.Parse(importURI)
		if err != nil {
			return "", err
		}
		return DocumentID(resolved.String()), nil
	}

	// local path: resolve relative to importer's directory.
	dir := filepath.Dir(importerStr)
	joined := filepath.Join(dir, importURI)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	return DocumentID(abs), nil
}

// IsRemote reports whether id names an http(s) URI rather than a local path
// or file:// URI.
func (id DocumentID) IsRemote() bool {
	s := string(id)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ParseStateKind discriminates the three states a node's parse result can
// be in.
type ParseStateKind int

const (
	NotParsed ParseStateKind = iota
	Parsed
	ParseError
)

// ParseState is the per-node union spec.md §3 describes:
// NotParsed | Parsed{green_root, line_index} | Error{cause}.
type ParseState struct {
	Kind      ParseStateKind
	GreenRoot *cst.GreenNode
	LineIndex *cst.LineIndex
	Cause     error
}

// analyzedPayload is the analyzed form of a node (its scope). It is
// declared as an interface{} placeholder here to avoid an import cycle with
// internal/scope (which itself imports docgraph to walk imports) -- callers
// type-assert to *scope.Document. See Node.Analyzed/SetAnalyzed.
type analyzedPayload = interface{}

// Node is one document in the graph.
type Node struct {
	ID    DocumentID
	Parse ParseState

	analyzed    analyzedPayload
	diagnostics []wdlerrors.Diagnostic
	duration    time.Duration
}

// SetAnalyzed attaches the document's analyzed payload (a *scope.Document)
// and diagnostics once analysis of this node completes.
func (n *Node) SetAnalyzed(payload interface{}, diags []wdlerrors.Diagnostic) {
	n.analyzed = payload
	n.diagnostics = diags
}

// SetAnalyzeDuration records how long this node's analyze step took, for
// structured log fields and the CLI's --verbose timing summary.
func (n *Node) SetAnalyzeDuration(d time.Duration) {
	n.duration = d
}

// Duration returns the node's analyze step duration, or zero if analysis
// has not run (or did not reach the analyze step).
func (n *Node) Duration() time.Duration {
	return n.duration
}

// Analyzed returns the node's analyzed payload, or nil if analysis has not
// run.
func (n *Node) Analyzed() interface{} {
	return n.analyzed
}

// Diagnostics returns the node's accumulated diagnostics (parse and
// analysis alike).
func (n *Node) Diagnostics() []wdlerrors.Diagnostic {
	return n.diagnostics
}

// CyclePair is one elided import edge: an import from Importer to Importee
// that would have closed a cycle, recorded instead of added to the graph.
type CyclePair struct {
	Importer DocumentID
	Importee DocumentID
}

// Graph is a directed graph of documents connected by import edges. The
// zero Graph is ready to use. Per spec.md §5, callers needing concurrent
// read access alongside a single in-progress writer should wrap a Graph in
// a sync.RWMutex themselves (see internal/engine, which owns exactly one
// such Graph behind a lock).
type Graph struct {
	nodes map[DocumentID]*Node
	// edges[importer] = set of importees it depends on (importee must be
	// analyzed before importer, since importer reads importee's scope).
	edges  map[DocumentID]map[DocumentID]bool
	cycles []CyclePair
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: map[DocumentID]*Node{},
		edges: map[DocumentID]map[DocumentID]bool{},
	}
}

// GetOrCreate returns the existing node for id, or creates a new NotParsed
// one.
func (g *Graph) GetOrCreate(id DocumentID) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	g.nodes[id] = n
	return n
}

// Get returns the node for id, if present.
func (g *Graph) Get(id DocumentID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node currently in the graph, in no particular order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Importees returns the documents that importer directly depends on (its
// outgoing edges).
func (g *Graph) Importees(importer DocumentID) []DocumentID {
	set := g.edges[importer]
	out := make([]DocumentID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Importers returns every document that directly imports importee (the
// reverse of Importees), used by the topological layering pass.
func (g *Graph) Importers(importee DocumentID) []DocumentID {
	var out []DocumentID
	for importer, set := range g.edges {
		if set[importee] {
			out = append(out, importer)
		}
	}
	return out
}

// Cycles returns the recorded would-be-cycle import edges.
func (g *Graph) Cycles() []CyclePair {
	return g.cycles
}

// hasPath reports whether a DFS from start reaches target following
// outgoing (importer -> importee) edges.
func (g *Graph) hasPath(start, target DocumentID) bool {
	if start == target {
		return true
	}
	visited := map[DocumentID]bool{}
	var stack []DocumentID
	stack = append(stack, start)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == target {
			return true
		}
		for next := range g.edges[cur] {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// AddImport records that importer imports importee. Per spec.md §4.3 step
// 3c: a dependency edge is added only if a DFS from importee finds no
// existing path back to importer; otherwise this edge would close a cycle,
// and the pair is recorded in the cycle set instead and the edge is not
// added.
//
// The cycle check is: does a path already exist from importee back to
// importer? If so, adding importer->importee would close a cycle
// (importer -> importee -> ... -> importer).
func (g *Graph) AddImport(importer, importee DocumentID) {
	g.GetOrCreate(importer)
	g.GetOrCreate(importee)

	if g.hasPath(importee, importer) {
		g.cycles = append(g.cycles, CyclePair{Importer: importer, Importee: importee})
		return
	}

	if g.edges[importer] == nil {
		g.edges[importer] = map[DocumentID]bool{}
	}
	g.edges[importer][importee] = true
}

// IsCycleEdge reports whether the (importer, importee) pair was elided as a
// cycle-closing edge.
func (g *Graph) IsCycleEdge(importer, importee DocumentID) bool {
	for _, c := range g.cycles {
		if c.Importer == importer && c.Importee == importee {
			return true
		}
	}
	return false
}

// TopoLayers partitions the graph's nodes into layers for the analysis
// engine's layer-by-layer fanout (spec.md §4.3 step 4a): a layer is the set
// of nodes whose outgoing (import) edges have all already been placed in an
// earlier layer, in a working copy of the edge set -- i.e. every document a
// node imports is already analyzable before the node itself is. Layers are
// removed and the process repeated until every node has been placed.
// Imports are thus analyzed before importers; cycle-broken edges were never
// added to the graph, so they cannot affect layering.
func (g *Graph) TopoLayers() [][]DocumentID {
	remaining := map[DocumentID]map[DocumentID]bool{}
	for importer, set := range g.edges {
		cp := make(map[DocumentID]bool, len(set))
		for k, v := range set {
			cp[k] = v
		}
		remaining[importer] = cp
	}

	placed := map[DocumentID]bool{}
	var layers [][]DocumentID

	for len(placed) < len(g.nodes) {
		var layer []DocumentID
		for id := range g.nodes {
			if placed[id] {
				continue
			}
			if len(remaining[id]) == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			// Defensive: should be unreachable since the graph is
			// maintained acyclic by AddImport, but avoid an infinite loop
			// if something external corrupts the edge set.
			for id := range g.nodes {
				if !placed[id] {
					layer = append(layer, id)
				}
			}
		}
		for _, id := range layer {
			placed[id] = true
		}
		for importer, set := range remaining {
			for _, done := range layer {
				delete(set, done)
			}
			_ = importer
		}
		layers = append(layers, layer)
	}
	return layers
}
