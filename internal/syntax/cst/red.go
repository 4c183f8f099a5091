package cst

import "github.com/dekarrin/wdlcore/internal/syntax/token"

// Red is a cheap, value-type cursor over a GreenNode carrying its absolute
// offset in the document. Many Red cursors can point into the same shared
// green tree; none of them mutate it. This split avoids a cyclic
// parent-pointer graph in the (shared, cacheable) green layer while still
// supporting upward navigation from any point in the tree.
type Red struct {
	green  *GreenNode
	parent *Red
	offset uint32
	index  int // index within parent.Children(), -1 for the root
}

// NewRoot returns a Red cursor over the root of a green tree, positioned at
// offset 0.
func NewRoot(green *GreenNode) Red {
	return Red{green: green, offset: 0, index: -1}
}

// Green returns the underlying green node.
func (r Red) Green() *GreenNode {
	return r.green
}

// Kind returns the node's SyntaxKind.
func (r Red) Kind() token.SyntaxKind {
	return r.green.Kind()
}

// Span returns the node's absolute byte span in the document.
func (r Red) Span() Span {
	return Span{Start: r.offset, Len: r.green.Len()}
}

// Text returns the literal text of a token Red node.
func (r Red) Text() string {
	return r.green.Text()
}

// Parent returns the parent cursor, or nil at the root.
func (r Red) Parent() *Red {
	return r.parent
}

// IndexInParent returns this node's 0-based position among its parent's
// children, or -1 at the root.
func (r Red) IndexInParent() int {
	return r.index
}

// Children returns Red cursors for each child, each carrying its own
// absolute offset computed by walking forward from r's offset.
func (r Red) Children() []Red {
	kids := r.green.Children()
	out := make([]Red, len(kids))
	off := r.offset
	for i, c := range kids {
		out[i] = Red{green: c, parent: &r, offset: off, index: i}
		off += c.Len()
	}
	return out
}

// NonTrivia returns Children filtered to exclude whitespace/comment tokens.
// Used by the AST layer, which never wants to see trivia.
func (r Red) NonTrivia() []Red {
	all := r.Children()
	out := all[:0]
	for _, c := range all {
		if !c.Kind().IsTrivia() {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child with the given kind, and
// whether one was found.
func (r Red) FirstChildOfKind(k token.SyntaxKind) (Red, bool) {
	for _, c := range r.Children() {
		if c.Kind() == k {
			return c, true
		}
	}
	return Red{}, false
}

// ChildrenOfKind returns all direct children with the given kind.
func (r Red) ChildrenOfKind(k token.SyntaxKind) []Red {
	var out []Red
	for _, c := range r.Children() {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// Ancestors walks from r's parent up to the root, inclusive, calling visit
// for each. Iteration stops early if visit returns false. Used by the lint
// framework's exceptable_add sink to look for `#@ except:` directives.
func (r Red) Ancestors(visit func(Red) bool) {
	cur := r.parent
	for cur != nil {
		if !visit(*cur) {
			return
		}
		cur = cur.parent
	}
}

// PreOrder walks the subtree rooted at r in document order (pre-order: a
// node before its children), calling visit for every node including r
// itself. This is the traversal the lint framework's double-dispatch visitor
// drives.
func (r Red) PreOrder(visit func(Red)) {
	visit(r)
	for _, c := range r.Children() {
		c.PreOrder(visit)
	}
}
