package cst

import (
	"fmt"
	"strings"

	"github.com/dekarrin/wdlcore/internal/syntax/token"
)

// GreenNode is a structural, immutable, shareable node of the lossless
// syntax tree. Green nodes carry no absolute offsets -- only their own text
// length and their children -- so identical subtrees (e.g. two occurrences of
// the same whitespace run) could in principle be shared, and a green subtree
// can be relocated into a different parent without being rewritten. Absolute
// position is reconstructed on demand by a Red cursor (see red.go).
//
// GreenNode must be built with NewGreenNode / NewGreenToken and never mutated
// after construction.
type GreenNode struct {
	kind     token.SyntaxKind
	text     string      // only set for token (leaf) nodes
	children []*GreenNode // only set for interior nodes
	len      uint32
}

// NewGreenToken builds a leaf green node holding literal source text. The
// text is exactly what appeared in the source; concatenating the text of
// every token reachable from a green root must reproduce the input
// byte-for-byte.
func NewGreenToken(kind token.SyntaxKind, text string) *GreenNode {
	return &GreenNode{kind: kind, text: text, len: uint32(len(text))}
}

// NewGreenNode builds an interior green node from its ordered children
// (which may themselves be interior nodes or tokens).
func NewGreenNode(kind token.SyntaxKind, children ...*GreenNode) *GreenNode {
	n := &GreenNode{kind: kind, children: children}
	for _, c := range children {
		n.len += c.len
	}
	return n
}

// Kind returns the node's SyntaxKind.
func (g *GreenNode) Kind() token.SyntaxKind {
	return g.kind
}

// Len returns the byte length of the source text this node (and everything
// beneath it) spans.
func (g *GreenNode) Len() uint32 {
	if g == nil {
		return 0
	}
	return g.len
}

// IsToken reports whether g is a leaf (token) node.
func (g *GreenNode) IsToken() bool {
	return g.children == nil
}

// Text returns the literal source text of a token node. Panics if called on
// an interior node; use Red.Text() to get the reconstituted text of any
// node, token or interior.
func (g *GreenNode) Text() string {
	if !g.IsToken() {
		panic("cst: Text() called on an interior GreenNode")
	}
	return g.text
}

// Children returns the node's children. Empty for token nodes.
func (g *GreenNode) Children() []*GreenNode {
	return g.children
}

// WriteText appends the node's full reconstituted source text to sb. This is
// the operation the lossless-parse property is checked against: calling
// WriteText on the green root must reproduce the original input exactly.
func (g *GreenNode) WriteText(sb *strings.Builder) {
	if g.IsToken() {
		sb.WriteString(g.text)
		return
	}
	for _, c := range g.children {
		c.WriteText(sb)
	}
}

// FullText reconstitutes the node's full source text (tokens and trivia
// alike) as a freshly allocated string.
func (g *GreenNode) FullText() string {
	var sb strings.Builder
	sb.Grow(int(g.len))
	g.WriteText(&sb)
	return sb.String()
}

// Equal reports whether g and o have identical structure: same kind, same
// text (for tokens), and recursively equal children.
func (g *GreenNode) Equal(o *GreenNode) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil {
		return false
	}
	if g.kind != o.kind || g.IsToken() != o.IsToken() {
		return false
	}
	if g.IsToken() {
		return g.text == o.text
	}
	if len(g.children) != len(o.children) {
		return false
	}
	for i := range g.children {
		if !g.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

const (
	treeLevelEmpty      = "        "
	treeLevelOngoing    = "  |     "
	treeLevelPrefix     = "  |-- "
	treeLevelPrefixLast = `  \-- `
)

// DebugString renders a tree-drawing representation of g, in the same
// ASCII-art style used for parse-tree dumps elsewhere in the toolchain --
// handy for debugging.
func (g *GreenNode) DebugString() string {
	var sb strings.Builder
	g.debugStr(&sb, "", "")
	return sb.String()
}

func (g *GreenNode) debugStr(sb *strings.Builder, firstPrefix, contPrefix string) {
	sb.WriteString(firstPrefix)
	if g.IsToken() {
		fmt.Fprintf(sb, "%s %q", g.kind, g.text)
	} else {
		fmt.Fprintf(sb, "%s", g.kind)
	}

	for i, c := range g.children {
		sb.WriteRune('\n')
		var nextFirst, nextCont string
		if i+1 < len(g.children) {
			nextFirst = contPrefix + treeLevelPrefix
			nextCont = contPrefix + treeLevelOngoing
		} else {
			nextFirst = contPrefix + treeLevelPrefixLast
			nextCont = contPrefix + treeLevelEmpty
		}
		c.debugStr(sb, nextFirst, nextCont)
	}
}
