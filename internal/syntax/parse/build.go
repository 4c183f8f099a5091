package parse

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// frame accumulates the children of one in-progress node while the event
// stream is replayed.
type frame struct {
	kind     token.SyntaxKind
	children []*cst.GreenNode
}

// buildTree replays p.events into a single green tree, resolving
// forward-parented Start events (see Marker.Precede) along the way. It also
// collects parser-level (non-lex) diagnostics from evError events, anchored
// at the offset reached when the error was recorded.
func (p *Parser) buildTree() (*cst.GreenNode, []wdlerrors.Diagnostic) {
	var stack []frame
	var root *cst.GreenNode
	var diags []wdlerrors.Diagnostic
	var offset uint32

	consumed := make([]bool, len(p.events))

	push := func(kind token.SyntaxKind) {
		stack = append(stack, frame{kind: kind})
	}
	attach := func(n *cst.GreenNode) {
		if len(stack) == 0 {
			root = n
			return
		}
		top := &stack[len(stack)-1]
		top.children = append(top.children, n)
	}
	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		attach(cst.NewGreenNode(top.kind, top.children...))
	}

	for i := 0; i < len(p.events); i++ {
		if consumed[i] {
			continue
		}
		ev := p.events[i]

		switch ev.kind {
		case evTombstone:
			// abandoned marker that had events recorded after it (abandon()
			// drops the start event entirely when nothing followed it); the
			// events it would have covered attach to the enclosing node.
			continue

		case evStart:
			var chain []token.SyntaxKind
			idx := i
			for {
				chain = append(chain, p.events[idx].nodeKind)
				fp := p.events[idx].forwardParent
				if fp == 0 {
					break
				}
				next := fp - 1
				consumed[next] = true
				idx = next
			}
			for j := len(chain) - 1; j >= 0; j-- {
				push(chain[j])
			}

		case evFinish:
			pop()

		case evToken:
			attach(cst.NewGreenToken(ev.tokKind, ev.tokText))
			offset += uint32(len(ev.tokText))

		case evError:
			diags = append(diags, wdlerrors.New(ev.message, wdlerrors.Span{Start: offset}))
		}
	}

	return root, diags
}
