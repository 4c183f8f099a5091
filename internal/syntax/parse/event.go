// Package parse turns a token stream from internal/syntax/lex into a lossless
// CST (internal/syntax/cst). WDL's grammar is parsed by an ordinary
// recursive-descent parser that records its progress as a flat event stream
// -- starts, finishes, raw tokens, and errors -- and only builds the actual
// green tree once the whole stream is known, rather than driving a
// precomputed parse table against a stack machine. The event stream is what
// makes forward-parenting possible: a rule can decide, after the fact, that
// tokens it already recorded actually belong inside a node it didn't know to
// start until it saw what followed them (see Marker.Precede).
package parse

import "github.com/dekarrin/wdlcore/internal/syntax/token"

// eventKind distinguishes the five shapes an event can take.
type eventKind uint8

const (
	evTombstone eventKind = iota // abandoned marker; skipped during the tree build
	evStart
	evFinish
	evToken
	evError
)

// event is one entry in the flat stream a Parser produces. Most fields are
// only meaningful for some eventKinds; this mirrors the compact
// single-slice-of-tagged-unions shape used by event-stream parsers rather
// than a Go-idiomatic sum type, because the tree builder needs to mutate
// already-recorded events in place (see Marker.Precede) -- something a
// sealed interface type would make awkward.
type event struct {
	kind eventKind

	// evStart / evFinish
	nodeKind token.SyntaxKind

	// evStart only: if set, this Start event is not a real tree node by
	// itself -- instead, when the builder reaches it, it should splice in
	// the Start event at forwardParent, which was created later but
	// encloses this one. This is how Marker.Precede retroactively wraps
	// already-emitted events in a new parent without moving them.
	forwardParent int // 0 means "none"; event indices are 1-based for this reason

	// evToken only
	tokKind token.SyntaxKind
	tokText string

	// evError only
	message string
}

// Marker references a single evStart event by its index in the Parser's
// event list. It is a capability: whoever holds it may complete the node it
// will become, abandon it, or precede it with a new enclosing node.
type Marker struct {
	pos uint32 // index into p.events
}

func (p *Parser) start() Marker {
	idx := uint32(len(p.events))
	p.events = append(p.events, event{kind: evStart})
	return Marker{pos: idx}
}

// Complete finishes the node started by m as kind, and returns a
// CompletedMarker that a later rule may still wrap via Precede.
func (p *Parser) complete(m Marker, kind token.SyntaxKind) CompletedMarker {
	p.events[m.pos].kind = evStart
	p.events[m.pos].nodeKind = kind
	p.events = append(p.events, event{kind: evFinish})
	return CompletedMarker{pos: m.pos}
}

// Abandon discards m: the tokens it would have covered are reparented to
// whatever node encloses m once the tree is built, as if m had never been
// started.
func (p *Parser) abandon(m Marker) {
	if int(m.pos) == len(p.events)-1 {
		// nothing was recorded since m.start(): drop the event entirely.
		p.events = p.events[:m.pos]
		return
	}
	p.events[m.pos].kind = evTombstone
}

// CompletedMarker is the result of Marker.Complete: the node exists, but an
// enclosing rule discovered after the fact (Precede) may still wrap it.
type CompletedMarker struct {
	pos uint32
}

// Precede opens a new Marker that, once completed, will enclose the node m
// already completed (and everything since) as its first child -- without
// re-recording any of the already-emitted events. This is how e.g. binary
// expression parsing builds `(a + b) * c` out of a parser that initially
// only knew it was parsing `a`.
func (p *Parser) precede(m CompletedMarker) Marker {
	newMarker := p.start()
	p.events[m.pos].forwardParent = int(newMarker.pos) + 1
	return newMarker
}
