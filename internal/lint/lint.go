// Package lint implements the double-dispatch CST traversal framework
// described in spec.md §4.8: the framework walks the tree preorder and
// calls the matching visitor hook on Enter (before descending) and Exit
// (after), letting independent lint rules compose into a single pass.
package lint

import (
	"strings"

	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// VisitReason distinguishes the two calls a traversal makes for every node:
// once before descending into its children, once after.
type VisitReason int

const (
	Enter VisitReason = iota
	Exit
)

func (r VisitReason) String() string {
	if r == Exit {
		return "Exit"
	}
	return "Enter"
}

// Tag categorizes a Rule for filtering (e.g. by a CLI --tags flag).
type Tag string

const (
	TagSpacing     Tag = "Spacing"
	TagStyle       Tag = "Style"
	TagClarity     Tag = "Clarity"
	TagCorrectness Tag = "Correctness"
	TagNaming      Tag = "Naming"
	TagPortability Tag = "Portability"
	TagDeprecated  Tag = "Deprecated"
)

// Visitor is the double-dispatch hook set the traversal drives. A Rule
// embeds BaseVisitor and overrides only the hooks it cares about; every
// hook is called twice per matching node (Enter, then Exit after children
// have been visited).
type Visitor interface {
	Document(s *State, reason VisitReason, node cst.Red)
	StructDefinition(s *State, reason VisitReason, node cst.Red)
	TaskDefinition(s *State, reason VisitReason, node cst.Red)
	WorkflowDefinition(s *State, reason VisitReason, node cst.Red)
	InputSection(s *State, reason VisitReason, node cst.Red)
	OutputSection(s *State, reason VisitReason, node cst.Red)
	CommandSection(s *State, reason VisitReason, node cst.Red)
	BoundDecl(s *State, reason VisitReason, node cst.Red)
	UnboundDecl(s *State, reason VisitReason, node cst.Red)
	CallStatement(s *State, reason VisitReason, node cst.Red)
	ScatterStatement(s *State, reason VisitReason, node cst.Red)
	ConditionalStatement(s *State, reason VisitReason, node cst.Red)
	Expr(s *State, reason VisitReason, node cst.Red)
}

// BaseVisitor supplies no-op implementations of every Visitor hook so a
// Rule only has to override the ones it needs.
type BaseVisitor struct{}

func (BaseVisitor) Document(*State, VisitReason, cst.Red)             {}
func (BaseVisitor) StructDefinition(*State, VisitReason, cst.Red)     {}
func (BaseVisitor) TaskDefinition(*State, VisitReason, cst.Red)       {}
func (BaseVisitor) WorkflowDefinition(*State, VisitReason, cst.Red)   {}
func (BaseVisitor) InputSection(*State, VisitReason, cst.Red)         {}
func (BaseVisitor) OutputSection(*State, VisitReason, cst.Red)        {}
func (BaseVisitor) CommandSection(*State, VisitReason, cst.Red)       {}
func (BaseVisitor) BoundDecl(*State, VisitReason, cst.Red)            {}
func (BaseVisitor) UnboundDecl(*State, VisitReason, cst.Red)          {}
func (BaseVisitor) CallStatement(*State, VisitReason, cst.Red)        {}
func (BaseVisitor) ScatterStatement(*State, VisitReason, cst.Red)     {}
func (BaseVisitor) ConditionalStatement(*State, VisitReason, cst.Red) {}
func (BaseVisitor) Expr(*State, VisitReason, cst.Red)                 {}

// Rule is an independent lint check: a stable id, a tag set for filtering,
// an exceptable-node kind set (nodes whose subtree a `#@ except: rule-id`
// comment can suppress this rule within), a description, and the visitor
// hooks that do the actual checking.
type Rule interface {
	Visitor
	ID() string
	Description() string
	Tags() []Tag
	// ExceptableNodes returns the node kinds whose leading comment can
	// suppress this rule for their subtree. Nil means the rule cannot be
	// excepted at all.
	ExceptableNodes() []token.SyntaxKind
}

// State is the per-run mutable context threaded through every hook call.
// Rules that need to remember something across Enter/Exit pairs (e.g. a
// bracket-depth counter) should keep it on their own struct, not here;
// State only carries what the framework itself owns.
type State struct {
	Diagnostics *Diagnostics
}

// Diagnostics is the sink every rule reports through. It is safe for
// concurrent use only insofar as a single run processes one document on one
// goroutine; the analysis engine runs one lint pass per document, not per
// rule, so no locking is needed here.
type Diagnostics struct {
	items []wdlerrors.Diagnostic
}

// NewDiagnostics returns an empty sink.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Add appends a diagnostic unconditionally.
func (d *Diagnostics) Add(diag wdlerrors.Diagnostic) {
	d.items = append(d.items, diag)
}

// exceptDirectivePrefix is the comment directive spec.md §4.8 describes:
// `#@ except: rule-id[, rule-id...]`.
const exceptDirectivePrefix = "#@ except:"

// ExceptableAdd adds diag unless some ancestor of node (inclusive) whose
// kind appears in exceptableKinds carries a leading `#@ except: rule-id` (or
// `#@ except: *`) comment naming diag's rule. exceptableKinds nil means the
// rule can never be excepted and diag is always added.
func (d *Diagnostics) ExceptableAdd(diag wdlerrors.Diagnostic, node cst.Red, exceptableKinds []token.SyntaxKind) {
	if len(exceptableKinds) == 0 || diag.RuleID == "" {
		d.Add(diag)
		return
	}

	excepted := false
	check := func(n cst.Red) bool {
		if !kindIn(n.Kind(), exceptableKinds) {
			return true
		}
		if directiveExcepts(n, diag.RuleID) {
			excepted = true
			return false
		}
		return true
	}
	if check(node) {
		node.Ancestors(check)
	}

	if !excepted {
		d.Add(diag)
	}
}

// All returns every diagnostic reported so far, in report order.
func (d *Diagnostics) All() []wdlerrors.Diagnostic {
	return d.items
}

func kindIn(k token.SyntaxKind, set []token.SyntaxKind) bool {
	for _, s := range set {
		if s == k {
			return true
		}
	}
	return false
}

// directiveExcepts scans n's leading trivia (comment tokens preceding its
// first non-trivia child) for a `#@ except:` directive naming ruleID or
// `*`. Comments that are n's preceding siblings are not scanned.
func directiveExcepts(n cst.Red, ruleID string) bool {
	for _, c := range n.Children() {
		if c.Kind() != token.Comment {
			if !c.Kind().IsTrivia() {
				break
			}
			continue
		}
		if directiveNames(c.Text(), ruleID) {
			return true
		}
	}
	return false
}

func directiveNames(comment, ruleID string) bool {
	text := strings.TrimSpace(strings.TrimPrefix(comment, "#"))
	text = strings.TrimSpace(strings.TrimPrefix(text, "@"))
	if !strings.HasPrefix(text, "except:") {
		return false
	}
	list := strings.TrimSpace(strings.TrimPrefix(text, "except:"))
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "*" || name == ruleID {
			return true
		}
	}
	return false
}

// Run drives every rule over the subtree rooted at root in one preorder
// pass, per spec.md §4.8: "the framework iterates CST preorder; for each
// node it calls the matching visitor hook with Enter and, after descending,
// Exit." Rules are independent visitors composed together in this one pass.
func Run(root cst.Red, rules []Rule) []wdlerrors.Diagnostic {
	state := &State{Diagnostics: NewDiagnostics()}
	var walk func(n cst.Red)
	walk = func(n cst.Red) {
		dispatch(rules, state, Enter, n)
		for _, c := range n.Children() {
			walk(c)
		}
		dispatch(rules, state, Exit, n)
	}
	walk(root)
	return state.Diagnostics.All()
}

func dispatch(rules []Rule, s *State, reason VisitReason, n cst.Red) {
	for _, r := range rules {
		switch n.Kind() {
		case token.NodeRoot:
			r.Document(s, reason, n)
		case token.NodeStructDefinition:
			r.StructDefinition(s, reason, n)
		case token.NodeTaskDefinition:
			r.TaskDefinition(s, reason, n)
		case token.NodeWorkflowDefinition:
			r.WorkflowDefinition(s, reason, n)
		case token.NodeInputSection:
			r.InputSection(s, reason, n)
		case token.NodeOutputSection:
			r.OutputSection(s, reason, n)
		case token.NodeCommandSection:
			r.CommandSection(s, reason, n)
		case token.NodeBoundDecl:
			r.BoundDecl(s, reason, n)
		case token.NodeUnboundDecl:
			r.UnboundDecl(s, reason, n)
		case token.NodeCallStatement:
			r.CallStatement(s, reason, n)
		case token.NodeScatterStatement:
			r.ScatterStatement(s, reason, n)
		case token.NodeConditionalStatement:
			r.ConditionalStatement(s, reason, n)
		case token.NodeLiteralExpr, token.NodeNameRefExpr, token.NodeAccessExpr,
			token.NodeIndexExpr, token.NodeCallExpr, token.NodeIfExpr,
			token.NodeBinaryExpr, token.NodeUnaryExpr, token.NodeParenExpr:
			r.Expr(s, reason, n)
		}
	}
}
