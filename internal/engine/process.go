package engine

import (
	"context"
	"time"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/scope"
	"github.com/dekarrin/wdlcore/internal/syntax/ast"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/lex"
	"github.com/dekarrin/wdlcore/internal/syntax/parse"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wlog"
)

// process implements the request processing algorithm of spec.md §4.3: a
// parse fixpoint over a private scratch graph, followed by a
// layer-by-layer analysis fanout, followed by a merge into the shared
// graph under write lock.
func (e *Engine) process(ctx context.Context, req *request) ([]AnalysisResult, error) {
	scratch := docgraph.New()
	prog := newThrottle(req.progress)

	parseSet := map[docgraph.DocumentID]bool{}
	parseDiags := map[docgraph.DocumentID][]wdlerrors.Diagnostic{}
	for _, id := range req.roots {
		scratch.GetOrCreate(id)
		parseSet[id] = true
	}

	parsed := 0
	for len(parseSet) > 0 {
		ids := make([]docgraph.DocumentID, 0, len(parseSet))
		for id := range parseSet {
			ids = append(ids, id)
		}
		parseSet = map[docgraph.DocumentID]bool{}

		docs, err := e.parseBatch(ctx, ids)
		if err != nil {
			return nil, err
		}
		parsed += len(ids)

		for i, id := range ids {
			outcome := docs[i]
			node := scratch.GetOrCreate(id)
			node.Parse = outcome.state
			parseDiags[id] = outcome.diags

			prog.emit(Progress{Parsed: parsed, TotalKnown: len(scratch.Nodes())}, false)

			if outcome.doc == nil {
				continue
			}
			for _, imp := range outcome.doc.Imports() {
				target, err := docgraph.ResolveImport(id, imp.URI())
				if err != nil {
					continue
				}
				_, known := scratch.Get(target)
				scratch.AddImport(id, target)
				if !known {
					parseSet[target] = true
				}
			}
		}
	}
	prog.emit(Progress{Parsed: parsed, TotalKnown: len(scratch.Nodes())}, true)

	analyzed := 0
	total := len(scratch.Nodes())
	layers := scratch.TopoLayers()
	for _, layer := range layers {
		if err := e.analyzeLayer(ctx, scratch, layer); err != nil {
			return nil, err
		}
		analyzed += len(layer)
		prog.emit(Progress{Parsed: parsed, TotalKnown: total, Analyzed: analyzed, TotalToAnalyze: total}, false)
	}
	prog.emit(Progress{Parsed: parsed, TotalKnown: total, Analyzed: analyzed, TotalToAnalyze: total}, true)

	// Parse diagnostics come first, ahead of the analysis diagnostics
	// analyzeLayer stored on each node.
	for _, n := range scratch.Nodes() {
		if pd := parseDiags[n.ID]; len(pd) > 0 {
			all := append(append([]wdlerrors.Diagnostic(nil), pd...), n.Diagnostics()...)
			n.SetAnalyzed(n.Analyzed(), all)
		}
	}

	return e.merge(scratch, req.roots), nil
}

type parseOutcome struct {
	state docgraph.ParseState
	doc   *ast.Document
	diags []wdlerrors.Diagnostic
}

// parseBatch spawns one worker per id on the pool, fetching and parsing
// each document. Parse failures never abort the batch: per spec.md §4.3
// step 3a, they produce a Document in Error state with no tree.
func (e *Engine) parseBatch(ctx context.Context, ids []docgraph.DocumentID) ([]parseOutcome, error) {
	g, gctx := e.newWorkerGroup(ctx)
	out := make([]parseOutcome, len(ids))

	validators := make(chan *lex.Validator, e.workers)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			var v *lex.Validator
			select {
			case v = <-validators:
			default:
				v = e.newValidator()
			}
			defer func() {
				select {
				case validators <- v:
				default:
				}
			}()

			out[i] = e.parseOne(gctx, id, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) parseOne(ctx context.Context, id docgraph.DocumentID, v *lex.Validator) parseOutcome {
	src, err := docgraph.FetchSource(ctx, id)
	if err != nil {
		return parseOutcome{state: docgraph.ParseState{Kind: docgraph.ParseError, Cause: err}}
	}

	result := parse.Parse(src)
	diags := append([]wdlerrors.Diagnostic(nil), result.Diagnostics...)

	root := cst.NewRoot(result.Tree)
	diags = append(diags, v.Validate(root)...)

	doc := ast.NewDocument(root)
	li := cst.NewLineIndex(src)

	return parseOutcome{
		state: docgraph.ParseState{Kind: docgraph.Parsed, GreenRoot: result.Tree, LineIndex: li},
		doc:   &doc,
		diags: diags,
	}
}

// analyzeLayer builds scopes for every node in one topological layer in
// parallel, per spec.md §4.3 step 4a.
func (e *Engine) analyzeLayer(ctx context.Context, scratch *docgraph.Graph, layer []docgraph.DocumentID) error {
	g, _ := e.newWorkerGroup(ctx)

	for _, id := range layer {
		id := id
		g.Go(func() error {
			node, ok := scratch.Get(id)
			if !ok || node.Parse.Kind != docgraph.Parsed {
				return nil
			}
			start := time.Now()
			root := cst.NewRoot(node.Parse.GreenRoot)
			doc := ast.NewDocument(root)

			docScope, diags := scope.Build(scratch, id, doc)
			dur := time.Since(start)
			node.SetAnalyzed(docScope, diags)
			node.SetAnalyzeDuration(dur)

			e.logger.WithDocument(string(id)).Debug("analyzed document",
				wlog.Duration("duration", dur),
				wlog.Int("diagnostic_count", len(diags)),
			)
			return nil
		})
	}
	return g.Wait()
}

// merge copies the scratch graph's nodes and edges into the shared graph
// under a write lock, per spec.md §4.3 step 6, and builds the result set
// for the completion channel.
func (e *Engine) merge(scratch *docgraph.Graph, roots []docgraph.DocumentID) []AnalysisResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	rootSet := map[docgraph.DocumentID]bool{}
	for _, r := range roots {
		rootSet[r] = true
	}

	var results []AnalysisResult
	for _, n := range scratch.Nodes() {
		shared := e.graph.GetOrCreate(n.ID)
		shared.Parse = n.Parse
		shared.SetAnalyzed(n.Analyzed(), n.Diagnostics())
		shared.SetAnalyzeDuration(n.Duration())

		for _, importee := range scratch.Importees(n.ID) {
			e.graph.AddImport(n.ID, importee)
		}

		var err error
		if n.Parse.Kind == docgraph.ParseError {
			err = n.Parse.Cause
		}

		docScope, _ := n.Analyzed().(*scope.Document)
		results = append(results, AnalysisResult{
			ID:          n.ID,
			IsRoot:      rootSet[n.ID],
			Err:         err,
			Diagnostics: n.Diagnostics(),
			Scope:       docScope,
			Duration:    n.Duration(),
		})
	}
	return results
}
