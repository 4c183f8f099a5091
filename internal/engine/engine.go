// Package engine implements the analysis engine described in spec.md §4.3
// and §5: a single serialized request queue fanning out to a parallel
// worker pool for CPU-bound parse and analyze units, operating on a private
// scratch document graph per request and merging into the shared graph
// only at the end, under a write lock.
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/scope"
	"github.com/dekarrin/wdlcore/internal/syntax/lex"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wlog"
)

// progressInterval is the minimum spacing between progress callback
// invocations, per spec.md §4.3 step 3b.
const progressInterval = 50 * time.Millisecond

// ProgressFunc receives periodic updates while a request is in flight. Per
// spec.md §5, implementations must be non-blocking: the queue task calls
// this synchronously between batches.
type ProgressFunc func(Progress)

// Progress reports how many of a request's known documents have reached
// each pipeline stage so far.
type Progress struct {
	Parsed      int
	TotalKnown  int
	Analyzed    int
	TotalToAnalyze int
}

// AnalysisResult is one node's outcome, delivered once per analyzed document
// per spec.md §4.3 step 6.
type AnalysisResult struct {
	ID          docgraph.DocumentID
	IsRoot      bool
	Err         error
	Diagnostics []wdlerrors.Diagnostic
	Scope       *scope.Document
	Duration    time.Duration
}

// request is one analysis request in flight through the queue.
type request struct {
	roots    []docgraph.DocumentID
	progress ProgressFunc
	done     chan requestOutcome
}

type requestOutcome struct {
	results []AnalysisResult
	err     error
}

// Engine is the analysis engine: one shared Graph behind a read-write lock,
// and a single queue goroutine (started by Start) that serializes requests
// arriving on an internal channel.
type Engine struct {
	mu    sync.RWMutex
	graph *docgraph.Graph

	workers int
	// newValidator is the factory closure spec.md §4.3's final paragraph
	// describes: each worker goroutine lazily builds its own *lex.Validator
	// from this and reuses it across parse tasks instead of allocating a
	// fresh one per document.
	newValidator func() *lex.Validator
	logger       wlog.Logger

	requests chan *request
	wg       sync.WaitGroup
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithWorkers overrides the default worker pool size (4).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger attaches a Logger the engine uses to emit per-document
// structured log entries (analyze duration, parse/analyze progress) during
// process. Defaults to wlog.Noop() if never set.
func WithLogger(l wlog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with an empty shared graph. Start must be called
// before Analyze will make progress.
func New(opts ...Option) *Engine {
	e := &Engine{
		graph:        docgraph.New(),
		workers:      4,
		newValidator: lex.NewValidator,
		logger:       wlog.Noop(),
		requests:     make(chan *request),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the queue task. It returns immediately; the queue task
// runs until ctx is canceled or Close is called.
func (e *Engine) Start(ctx context.Context) {
	e.wg.Add(1)
	go e.run(ctx)
}

// Close stops accepting new requests and waits for the queue task to drain
// and exit, per spec.md §5's "dropping the engine's request sender signals
// graceful shutdown".
func (e *Engine) Close() {
	close(e.requests)
	e.wg.Wait()
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-e.requests:
			if !ok {
				return
			}
			results, err := e.process(ctx, req)
			req.done <- requestOutcome{results: results, err: err}
			close(req.done)
		}
	}
}

// Snapshot returns a read-only view of the shared graph's nodes, safe to
// call concurrently with in-flight Analyze requests (spec.md §5: "readers
// may run concurrently with in-progress analysis requests").
func (e *Engine) Snapshot() []*docgraph.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Nodes()
}

// Analyze submits a request for the given root documents and blocks until
// the queue task has processed it (or ctx is canceled), per spec.md §5's
// FIFO ordering guarantee: requests complete in submission order.
func (e *Engine) Analyze(ctx context.Context, roots []docgraph.DocumentID, progress ProgressFunc) ([]AnalysisResult, error) {
	req := &request{roots: roots, progress: progress, done: make(chan requestOutcome, 1)}

	select {
	case e.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case outcome := <-req.done:
		return outcome.results, outcome.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// newWorkerGroup builds an errgroup bounded to the engine's worker count
// via SetLimit.
func (e *Engine) newWorkerGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	return g, gctx
}

// throttle calls fn with the latest Progress no more often than
// progressInterval, per spec.md §4.3 step 3b.
type throttle struct {
	mu   sync.Mutex
	last time.Time
	fn   ProgressFunc
}

func newThrottle(fn ProgressFunc) *throttle {
	return &throttle{fn: fn}
}

func (t *throttle) emit(p Progress, force bool) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !force && time.Since(t.last) < progressInterval {
		return
	}
	t.last = time.Now()
	t.fn(p)
}
