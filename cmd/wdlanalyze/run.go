package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/engine"
	"github.com/dekarrin/wdlcore/internal/override"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wlog"
	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/dekarrin/wdlcore/server/dao/sqlite"
	"github.com/google/uuid"
)

// cmdRun implements `wdlanalyze run <source> <target> [path=value ...]`: it
// records a new Session and Run in the persistence store, analyzes the
// source document, and transitions the Run to completed or failed based on
// whether analysis reported any errors. Actual task execution is out of
// scope (spec.md §1's non-goals); this subcommand only exercises the
// persistence layer end to end.
func cmdRun(cfg Config, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wdlanalyze run <source.wdl> <target> [path=value ...]")
		return ExitUsageError
	}
	source, target, overrideArgs := args[0], args[1], args[2:]

	overrides := make([]override.Override, 0, len(overrideArgs))
	for _, a := range overrideArgs {
		o, err := override.Parse(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: invalid override %q: %s\n", a, err.Error())
			return ExitUsageError
		}
		overrides = append(overrides, o)
	}
	if err := override.CheckPathConflicts(overrides); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitUsageError
	}
	inputs, err := override.Apply(nil, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: applying overrides: %s\n", err.Error())
		return ExitUsageError
	}
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: encoding inputs: %s\n", err.Error())
		return ExitInitError
	}

	store, err := sqlite.NewDatastore(cfg.storeDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: opening store: %s\n", err.Error())
		return ExitInitError
	}
	defer store.Close()

	logger, err := wlog.New(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: initializing logger: %s\n", err.Error())
		return ExitInitError
	}
	defer logger.Sync()

	ctx := context.Background()

	sessionID, err := uuid.NewRandom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating session ID: %s\n", err.Error())
		return ExitInitError
	}
	session, err := store.Sessions().Create(ctx, sessionID, dao.SubcommandRun, currentUser())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating session: %s\n", err.Error())
		return ExitInitError
	}

	runID, err := uuid.NewRandom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating run ID: %s\n", err.Error())
		return ExitInitError
	}
	run, err := store.Runs().Create(ctx, runID, session.UUID, target, source, target, string(inputsJSON), cfg.storeDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating run: %s\n", err.Error())
		return ExitInitError
	}

	if err := store.Runs().Start(ctx, run.UUID, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: starting run: %s\n", err.Error())
		return ExitInitError
	}

	eng := engine.New(engine.WithWorkers(cfg.workers()), engine.WithLogger(logger))
	eng.Start(ctx)
	defer eng.Close()

	results, err := eng.Analyze(ctx, []docgraph.DocumentID{docgraph.DocumentID(source)}, nil)
	if err != nil {
		store.Runs().Fail(ctx, run.UUID, err.Error(), time.Now())
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitAnalysisFailure
	}

	var failMsg string
	for _, r := range results {
		if r.Err != nil {
			failMsg = r.Err.Error()
			break
		}
		for _, diag := range r.Diagnostics {
			if diag.Severity == wdlerrors.Error {
				failMsg = diag.Message
				break
			}
		}
	}

	if failMsg != "" {
		if err := store.Runs().Fail(ctx, run.UUID, failMsg, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: recording failure: %s\n", err.Error())
		}
		logger.Warn("run failed", wlog.String("run_id", run.UUID.String()), wlog.String("reason", failMsg))
		return ExitAnalysisFailure
	}

	if err := store.Runs().Complete(ctx, run.UUID, "{}", time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: recording completion: %s\n", err.Error())
		return ExitInitError
	}

	logger.Info("run completed", wlog.String("run_id", run.UUID.String()))
	fmt.Printf("run %s completed\n", run.UUID)
	return ExitSuccess
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
