package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/engine"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wlog"
	"github.com/spf13/pflag"
)

// diagnosticMessageWidth is the column width long diagnostic messages are
// wrapped to via rosed.Edit(...).Wrap(...).
const diagnosticMessageWidth = 100

// cmdAnalyze implements `wdlanalyze analyze [-V|--verbose] <roots...>`: it
// runs the analysis engine over the given root documents and prints every
// diagnostic produced, one per line, in rustc/clang-style
// "severity: message" form. With --verbose, the logger runs at debug level
// and a per-document timing summary is printed after the diagnostics.
func cmdAnalyze(cfg Config, args []string) int {
	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	verbose := fs.BoolP("verbose", "V", false, "Log at debug level and print a per-document timing summary.")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wdlanalyze analyze [-V|--verbose] <root.wdl> [root2.wdl ...]")
		return ExitUsageError
	}

	logger, err := wlog.New(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: initializing logger: %s\n", err.Error())
		return ExitInitError
	}
	defer logger.Sync()

	roots := make([]docgraph.DocumentID, len(rest))
	for i, a := range rest {
		roots[i] = docgraph.DocumentID(a)
	}

	eng := engine.New(engine.WithWorkers(cfg.workers()), engine.WithLogger(logger))
	ctx := context.Background()
	eng.Start(ctx)
	defer eng.Close()

	logger.Info("starting analysis", wlog.Int("root_count", len(roots)))

	results, err := eng.Analyze(ctx, roots, func(p engine.Progress) {
		logger.Debug("progress",
			wlog.Int("parsed", p.Parsed),
			wlog.Int("total_known", p.TotalKnown),
			wlog.Int("analyzed", p.Analyzed),
			wlog.Int("total_to_analyze", p.TotalToAnalyze),
		)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitAnalysisFailure
	}

	hasErrors := false
	counts := make(map[docgraph.DocumentID][2]int) // [errors, warnings+notes]
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.ID, r.Err.Error())
			hasErrors = true
			continue
		}
		c := counts[r.ID]
		for _, diag := range r.Diagnostics {
			printDiagnostic(r.ID, diag)
			if diag.Severity == wdlerrors.Error {
				hasErrors = true
				c[0]++
			} else {
				c[1]++
			}
		}
		counts[r.ID] = c
	}

	printSummaryTable(results, counts, *verbose)

	if hasErrors {
		return ExitAnalysisFailure
	}
	return ExitSuccess
}

func printDiagnostic(id docgraph.DocumentID, d wdlerrors.Diagnostic) {
	ruleSuffix := ""
	if d.RuleID != "" {
		ruleSuffix = fmt.Sprintf(" [%s]", d.RuleID)
	}
	msg := rosed.Edit(d.Message).Wrap(diagnosticMessageWidth).String()
	p := d.Primary()
	fmt.Printf("%s:%d: %s: %s%s\n", id, p.Start, d.Severity, msg, ruleSuffix)
}

// printSummaryTable renders a per-document error/warning count table using
// rosed.InsertTableOpts. When verbose is set, a duration column carrying
// each document's analyze-step wall-clock time is included too.
func printSummaryTable(results []engine.AnalysisResult, counts map[docgraph.DocumentID][2]int, verbose bool) {
	if len(results) == 0 {
		return
	}
	header := []string{"document", "errors", "warnings"}
	if verbose {
		header = append(header, "duration")
	}
	data := [][]string{header}
	for _, r := range results {
		c := counts[r.ID]
		row := []string{string(r.ID), fmt.Sprintf("%d", c[0]), fmt.Sprintf("%d", c[1])}
		if verbose {
			row = append(row, r.Duration.String())
		}
		data = append(data, row)
	}
	summary := rosed.Edit("").
		InsertTableOpts(0, data, 100, rosed.Options{TableBorders: true}).
		String()
	fmt.Println(summary)
}
