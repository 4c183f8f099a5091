package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/engine"
	"github.com/dekarrin/wdlcore/internal/scope"
)

// cmdInspect implements `wdlanalyze inspect <root.wdl>`: it analyzes root,
// then opens an interactive GNU-readline shell for querying the resulting
// scope (list tasks, look up a bound name's type). It wraps a single
// *readline.Instance built once and torn down with Close when the
// session ends.
func cmdInspect(cfg Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wdlanalyze inspect <root.wdl>")
		return ExitUsageError
	}
	root := args[0]

	eng := engine.New(engine.WithWorkers(cfg.workers()))
	ctx := context.Background()
	eng.Start(ctx)
	defer eng.Close()

	results, err := eng.Analyze(ctx, []docgraph.DocumentID{docgraph.DocumentID(root)}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitAnalysisFailure
	}
	if len(results) == 0 || results[0].Scope == nil {
		fmt.Fprintln(os.Stderr, "ERROR: analysis produced no scope for root document")
		return ExitAnalysisFailure
	}
	doc := results[0].Scope

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "wdl> ",
		HistoryFile: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: starting interactive shell: %s\n", err.Error())
		return ExitInitError
	}
	defer rl.Close()

	fmt.Println("Inspecting", root, "- type 'help' for commands, 'quit' to exit.")
	runInspectLoop(rl, doc)
	return ExitSuccess
}

func runInspectLoop(rl *readline.Instance, doc *scope.Document) {
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			if err != io.EOF {
				break
			}
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			fmt.Println("Commands: tasks | workflow | lookup <task> <name> | quit")
		case "tasks":
			for name := range doc.Tasks {
				fmt.Println(" ", name)
			}
		case "workflow":
			if doc.Workflow == nil {
				fmt.Println("  (no workflow defined)")
				continue
			}
			fmt.Println(" ", doc.Workflow.Name)
		case "lookup":
			if len(fields) != 3 {
				fmt.Println("usage: lookup <task> <name>")
				continue
			}
			task, ok := doc.Tasks[fields[1]]
			if !ok {
				fmt.Printf("no such task %q\n", fields[1])
				continue
			}
			sn, ok := task.Scope.Lookup(fields[2])
			if !ok {
				fmt.Printf("%q not bound in task %q\n", fields[2], fields[1])
				continue
			}
			fmt.Printf("%s: context=%s implicit=%v\n", sn.Name, sn.Context, sn.IsImplicit)
		default:
			fmt.Printf("unknown command %q; type 'help'\n", fields[0])
		}
	}
}
