/*
Wdlanalyze is the command-line front end for the WDL toolchain core: it
loads WDL documents, runs the analysis engine over them, and records
executions in the persistence store. Business logic lives in internal/
and server/; this package is just the subcommand dispatcher.

Usage:

	wdlanalyze analyze [-V|--verbose] <root.wdl> [root2.wdl ...]
	wdlanalyze run <source.wdl> <target> [override ...]
	wdlanalyze inspect <root.wdl>
	wdlanalyze serve

The flags are:

	-v, --version
		Print the current toolchain version and exit.

	--config FILE
		Use the given TOML config file instead of ./wdlanalyze.toml.

The analyze subcommand additionally accepts -V/--verbose, which raises
the logger to debug level and appends a per-document duration column to
the end-of-run summary table.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/wdlcore/internal/version"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitAnalysisFailure
	ExitInitError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Print the current toolchain version and exit.")
	flagConfig  = pflag.String("config", "", "Path to a wdlanalyze.toml config file.")
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	pflag.CommandLine.Parse(args)

	if *flagVersion {
		fmt.Printf("wdlanalyze %s\n", version.Current)
		return ExitSuccess
	}

	rest := pflag.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wdlanalyze <analyze|run|inspect|serve> [args...]\nDo -h for help.")
		return ExitUsageError
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading config: %s\n", err.Error())
		return ExitInitError
	}

	switch rest[0] {
	case "analyze":
		return cmdAnalyze(cfg, rest[1:])
	case "run":
		return cmdRun(cfg, rest[1:])
	case "serve":
		return cmdServe(cfg, rest[1:])
	case "inspect":
		return cmdInspect(cfg, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand %q\nDo -h for help.\n", rest[0])
		return ExitUsageError
	}
}
