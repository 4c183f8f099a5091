package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dekarrin/wdlcore/internal/version"
	"github.com/dekarrin/wdlcore/internal/wlog"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
)

// cmdServe implements `wdlanalyze serve`: a thin HTTP surface exposing only
// a health check via chi routing. A full REST API over the analysis
// engine and persistence store is out of scope for this tool.
func cmdServe(cfg Config, args []string) int {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	listen := fs.StringP("listen", "l", "", "Address to listen on.")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	addr := cfg.listenAddr()
	if *listen != "" {
		addr = *listen
	}

	logger, err := wlog.New(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: initializing logger: %s\n", err.Error())
		return ExitInitError
	}
	defer logger.Sync()

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version.Current)
	})

	logger.Info("listening", wlog.String("addr", addr))
	fmt.Printf("wdlanalyze serve listening on %s\n", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	return ExitSuccess
}
