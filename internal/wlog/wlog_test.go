package wlog_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/wlog"
)

func TestNoop_DoesNotPanic(t *testing.T) {
	l := wlog.Noop()
	l.Info("hello", wlog.String("k", "v"))
	l.Debug("hello")
	l.Warn("hello")
	l.Error("hello", wlog.Err(nil))
	if err := l.Sync(); err != nil {
		t.Fatalf("Sync() on noop logger returned error: %v", err)
	}
}

func TestWithDocument_ChainsWithoutPanic(t *testing.T) {
	l := wlog.Noop().WithDocument("doc-1")
	l.Info("analyzing")
}

func TestNew_BuildsDebugAndProductionLoggers(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := wlog.New(debug)
		if err != nil {
			t.Fatalf("New(%v) returned error: %v", debug, err)
		}
		l.Info("constructed")
		_ = l.Sync()
	}
}
