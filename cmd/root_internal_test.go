package cmd

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func TestStoreAndGetAppContext(t *testing.T) {
	original := globalAppContext
	defer func() {
		globalAppContext = original
	}()

	cmd := &cobra.Command{Use: "root"}
	appCtx := &AppContext{Operator: "tester"}

	storeAppContext(cmd, appCtx)

	got := getAppContext(cmd)
	if got != appCtx {
		t.Fatalf("expected stored app context to be returned")
	}
}

func TestGetAppContextFallsBackToGlobal(t *testing.T) {
	original := globalAppContext
	defer func() {
		globalAppContext = original
	}()

	globalAppContext = &AppContext{Operator: "global"}
	cmd := &cobra.Command{Use: "child"}
	cmd.SetContext(context.Background())

	if got := getAppContext(cmd); got.Operator != "global" {
		t.Fatalf("expected global app context, got %+v", got)
	}

	globalAppContext = nil
	got := getAppContext(cmd)
	if got.Logger == nil || got.Config == nil {
		t.Fatalf("expected usable default app context, got %+v", got)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(false)
	if err != nil {
		t.Fatalf("newLogger(false) returned error: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Fatal("expected production logger to drop info entries")
	}

	logger, err = newLogger(true)
	if err != nil {
		t.Fatalf("newLogger(true) returned error: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected verbose logger to emit debug entries")
	}
}
