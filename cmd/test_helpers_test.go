package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/orf53975/sslyze/internal/handshake"
	consts "github.com/orf53975/sslyze/internal/shared/constants"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

// setupTestAppContext installs a minimal AppContext backed by a temp data dir.
func setupTestAppContext(t *testing.T) func() {
	t.Helper()

	original := globalAppContext

	dataDir := os.Getenv(dataDirEnvVar)
	if dataDir == "" {
		dataDir = t.TempDir()
		t.Setenv(dataDirEnvVar, dataDir)
	}

	resultsDir := filepath.Join(dataDir, "results")
	if err := os.MkdirAll(resultsDir, consts.DefaultDirPerm); err != nil {
		t.Fatalf("failed to create results directory: %v", err)
	}

	globalAppContext = &AppContext{
		Logger:     zap.NewNop().Sugar(),
		Operator:   "test-operator",
		ResultsDir: resultsDir,
		Config:     newCLIConfig(),
	}

	return func() {
		globalAppContext = original
	}
}

type stubConn struct{ err error }

func (c *stubConn) EnableFallbackSCSV() error       { return nil }
func (c *stubConn) Handshake(context.Context) error { return c.err }
func (c *stubConn) Close() error                    { return nil }

// stubDialer simulates a set of servers keyed by host. Every server accepts
// versions up to its highest one; protected servers reject a lower version
// with inappropriate_fallback. Unknown hosts refuse the connection.
type stubDialer struct {
	mu      sync.Mutex
	servers map[string]stubServer
	dials   int
}

type stubServer struct {
	highest   tlsversion.Version
	protected bool
}

func (d *stubDialer) Dial(_ context.Context, server handshake.ServerInfo, v tlsversion.Version) (handshake.Connection, error) {
	d.mu.Lock()
	d.dials++
	srv, ok := d.servers[server.Host]
	d.mu.Unlock()

	if !ok {
		return nil, &handshake.ConnectionError{Addr: server.Address(), Op: "dial", Err: os.ErrDeadlineExceeded}
	}

	switch {
	case v > srv.highest:
		return &stubConn{err: &handshake.AlertError{Addr: server.Address(), Version: v, Alert: handshake.AlertProtocolVersion}}, nil
	case v < srv.highest && srv.protected:
		return &stubConn{err: &handshake.AlertError{Addr: server.Address(), Version: v, Alert: handshake.AlertInappropriateFallback}}, nil
	default:
		return &stubConn{}, nil
	}
}
