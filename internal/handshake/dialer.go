package handshake

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	ztls "github.com/zmap/zcrypto/tls"
	"go.uber.org/zap"

	consts "github.com/orf53975/sslyze/internal/shared/constants"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

// EngineDialer is the production Dialer. SSL 3.0 through TLS 1.2 run on the
// zcrypto engine, which can put arbitrary suite values such as
// TLS_FALLBACK_SCSV on the wire. TLS 1.3 runs on crypto/tls.
type EngineDialer struct {
	Timeout time.Duration
	Logger  *zap.Logger

	dialContext func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewEngineDialer returns a dialer whose TCP connect is bounded by timeout.
func NewEngineDialer(timeout time.Duration, logger *zap.Logger) *EngineDialer {
	if timeout <= 0 {
		timeout = consts.DefaultConnectTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	nd := &net.Dialer{Timeout: timeout}
	return &EngineDialer{
		Timeout:     timeout,
		Logger:      logger,
		dialContext: nd.DialContext,
	}
}

// Dial opens the TCP connection. The TLS handshake does not start until
// Connection.Handshake.
func (d *EngineDialer) Dial(ctx context.Context, server ServerInfo, version tlsversion.Version) (Connection, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: %s", sharedErrors.ErrUnsupportedVersion, version)
	}

	addr := server.Address()
	raw, err := d.dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Op: "dial", Err: err}
	}

	d.Logger.Debug("tcp connection established",
		zap.String("addr", addr),
		zap.String("version", version.String()),
	)

	if version == tlsversion.TLSv1_3 {
		return &stdConn{
			raw:     raw,
			addr:    addr,
			version: version,
			config: &tls.Config{
				MinVersion:         version.Wire(),
				MaxVersion:         version.Wire(),
				ServerName:         server.SNI(),
				InsecureSkipVerify: true, //nolint:gosec // certificate validation is not part of the probe
			},
		}, nil
	}

	return &zConn{
		raw:     raw,
		addr:    addr,
		version: version,
		config: &ztls.Config{
			MinVersion:         version.Wire(),
			MaxVersion:         version.Wire(),
			ServerName:         server.SNI(),
			InsecureSkipVerify: true,
			CipherSuites:       cipherSuitesFor(version),
			ForceSuites:        true,
		},
	}, nil
}

// cipherSuitesFor lists every non-TLS 1.3 suite crypto/tls knows that is
// valid at version. SSL 3.0 reuses the TLS 1.0 list.
func cipherSuitesFor(version tlsversion.Version) []uint16 {
	wire := version.Wire()
	if version == tlsversion.SSLv3 {
		wire = tlsversion.TLSv1.Wire()
	}

	var ids []uint16
	for _, suites := range [][]*tls.CipherSuite{tls.CipherSuites(), tls.InsecureCipherSuites()} {
		for _, suite := range suites {
			for _, v := range suite.SupportedVersions {
				if v == wire && v != tls.VersionTLS13 {
					ids = append(ids, suite.ID)
					break
				}
			}
		}
	}
	return ids
}

// runHandshake applies ctx's deadline to raw and aborts the handshake when
// ctx is cancelled.
func runHandshake(ctx context.Context, raw net.Conn, handshake func() error) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}

	done := make(chan error, 1)
	go func() {
		done <- handshake()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = raw.Close()
		<-done
		return ctx.Err()
	}
}

type zConn struct {
	raw     net.Conn
	addr    string
	version tlsversion.Version
	config  *ztls.Config
	conn    *ztls.Conn
}

func (c *zConn) EnableFallbackSCSV() error {
	if c.conn != nil {
		return fmt.Errorf("fallback signal must be enabled before the handshake")
	}
	for _, id := range c.config.CipherSuites {
		if id == consts.FallbackSCSV {
			return nil
		}
	}
	c.config.CipherSuites = append(c.config.CipherSuites, consts.FallbackSCSV)
	return nil
}

func (c *zConn) Handshake(ctx context.Context) error {
	c.conn = ztls.Client(c.raw, c.config)
	err := runHandshake(ctx, c.raw, c.conn.Handshake)
	return classifyHandshakeError(c.addr, c.version, err)
}

func (c *zConn) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return c.raw.Close()
}

type stdConn struct {
	raw     net.Conn
	addr    string
	version tlsversion.Version
	config  *tls.Config
	conn    *tls.Conn
}

func (c *stdConn) EnableFallbackSCSV() error {
	return fmt.Errorf("%w: TLS_FALLBACK_SCSV cannot be offered at %s", sharedErrors.ErrUnsupportedVersion, c.version)
}

func (c *stdConn) Handshake(ctx context.Context) error {
	c.conn = tls.Client(c.raw, c.config)
	err := runHandshake(ctx, c.raw, func() error {
		return c.conn.HandshakeContext(ctx)
	})
	return classifyHandshakeError(c.addr, c.version, err)
}

func (c *stdConn) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return c.raw.Close()
}
