package handshake

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	consts "github.com/orf53975/sslyze/internal/shared/constants"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

type clientHello struct {
	version      uint16
	cipherSuites []uint16
}

func (h clientHello) offers(id uint16) bool {
	for _, s := range h.cipherSuites {
		if s == id {
			return true
		}
	}
	return false
}

// startAlertServer accepts one connection, parses its ClientHello and writes
// back whatever respond returns. A nil response closes the connection.
func startAlertServer(t *testing.T, respond func(clientHello) []byte) (ServerInfo, <-chan clientHello) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	seen := make(chan clientHello, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		hello, err := readClientHello(conn)
		if err != nil {
			return
		}
		seen <- hello
		if resp := respond(hello); resp != nil {
			_, _ = conn.Write(resp)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return ServerInfo{Host: "127.0.0.1", Port: addr.Port}, seen
}

func readClientHello(r io.Reader) (clientHello, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return clientHello{}, err
	}
	body := make([]byte, binary.BigEndian.Uint16(header[3:5]))
	if _, err := io.ReadFull(r, body); err != nil {
		return clientHello{}, err
	}

	// handshake header (4) + client_version (2) + random (32)
	hello := clientHello{version: binary.BigEndian.Uint16(body[4:6])}
	pos := 38
	pos += 1 + int(body[pos])
	suitesLen := int(binary.BigEndian.Uint16(body[pos : pos+2]))
	pos += 2
	for i := 0; i < suitesLen; i += 2 {
		hello.cipherSuites = append(hello.cipherSuites, binary.BigEndian.Uint16(body[pos+i:pos+i+2]))
	}
	return hello, nil
}

func alertRecord(alert Alert) []byte {
	return []byte{0x15, 0x03, 0x01, 0x00, 0x02, 0x02, byte(alert)}
}

func TestEngineDialerSendsFallbackSCSV(t *testing.T) {
	server, seen := startAlertServer(t, func(h clientHello) []byte {
		if h.offers(consts.FallbackSCSV) && h.version < tlsversion.TLSv1_2.Wire() {
			return alertRecord(AlertInappropriateFallback)
		}
		return alertRecord(AlertHandshakeFailure)
	})

	dialer := NewEngineDialer(2*time.Second, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := dialer.Dial(ctx, server, tlsversion.TLSv1_1)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.EnableFallbackSCSV())

	err = conn.Handshake(ctx)
	var alertErr *AlertError
	require.ErrorAs(t, err, &alertErr)
	assert.Equal(t, AlertInappropriateFallback, alertErr.Alert)

	hello := <-seen
	assert.Equal(t, tlsversion.TLSv1_1.Wire(), hello.version)
	assert.True(t, hello.offers(consts.FallbackSCSV), "ClientHello must carry TLS_FALLBACK_SCSV")
}

func TestEngineDialerWithoutSignal(t *testing.T) {
	server, seen := startAlertServer(t, func(h clientHello) []byte {
		return alertRecord(AlertHandshakeFailure)
	})

	dialer := NewEngineDialer(2*time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := dialer.Dial(ctx, server, tlsversion.TLSv1_2)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Handshake(ctx)
	alert, ok := AlertFromError(err)
	require.True(t, ok, "expected alert, got %v", err)
	assert.Equal(t, AlertHandshakeFailure, alert)

	hello := <-seen
	assert.False(t, hello.offers(consts.FallbackSCSV))
	assert.NotEmpty(t, hello.cipherSuites)
}

func TestEngineDialerClosedConnection(t *testing.T) {
	server, _ := startAlertServer(t, func(clientHello) []byte { return nil })

	dialer := NewEngineDialer(2*time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := dialer.Dial(ctx, server, tlsversion.TLSv1_2)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Handshake(ctx)
	assert.ErrorIs(t, err, sharedErrors.ErrConnection)
}

func TestEngineDialerRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	dialer := NewEngineDialer(time.Second, nil)
	_, err = dialer.Dial(context.Background(), ServerInfo{Host: "127.0.0.1", Port: port}, tlsversion.TLSv1_2)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "dial", connErr.Op)
}

func TestEngineDialerRejectsInvalidVersion(t *testing.T) {
	dialer := NewEngineDialer(time.Second, nil)
	_, err := dialer.Dial(context.Background(), ServerInfo{Host: "127.0.0.1", Port: 1}, tlsversion.Version(99))
	assert.ErrorIs(t, err, sharedErrors.ErrUnsupportedVersion)
}

func TestCipherSuitesFor(t *testing.T) {
	for _, v := range []tlsversion.Version{tlsversion.SSLv3, tlsversion.TLSv1, tlsversion.TLSv1_2} {
		suites := cipherSuitesFor(v)
		assert.NotEmpty(t, suites, v.String())
		for _, id := range suites {
			assert.NotEqual(t, consts.FallbackSCSV, id)
			assert.False(t, id >= 0x1301 && id <= 0x1305, "TLS 1.3 suite 0x%04x offered at %s", id, v)
		}
	}
}
