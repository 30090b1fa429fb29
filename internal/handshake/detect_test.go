package handshake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

type scriptedConn struct {
	err    error
	closed *int
}

func (c *scriptedConn) EnableFallbackSCSV() error       { return nil }
func (c *scriptedConn) Handshake(context.Context) error { return c.err }
func (c *scriptedConn) Close() error {
	*c.closed++
	return nil
}

type scriptedDialer struct {
	accept  map[tlsversion.Version]bool
	dialErr error
	dialed  []tlsversion.Version
	closed  int
}

func (d *scriptedDialer) Dial(_ context.Context, server ServerInfo, v tlsversion.Version) (Connection, error) {
	d.dialed = append(d.dialed, v)
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if d.accept[v] {
		return &scriptedConn{closed: &d.closed}, nil
	}
	return &scriptedConn{
		err:    &AlertError{Addr: server.Address(), Version: v, Alert: AlertProtocolVersion},
		closed: &d.closed,
	}, nil
}

func TestDetectHighestVersion(t *testing.T) {
	dialer := &scriptedDialer{accept: map[tlsversion.Version]bool{
		tlsversion.TLSv1:   true,
		tlsversion.TLSv1_1: true,
	}}

	got, err := DetectHighestVersion(context.Background(), dialer, ServerInfo{Host: "h", Port: 443}, nil)
	require.NoError(t, err)
	assert.Equal(t, tlsversion.TLSv1_1, got)
	assert.Equal(t, []tlsversion.Version{tlsversion.TLSv1_3, tlsversion.TLSv1_2, tlsversion.TLSv1_1}, dialer.dialed)
	assert.Equal(t, 3, dialer.closed)
}

func TestDetectHighestVersionNoneAccepted(t *testing.T) {
	dialer := &scriptedDialer{}
	_, err := DetectHighestVersion(context.Background(), dialer, ServerInfo{Host: "h", Port: 443}, nil)
	assert.ErrorIs(t, err, sharedErrors.ErrUnsupportedVersion)
	assert.Len(t, dialer.dialed, len(tlsversion.All()))
}

func TestDetectHighestVersionDialFailure(t *testing.T) {
	dialer := &scriptedDialer{dialErr: &ConnectionError{Addr: "h:443", Op: "dial", Err: errors.New("refused")}}
	_, err := DetectHighestVersion(context.Background(), dialer, ServerInfo{Host: "h", Port: 443}, nil)
	assert.ErrorIs(t, err, sharedErrors.ErrConnection)
	assert.Len(t, dialer.dialed, 1)
}

func TestDetectHighestVersionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DetectHighestVersion(ctx, &scriptedDialer{}, ServerInfo{Host: "h", Port: 443}, nil)
	assert.ErrorIs(t, err, sharedErrors.ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)
}
