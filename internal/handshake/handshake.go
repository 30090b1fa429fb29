// Package handshake is the boundary between probes and the TLS engine.
//
// Probes never talk to a TLS library directly. They ask a Dialer for a
// Connection pinned to one protocol version, optionally turn on the
// TLS_FALLBACK_SCSV signal, run the handshake and close the connection.
// Handshake failures come back as typed values:
//
//   - *AlertError when the server answered with a TLS alert record
//   - *ConnectionError when the transport failed (refused, reset, timeout)
//
// Anything else is returned unchanged.
package handshake

import (
	"context"
	"net"
	"strconv"

	"github.com/orf53975/sslyze/internal/tlsversion"
)

// ServerInfo describes one server to probe. HighestVersion is the newest
// protocol the server is known to accept.
type ServerInfo struct {
	Host           string             `json:"host" yaml:"host"`
	Port           int                `json:"port" yaml:"port"`
	IP             string             `json:"ip,omitempty" yaml:"ip,omitempty"`
	ServerName     string             `json:"server_name,omitempty" yaml:"server_name,omitempty"`
	HighestVersion tlsversion.Version `json:"highest_version" yaml:"highest_version"`
}

// Address is the host:port to connect to; an explicit IP wins over Host.
func (s ServerInfo) Address() string {
	host := s.IP
	if host == "" {
		host = s.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// SNI returns the name sent in the server_name extension. IP literals are
// never sent.
func (s ServerInfo) SNI() string {
	name := s.ServerName
	if name == "" {
		name = s.Host
	}
	if net.ParseIP(name) != nil {
		return ""
	}
	return name
}

// Connection is a TCP connection that has not yet run its TLS handshake.
type Connection interface {
	// EnableFallbackSCSV adds TLS_FALLBACK_SCSV to the offered cipher suites.
	// It must be called before Handshake.
	EnableFallbackSCSV() error
	Handshake(ctx context.Context) error
	Close() error
}

// Dialer opens connections pinned to exactly one protocol version.
type Dialer interface {
	Dial(ctx context.Context, server ServerInfo, version tlsversion.Version) (Connection, error)
}
