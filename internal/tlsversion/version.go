// Package tlsversion models the ordered set of SSL/TLS protocol versions the
// handshake engine can negotiate.
package tlsversion

import (
	"fmt"
	"strings"

	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
)

// Version is a position in the ordered protocol list, oldest first.
type Version int

const (
	SSLv3 Version = iota
	TLSv1
	TLSv1_1
	TLSv1_2
	TLSv1_3
)

// Min and Max bound the enumeration.
const (
	Min = SSLv3
	Max = TLSv1_3
)

type versionInfo struct {
	wire    uint16
	name    string
	aliases []string
}

var versions = [...]versionInfo{
	SSLv3:   {wire: 0x0300, name: "SSL 3.0", aliases: []string{"sslv3", "ssl3", "ssl3.0", "ssl30"}},
	TLSv1:   {wire: 0x0301, name: "TLS 1.0", aliases: []string{"tlsv1", "tls1", "tls1.0", "tlsv1.0", "tlsv1_0", "tls10"}},
	TLSv1_1: {wire: 0x0302, name: "TLS 1.1", aliases: []string{"tlsv1_1", "tls1.1", "tlsv1.1", "tls11"}},
	TLSv1_2: {wire: 0x0303, name: "TLS 1.2", aliases: []string{"tlsv1_2", "tls1.2", "tlsv1.2", "tls12"}},
	TLSv1_3: {wire: 0x0304, name: "TLS 1.3", aliases: []string{"tlsv1_3", "tls1.3", "tlsv1.3", "tls13"}},
}

// All returns every version from oldest to newest.
func All() []Version {
	out := make([]Version, 0, len(versions))
	for v := Min; v <= Max; v++ {
		out = append(out, v)
	}
	return out
}

// Valid reports whether v is part of the enumeration.
func (v Version) Valid() bool {
	return v >= Min && v <= Max
}

// Previous returns the version one step below v. ok is false for Min.
func (v Version) Previous() (prev Version, ok bool) {
	if !v.Valid() || v == Min {
		return v, false
	}
	return v - 1, true
}

// Wire returns the ProtocolVersion value sent in ClientHello/record headers.
func (v Version) Wire() uint16 {
	if !v.Valid() {
		return 0
	}
	return versions[v].wire
}

func (v Version) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Version(%d)", int(v))
	}
	return versions[v].name
}

// MarshalText lets versions appear by name in JSON/YAML output.
func (v Version) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", sharedErrors.ErrUnsupportedVersion, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText accepts anything Parse accepts.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse accepts spellings such as "tlsv1_2", "TLS 1.2", "tls1.2" or "sslv3".
func Parse(s string) (Version, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "")
	for v := Min; v <= Max; v++ {
		if key == strings.ToLower(strings.ReplaceAll(versions[v].name, " ", "")) {
			return v, nil
		}
		for _, alias := range versions[v].aliases {
			if key == alias {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedVersion, s)
}

// FromWire maps a wire ProtocolVersion to the enumeration.
func FromWire(wire uint16) (Version, error) {
	for v := Min; v <= Max; v++ {
		if versions[v].wire == wire {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: 0x%04x", sharedErrors.ErrUnsupportedVersion, wire)
}
