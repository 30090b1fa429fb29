package checker

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	consts "github.com/orf53975/sslyze/internal/shared/constants"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
)

// TargetInfo contains parsed target information
type TargetInfo struct {
	Original string // Original target string
	Host     string // Hostname (without protocol, path, port)
	Port     int    // Port, defaults to 443
	IP       string // Explicit address from the host{ip} form
}

// Address returns host:port, preferring the explicit IP.
func (t *TargetInfo) Address() string {
	host := t.IP
	if host == "" {
		host = t.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(t.Port))
}

// ParseTarget parses a target string into structured components.
// This handles various input formats:
//   - example.com
//   - example.com:8443
//   - https://example.com:443/path
//   - [2001:db8::1]:443 or 2001:db8::1
//   - example.com:443{192.0.2.10}
func ParseTarget(target string) (*TargetInfo, error) {
	raw := strings.TrimSpace(target)
	if raw == "" {
		return nil, sharedErrors.ErrEmptyTarget
	}

	info := &TargetInfo{Original: target, Port: consts.DefaultTLSPort}

	// host{ip}
	if open := strings.Index(raw, "{"); open >= 0 {
		if !strings.HasSuffix(raw, "}") {
			return nil, fmt.Errorf("%w: %q has an unterminated {ip}", sharedErrors.ErrInvalidTarget, target)
		}
		ip := raw[open+1 : len(raw)-1]
		if net.ParseIP(ip) == nil {
			return nil, fmt.Errorf("%w: %q is not an IP address", sharedErrors.ErrInvalidTarget, ip)
		}
		info.IP = ip
		raw = raw[:open]
	}

	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidTarget, err)
		}
		raw = parsed.Host
	} else if slash := strings.Index(raw, "/"); slash >= 0 {
		raw = raw[:slash]
	}

	host, port, err := splitHostPort(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", sharedErrors.ErrInvalidTarget, target, err)
	}
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", sharedErrors.ErrInvalidTarget, target)
	}
	info.Host = host
	if port != 0 {
		info.Port = port
	}

	return info, nil
}

// splitHostPort tolerates a missing port and bare IPv6 literals.
func splitHostPort(hostport string) (string, int, error) {
	if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
		return strings.Trim(hostport, "[]"), 0, nil
	}
	if !strings.Contains(hostport, ":") {
		return hostport, 0, nil
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
