package handshake

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"reflect"
	"strings"
	"syscall"

	"github.com/orf53975/sslyze/internal/tlsversion"
)

// remoteErrorOp is the net.OpError Op TLS engines use for alerts they received.
const remoteErrorOp = "remote error"

// classifyHandshakeError turns an engine error into *AlertError or
// *ConnectionError where it can; other errors pass through.
func classifyHandshakeError(addr string, version tlsversion.Version, err error) error {
	if err == nil {
		return nil
	}
	if alert, ok := AlertFromError(err); ok {
		return &AlertError{Addr: addr, Version: version, Alert: alert, Err: err}
	}
	if isTransportFailure(err) {
		return &ConnectionError{Addr: addr, Op: "handshake", Err: err}
	}
	return err
}

// AlertFromError extracts the alert code the peer sent, if err carries one.
func AlertFromError(err error) (Alert, bool) {
	var alertErr *AlertError
	if errors.As(err, &alertErr) {
		return alertErr.Alert, true
	}

	var stdAlert tls.AlertError
	if errors.As(err, &stdAlert) {
		return Alert(stdAlert), true
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) || opErr.Op != remoteErrorOp || opErr.Err == nil {
		return 0, false
	}
	if code, ok := alertCode(opErr.Err); ok {
		return code, true
	}
	return alertFromText(opErr.Err.Error())
}

// alertCode reads the code out of an engine's unexported uint8 alert type.
func alertCode(err error) (Alert, bool) {
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Uint8 {
		return 0, false
	}
	return Alert(v.Uint()), true
}

// alertFromText is the last resort for engines that only expose alert
// wording. The longest matching description wins.
func alertFromText(text string) (Alert, bool) {
	text = strings.ToLower(text)
	var (
		best    Alert
		bestLen int
	)
	for code, desc := range alertText {
		desc = strings.ToLower(desc)
		if len(desc) > bestLen && strings.Contains(text, desc) {
			best, bestLen = code, len(desc)
		}
	}
	return best, bestLen > 0
}

func isTransportFailure(err error) bool {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
