package handshake

import (
	"fmt"

	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
)

// ConnectionError wraps transport failures: refused, reset, closed, timed out.
type ConnectionError struct {
	Addr string
	Op   string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is lets callers match every transport failure with sharedErrors.ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	return target == sharedErrors.ErrConnection
}
