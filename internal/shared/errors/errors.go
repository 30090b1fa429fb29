package errors

import "errors"

// Domain errors
var (
	// Probe errors
	ErrPrerequisiteNotMet         = errors.New("prerequisite not met")
	ErrUnexpectedHandshakeFailure = errors.New("unexpected handshake failure")
	ErrConnection                 = errors.New("connection error")
	ErrUnsupportedVersion         = errors.New("unsupported protocol version")

	// Plugin errors
	ErrUnknownPlugin   = errors.New("unknown plugin")
	ErrDuplicatePlugin = errors.New("plugin already registered")

	// Input errors
	ErrInvalidTarget       = errors.New("invalid target")
	ErrEmptyTarget         = errors.New("target cannot be empty")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)
