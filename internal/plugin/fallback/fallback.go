// Package fallback checks whether a server honours TLS_FALLBACK_SCSV
// (RFC 7507): a client that retries at a lower protocol version marks the
// retry, and a server that supports something newer must refuse it with an
// inappropriate_fallback alert.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orf53975/sslyze/internal/handshake"
	"github.com/orf53975/sslyze/internal/plugin"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
)

const (
	// CommandName is the stable plugin ID.
	CommandName = "fallback"
	// CommandTitle heads text and XML output.
	CommandTitle = "Downgrade Attacks"

	description = "Checks support for the TLS_FALLBACK_SCSV cipher suite to prevent downgrade attacks."
)

// Registration wires the probe into a plugin registry.
var Registration = plugin.Registration{
	ID:          CommandName,
	Title:       CommandTitle,
	Description: description,
	New: func(deps plugin.Dependencies) plugin.Plugin {
		return New(deps.Dialer, deps.Logger)
	},
}

// Register adds the probe to r.
func Register(r *plugin.Registry) error {
	return r.Register(Registration)
}

// Probe runs one downgraded handshake per invocation. It holds no per-run
// state, so one Probe may serve concurrent callers.
type Probe struct {
	dialer handshake.Dialer
	logger *zap.Logger
}

func New(dialer handshake.Dialer, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{dialer: dialer, logger: logger}
}

func (p *Probe) ID() string       { return CommandName }
func (p *Probe) Title() string    { return CommandTitle }
func (p *Probe) Describe() string { return description }

// Run implements plugin.Plugin.
func (p *Probe) Run(ctx context.Context, server handshake.ServerInfo) (plugin.Result, error) {
	res, err := p.Probe(ctx, server)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Probe connects one version below server.HighestVersion with the fallback
// signal on. A clean handshake means the server is vulnerable; an
// inappropriate_fallback alert means it is protected; anything else is an
// error and yields no Result.
func (p *Probe) Probe(ctx context.Context, server handshake.ServerInfo) (*Result, error) {
	downgrade, ok := server.HighestVersion.Previous()
	if !ok {
		return nil, fmt.Errorf("%w: server only supports %s; no downgrade attacks are possible",
			sharedErrors.ErrPrerequisiteNotMet, server.HighestVersion)
	}

	log := p.logger.With(
		zap.String("host", server.Host),
		zap.Int("port", server.Port),
		zap.String("highest_version", server.HighestVersion.String()),
		zap.String("version", downgrade.String()),
	)

	conn, err := p.dialer.Dial(ctx, server, downgrade)
	if err != nil {
		log.Warn("fallback probe could not connect", zap.Error(err))
		return nil, asFailure(err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Debug("closing probe connection", zap.Error(cerr))
		}
	}()

	if err := conn.EnableFallbackSCSV(); err != nil {
		return nil, fmt.Errorf("%w: %w", sharedErrors.ErrUnexpectedHandshakeFailure, err)
	}

	supported, err := classifyOutcome(conn.Handshake(ctx))
	if err != nil {
		log.Warn("fallback probe failed", zap.Error(err))
		return nil, err
	}

	log.Debug("fallback probe complete", zap.Bool("supports_fallback_scsv", supported))
	return NewResult(server, downgrade, supported), nil
}

// classifyOutcome maps the downgraded handshake onto the finding. Only the
// inappropriate_fallback alert counts as protection.
func classifyOutcome(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if alert, ok := handshake.AlertFromError(err); ok {
		if alert == handshake.AlertInappropriateFallback {
			return true, nil
		}
		return false, fmt.Errorf("%w: %w", sharedErrors.ErrUnexpectedHandshakeFailure, err)
	}
	return false, asFailure(err)
}

func asFailure(err error) error {
	switch {
	case errors.Is(err, sharedErrors.ErrConnection):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", sharedErrors.ErrConnection, err)
	default:
		return fmt.Errorf("%w: %w", sharedErrors.ErrUnexpectedHandshakeFailure, err)
	}
}
