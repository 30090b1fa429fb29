package handshake

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

// DetectHighestVersion returns the newest protocol version the server
// completes a plain handshake with, trying TLS 1.3 first. A failed TCP
// connect or a cancelled ctx aborts the walk; a rejected version moves on to
// the next one down.
func DetectHighestVersion(ctx context.Context, dialer Dialer, server ServerInfo, logger *zap.Logger) (tlsversion.Version, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	all := tlsversion.All()
	for i := len(all) - 1; i >= 0; i-- {
		version := all[i]

		conn, err := dialer.Dial(ctx, server, version)
		if err != nil {
			return 0, err
		}
		err = conn.Handshake(ctx)
		_ = conn.Close()

		if err == nil {
			logger.Debug("protocol version accepted",
				zap.String("addr", server.Address()),
				zap.String("version", version.String()),
			)
			return version, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, &ConnectionError{Addr: server.Address(), Op: "handshake", Err: ctxErr}
		}

		logger.Debug("protocol version rejected",
			zap.String("addr", server.Address()),
			zap.String("version", version.String()),
			zap.Error(err),
		)
	}

	return 0, fmt.Errorf("%w: %s accepted none of SSL 3.0 to TLS 1.3", sharedErrors.ErrUnsupportedVersion, server.Address())
}
