package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultTLSPort is used when a target omits its port.
	DefaultTLSPort = 443
	// DefaultConnectTimeout bounds one TCP connect plus handshake.
	DefaultConnectTimeout = 5 * time.Second
	// FallbackSCSV is the TLS_FALLBACK_SCSV signaling cipher suite value (RFC 7507).
	FallbackSCSV uint16 = 0x5600
)
