package checker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orf53975/sslyze/internal/handshake"
	"github.com/orf53975/sslyze/internal/plugin"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

// PluginChecker runs one plugin per target.
type PluginChecker struct {
	Plugin plugin.Plugin
	Dialer handshake.Dialer
	// HighestVersion skips capability detection when set.
	HighestVersion *tlsversion.Version
	ServerName     string
	Logger         *zap.Logger
}

func (c *PluginChecker) Name() string {
	return "check " + c.Plugin.ID()
}

func (c *PluginChecker) Check(ctx context.Context, target string) (result CheckResult) {
	start := time.Now()
	result = CheckResult{
		Target:    target,
		Plugin:    c.Plugin.ID(),
		Title:     c.Plugin.Title(),
		CheckedAt: start.UTC(),
		Status:    StatusError,
	}
	defer func() {
		result.ResponseTime = float64(time.Since(start).Microseconds()) / 1000
	}()

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := ParseTarget(target)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Host = info.Host
	result.Port = info.Port
	result.IP = info.IP

	server := handshake.ServerInfo{
		Host:       info.Host,
		Port:       info.Port,
		IP:         info.IP,
		ServerName: c.ServerName,
	}

	if c.HighestVersion != nil {
		server.HighestVersion = *c.HighestVersion
	} else {
		highest, err := handshake.DetectHighestVersion(ctx, c.Dialer, server, logger)
		if err != nil {
			logger.Warn("capability detection failed", zap.String("target", target), zap.Error(err))
			result.Error = err.Error()
			return result
		}
		server.HighestVersion = highest
	}
	result.HighestVersion = server.HighestVersion.String()

	res, err := c.Plugin.Run(ctx, server)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = StatusOK
	result.Findings = res.Findings()
	result.Text = res.AsText()
	result.XML = res.AsXML()
	return result
}
