package fallback

import (
	"github.com/orf53975/sslyze/internal/handshake"
	"github.com/orf53975/sslyze/internal/plugin"
	"github.com/orf53975/sslyze/internal/tlsversion"
	"github.com/orf53975/sslyze/internal/xmltree"
)

const (
	fieldLabel     = "TLS_FALLBACK_SCSV:"
	statusOK       = "OK - Supported"
	statusVuln     = "VULNERABLE - Signaling cipher suite not supported"
	xmlFindingTag  = "tlsFallbackScsv"
	xmlSupportAttr = "isSupported"
)

// Result is the immutable outcome of one probe.
type Result struct {
	server               handshake.ServerInfo
	downgradeVersion     tlsversion.Version
	supportsFallbackSCSV bool
}

func NewResult(server handshake.ServerInfo, downgrade tlsversion.Version, supported bool) *Result {
	return &Result{
		server:               server,
		downgradeVersion:     downgrade,
		supportsFallbackSCSV: supported,
	}
}

func (r *Result) Command() string                      { return CommandName }
func (r *Result) Title() string                        { return CommandTitle }
func (r *Result) Server() handshake.ServerInfo         { return r.server }
func (r *Result) DowngradeVersion() tlsversion.Version { return r.downgradeVersion }

// SupportsFallbackSCSV is true when the server rejected the downgrade.
func (r *Result) SupportsFallbackSCSV() bool {
	return r.supportsFallbackSCSV
}

func (r *Result) AsText() []string {
	status := statusVuln
	if r.supportsFallbackSCSV {
		status = statusOK
	}
	return []string{
		plugin.TitleFormat(CommandTitle),
		plugin.FieldFormat(fieldLabel, status),
	}
}

func (r *Result) AsXML() *xmltree.Element {
	root := xmltree.New(CommandName, xmltree.Attr{Name: "title", Value: CommandTitle})
	return root.Append(xmltree.New(xmlFindingTag,
		xmltree.Attr{Name: xmlSupportAttr, Value: plugin.BoolLiteral(r.supportsFallbackSCSV)},
	))
}

func (r *Result) Findings() map[string]any {
	return map[string]any{
		"supports_fallback_scsv": r.supportsFallbackSCSV,
		"highest_version":        r.server.HighestVersion.String(),
		"downgrade_version":      r.downgradeVersion.String(),
	}
}
