// Package report renders a scan run as text, XML, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orf53975/sslyze/internal/checker"
	sharedErrors "github.com/orf53975/sslyze/internal/shared/errors"
	"github.com/orf53975/sslyze/internal/xmltree"
)

// Format selects an output representation.
type Format string

const (
	FormatText Format = "text"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatXML, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (expected text, xml, json or yaml)", sharedErrors.ErrInvalidOutputFormat, s)
}

// Metadata identifies one scan run.
type Metadata struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Tool         string    `json:"tool" yaml:"tool"`
	Version      string    `json:"version" yaml:"version"`
	Command      string    `json:"command" yaml:"command"`
	Operator     string    `json:"operator,omitempty" yaml:"operator,omitempty"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt  time.Time `json:"completed_at" yaml:"completed_at"`
	TotalTargets int       `json:"total_targets" yaml:"total_targets"`
}

// Duration is the wall-clock time of the run.
func (m Metadata) Duration() time.Duration {
	return m.CompletedAt.Sub(m.StartedAt)
}

// Document is a complete scan run.
type Document struct {
	Metadata Metadata              `json:"metadata" yaml:"metadata"`
	Results  []checker.CheckResult `json:"results" yaml:"results"`
}

// TextOptions tweaks text rendering.
type TextOptions struct {
	// Decorate, when set, is applied to every plugin output line.
	Decorate func(line string) string
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc Document, opts TextOptions) error {
	switch f {
	case FormatText:
		return WriteText(w, doc, opts)
	case FormatXML:
		return WriteXML(w, doc)
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatYAML:
		return WriteYAML(w, doc)
	}
	return fmt.Errorf("%w: %q", sharedErrors.ErrInvalidOutputFormat, string(f))
}

// WriteText renders one block per target.
func WriteText(w io.Writer, doc Document, opts TextOptions) error {
	decorate := opts.Decorate
	if decorate == nil {
		decorate = func(s string) string { return s }
	}

	var b strings.Builder
	for _, r := range doc.Results {
		heading := fmt.Sprintf(" SCAN RESULTS FOR %s", targetLabel(r))
		fmt.Fprintf(&b, "\n\n%s\n %s\n", heading, strings.Repeat("-", len(heading)-1))

		if r.Status != checker.StatusOK {
			fmt.Fprintf(&b, "\n%s\n", decorate(fmt.Sprintf("  * ERROR: %s", r.Error)))
			continue
		}
		b.WriteString("\n")
		for _, line := range r.Text {
			b.WriteString(decorate(line))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n\n SCAN COMPLETED IN %.2f S\n", doc.Metadata.Duration().Seconds())
	_, err := io.WriteString(w, b.String())
	return err
}

func targetLabel(r checker.CheckResult) string {
	if r.Host == "" {
		return r.Target
	}
	label := r.Host + ":" + strconv.Itoa(r.Port)
	if r.IP != "" {
		label += " - " + r.IP
	}
	return label
}

// BuildXML assembles the document tree: successful targets under <results>,
// failures under <invalidTargets>.
func BuildXML(doc Document) *xmltree.Element {
	root := xmltree.New("document",
		xmltree.Attr{Name: "title", Value: "SSLyze Scan Results"},
		xmltree.Attr{Name: "SSLyzeVersion", Value: doc.Metadata.Version},
		xmltree.Attr{Name: "runId", Value: doc.Metadata.RunID},
	)

	invalid := xmltree.New("invalidTargets")
	results := xmltree.New("results",
		xmltree.Attr{Name: "totalScanTime", Value: strconv.FormatFloat(doc.Metadata.Duration().Seconds(), 'f', 2, 64)},
	)

	for _, r := range doc.Results {
		if r.Status != checker.StatusOK {
			invalid.Append(&xmltree.Element{
				Tag:   "invalidTarget",
				Attrs: []xmltree.Attr{{Name: "error", Value: r.Error}},
				Text:  r.Target,
			})
			continue
		}

		target := xmltree.New("target",
			xmltree.Attr{Name: "host", Value: r.Host},
			xmltree.Attr{Name: "port", Value: strconv.Itoa(r.Port)},
			xmltree.Attr{Name: "tlsWrappedProtocol", Value: "https"},
		)
		if r.IP != "" {
			target.Set("ip", r.IP)
		}
		if r.HighestVersion != "" {
			target.Set("highestSslVersionSupported", r.HighestVersion)
		}
		results.Append(target.Append(r.XML))
	}

	return root.Append(invalid, results)
}

// WriteXML renders the document tree with an XML declaration.
func WriteXML(w io.Writer, doc Document) error {
	return xmltree.Write(w, BuildXML(doc))
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
