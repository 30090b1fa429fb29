package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/orf53975/sslyze/internal/report"
	consts "github.com/orf53975/sslyze/internal/shared/constants"
	"github.com/orf53975/sslyze/internal/shared/security"
)

const (
	savedJSONFilename = "report.json"
	savedXMLFilename  = "report.xml"
)

// saveRun stores the JSON and XML reports of a run under its own directory
// in the results directory and returns that directory.
func saveRun(resultsDir string, doc report.Document) (string, error) {
	dir, err := security.RunDir(resultsDir, doc.Metadata.RunID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, consts.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	files := []struct {
		name   string
		format report.Format
	}{
		{savedJSONFilename, report.FormatJSON},
		{savedXMLFilename, report.FormatXML},
	}
	for _, f := range files {
		if err := writeReportFile(filepath.Join(dir, f.name), f.format, doc); err != nil {
			return "", fmt.Errorf("save %s: %w", f.name, err)
		}
	}
	return dir, nil
}
