package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "success", "pass":
		return colorSuccess(status)
	case "error", "fail", "failed":
		return colorError(status)
	case "vulnerable":
		return colorWarn(status)
	default:
		return status
	}
}

// colorizeLine highlights verdicts inside rendered plugin output.
func colorizeLine(line string) string {
	switch {
	case strings.Contains(line, "VULNERABLE"):
		return colorError(line)
	case strings.Contains(line, "OK - "):
		return colorSuccess(line)
	case strings.Contains(line, "* ERROR:"):
		return colorWarn(line)
	case strings.HasPrefix(line, "  * "):
		return colorInfo(line)
	default:
		return line
	}
}
