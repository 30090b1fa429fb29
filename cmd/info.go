package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orf53975/sslyze/internal/plugin"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information, configuration and registered checks",
	Long: `Display sslyze configuration information including:
  - Results directory
  - Configuration file path
  - Current operator
  - Registered checks and protocol versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)

		resultsExists := "✗ (not created yet)"
		if _, err := os.Stat(appCtx.ResultsDir); err == nil {
			resultsExists = "✓ (exists)"
		}

		configFile, configExists := describeConfigFile()

		versions := make([]string, 0, len(tlsversion.All()))
		for _, v := range tlsversion.All() {
			versions = append(versions, v.String())
		}

		out := cmd.OutOrStdout()
		check := appCtx.Config.Check

		fmt.Fprintln(out, "sslyze System Information")
		fmt.Fprintln(out, "=========================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:          %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Operator:          %s\n", appCtx.Operator)
		fmt.Fprintf(out, "Version:           %s\n", Version)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Results Directory:    %s %s\n", appCtx.ResultsDir, resultsExists)
		fmt.Fprintf(out, "Configuration File:   %s %s\n", configFile, configExists)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Check Defaults:")
		fmt.Fprintf(out, "  Concurrency:        %d\n", check.Concurrency)
		fmt.Fprintf(out, "  Rate Limit:         %d/s\n", check.RateLimit)
		fmt.Fprintf(out, "  Timeout:            %ds (connect %ds)\n", check.TimeoutSecs, check.ConnectTimeoutSecs)
		fmt.Fprintf(out, "  Output Format:      %s\n", check.OutputFormat)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Protocol Versions:    %s\n", strings.Join(versions, ", "))
		fmt.Fprintln(out, "Registered Checks:")
		for _, reg := range plugin.Default.Registrations() {
			fmt.Fprintf(out, "  %-20s %s\n", reg.ID, reg.Title)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To change defaults, create ~/.sslyze.yaml with:")
		fmt.Fprintln(out, "  results_dir: /custom/path/to/results")
		fmt.Fprintln(out, "  defaults:")
		fmt.Fprintln(out, "    concurrency: 10")
		fmt.Fprintln(out, "    timeout_secs: 15")

		return nil
	},
}

func describeConfigFile() (string, string) {
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used, "✓ (exists)"
		}
		return used, "✗ (not found)"
	}

	configFile := "~/.sslyze.yaml"
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configFile, "✗ (using defaults)"
	}
	if _, err := os.Stat(filepath.Join(homeDir, ".sslyze.yaml")); err == nil {
		return configFile, "✓ (exists)"
	}
	return configFile, "✗ (using defaults)"
}
