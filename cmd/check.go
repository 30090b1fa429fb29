package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orf53975/sslyze/internal/checker"
	"github.com/orf53975/sslyze/internal/handshake"
	"github.com/orf53975/sslyze/internal/plugin"
	"github.com/orf53975/sslyze/internal/plugin/fallback"
	"github.com/orf53975/sslyze/internal/report"
	consts "github.com/orf53975/sslyze/internal/shared/constants"
	"github.com/orf53975/sslyze/internal/tlsversion"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a registered TLS check against one or more servers",
	Long: `Run a registered TLS check against one or more servers.

Targets are host, host:port, https://host:port/ or host:port{ip}. Each target
is checked independently; a failure on one target is reported and does not
stop the others.`,
}

// checkPlan is everything runCheck needs, resolved from flags and config.
type checkPlan struct {
	Registration   plugin.Registration
	Targets        []string
	Format         report.Format
	HighestVersion *tlsversion.Version
}

func init() {
	if err := fallback.Register(plugin.Default); err != nil {
		panic(err)
	}
	for _, reg := range plugin.Default.Registrations() {
		checkCmd.AddCommand(newPluginCommand(reg))
	}
	addCheckFlags(checkCmd)
}

func addCheckFlags(cmd *cobra.Command) {
	cfg := &cliConfig.Check
	flags := cmd.PersistentFlags()

	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "number of servers probed in parallel")
	flags.IntVar(&cfg.RateLimit, "rate", cfg.RateLimit, "maximum probes started per second (0 = unlimited)")
	flags.IntVar(&cfg.TimeoutSecs, "timeout", cfg.TimeoutSecs, "per-server timeout in seconds, including version detection")
	flags.IntVar(&cfg.ConnectTimeoutSecs, "connect-timeout", cfg.ConnectTimeoutSecs, "TCP connect timeout in seconds")
	flags.StringVarP(&cfg.OutputFormat, "format", "f", cfg.OutputFormat, "stdout format: text, xml, json or yaml")
	flags.StringVar(&cfg.XMLOut, "xml-out", "", "also write the XML report to this file")
	flags.StringVar(&cfg.JSONOut, "json-out", "", "also write the JSON report to this file")
	flags.StringVar(&cfg.YAMLOut, "yaml-out", "", "also write the YAML report to this file")
	flags.StringVar(&cfg.TargetsFile, "targets-file", "", "read targets from a file, one per line")
	flags.StringVar(&cfg.TLSVersion, "tls-version", "", "skip version detection and assume this highest version (e.g. tlsv1_2)")
	flags.StringVar(&cfg.SNI, "sni", "", "server name to send instead of the target host")
	flags.BoolVar(&cfg.ProgressEnabled, "progress", false, "show a live progress line on stderr")
	flags.BoolVar(&cfg.TelemetryEnabled, "telemetry", false, "append a run summary to <results_dir>/telemetry.jsonl")
	flags.BoolVar(&cfg.SaveResults, "save", false, "store JSON and XML reports under <results_dir>/<run-id>/")
	flags.BoolVar(&cfg.FailOnVulnerable, "fail-on-vulnerable", false, "exit non-zero when a target is vulnerable or could not be checked")
}

func newPluginCommand(reg plugin.Registration) *cobra.Command {
	return &cobra.Command{
		Use:   reg.ID + " [targets...]",
		Short: reg.Description,
		Long:  fmt.Sprintf("%s\n\nResults are reported under %q.", reg.Description, reg.Title),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx := getAppContext(cmd)
			plan, err := buildCheckPlan(reg, args, appCtx.Config.Check)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCheck(ctx, appCtx, plan, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func buildCheckPlan(reg plugin.Registration, args []string, cfg CheckRuntimeConfig) (checkPlan, error) {
	plan := checkPlan{Registration: reg}

	targets, err := collectTargets(args, cfg.TargetsFile)
	if err != nil {
		return plan, err
	}
	if len(targets) == 0 {
		return plan, &NoTargetsError{Plugin: reg.ID}
	}
	plan.Targets = targets

	if plan.Format, err = report.ParseFormat(cfg.OutputFormat); err != nil {
		return plan, err
	}

	if cfg.TLSVersion != "" {
		v, err := tlsversion.Parse(cfg.TLSVersion)
		if err != nil {
			return plan, err
		}
		plan.HighestVersion = &v
	}

	return plan, nil
}

// collectTargets merges positional targets with a targets file, dropping
// blanks, comments and duplicates while keeping order.
func collectTargets(args []string, path string) ([]string, error) {
	var raw []string
	raw = append(raw, args...)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open targets file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			raw = append(raw, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read targets file: %w", err)
		}
	}

	seen := make(map[string]bool, len(raw))
	targets := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || strings.HasPrefix(t, "#") || seen[t] {
			continue
		}
		seen[t] = true
		targets = append(targets, t)
	}
	return targets, nil
}

func runCheck(ctx context.Context, appCtx *AppContext, plan checkPlan, stdout, stderr io.Writer) error {
	runtimeCfg := appCtx.Config.Check
	logger := appCtx.Logger.Desugar()

	dialer := handshake.NewEngineDialer(time.Duration(runtimeCfg.ConnectTimeoutSecs)*time.Second, logger)
	return runCheckWithDialer(ctx, appCtx, plan, dialer, stdout, stderr)
}

func runCheckWithDialer(ctx context.Context, appCtx *AppContext, plan checkPlan, dialer handshake.Dialer, stdout, stderr io.Writer) error {
	runtimeCfg := appCtx.Config.Check
	logger := appCtx.Logger.Desugar()

	p, err := plugin.Default.New(plan.Registration.ID, plugin.Dependencies{Dialer: dialer, Logger: logger})
	if err != nil {
		return err
	}

	chk := &checker.PluginChecker{
		Plugin:         p,
		Dialer:         dialer,
		HighestVersion: plan.HighestVersion,
		ServerName:     runtimeCfg.SNI,
		Logger:         logger,
	}
	runner := &checker.Runner{
		Concurrency: runtimeCfg.Concurrency,
		RateLimit:   runtimeCfg.RateLimit,
		Timeout:     time.Duration(runtimeCfg.TimeoutSecs) * time.Second,
		Logger:      logger,
	}

	var progress *progressPrinter
	if runtimeCfg.ProgressEnabled {
		progress = newProgressPrinter(stderr, len(plan.Targets), plan.Registration.ID)
		progress.Start()
	}

	auditFn := func(target string, result checker.CheckResult, duration float64) error {
		if progress != nil {
			progress.Increment(result.Status == checker.StatusOK, duration)
		}
		appCtx.Logger.Infow("target checked",
			"target", target,
			"plugin", plan.Registration.ID,
			"status", result.Status,
			"error", result.Error,
		)
		return nil
	}

	startedAt := time.Now().UTC()
	results := runner.RunChecks(ctx, plan.Targets, chk, auditFn)
	completedAt := time.Now().UTC()

	if progress != nil {
		progress.Stop()
	}

	doc := report.Document{
		Metadata: report.Metadata{
			RunID:        uuid.NewString(),
			Tool:         "sslyze",
			Version:      Version,
			Command:      chk.Name(),
			Operator:     appCtx.Operator,
			StartedAt:    startedAt,
			CompletedAt:  completedAt,
			TotalTargets: len(plan.Targets),
		},
		Results: results,
	}

	if err := report.Write(stdout, plan.Format, doc, report.TextOptions{Decorate: colorizeLine}); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := writeReportFiles(doc, runtimeCfg); err != nil {
		return err
	}

	if runtimeCfg.SaveResults {
		dir, err := saveRun(appCtx.ResultsDir, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "%s %s\n", colorInfo("Saved run:"), dir)
	}

	if runtimeCfg.TelemetryEnabled {
		if err := recordTelemetry(appCtx, doc.Metadata.RunID, chk.Name(), results, completedAt.Sub(startedAt)); err != nil {
			logger.Warn("failed to record telemetry", zap.Error(err))
		}
	}

	vulnerable, failed := summarizeFindings(results)
	if plan.Format == report.FormatText {
		fmt.Fprintf(stdout, " %s %d checked, %s, %s\n",
			colorInfo("Summary:"),
			len(results),
			colorWarn(fmt.Sprintf("%d vulnerable", vulnerable)),
			colorError(fmt.Sprintf("%d error", failed)),
		)
	}
	if runtimeCfg.FailOnVulnerable && (vulnerable > 0 || failed > 0) {
		return &VulnerableTargetsError{Vulnerable: vulnerable, Failed: failed}
	}
	return nil
}

// writeReportFiles writes every requested --*-out file in parallel.
func writeReportFiles(doc report.Document, cfg CheckRuntimeConfig) error {
	outputs := []struct {
		path   string
		format report.Format
	}{
		{cfg.XMLOut, report.FormatXML},
		{cfg.JSONOut, report.FormatJSON},
		{cfg.YAMLOut, report.FormatYAML},
	}

	var g errgroup.Group
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		out := out
		g.Go(func() error {
			if err := writeReportFile(out.path, out.format, doc); err != nil {
				return fmt.Errorf("failed to write %s report %s: %w", out.format, out.path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeReportFile(path string, format report.Format, doc report.Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, consts.DefaultDirPerm); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
	if err != nil {
		return err
	}
	if err := report.Write(f, format, doc, report.TextOptions{}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// summarizeFindings counts targets whose output carries a VULNERABLE verdict
// and targets that could not be checked at all.
func summarizeFindings(results []checker.CheckResult) (vulnerable, failed int) {
	for _, r := range results {
		if r.Status != checker.StatusOK {
			failed++
			continue
		}
		for _, line := range r.Text {
			if strings.Contains(line, "VULNERABLE") {
				vulnerable++
				break
			}
		}
	}
	return vulnerable, failed
}
