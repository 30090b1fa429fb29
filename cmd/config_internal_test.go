package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("timeout", 0, "")

	var applied int
	applyIntDefault(flags, "timeout", 15, func(v int) {
		applied = v
	})
	if applied != 15 {
		t.Fatalf("expected setter to receive 15, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("timeout", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "timeout", 20, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyBoolDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("telemetry", false, "")

	applied := false
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatal("expected setter to run with true")
	}

	if err := flags.Set("telemetry", "false"); err != nil {
		t.Fatalf("failed to set bool flag: %v", err)
	}
	applied = true
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatalf("setter should not change value when flag already set")
	}
}

func TestApplyStringDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")

	got := ""
	applyStringDefault(flags, "format", "json", func(v string) { got = v })
	if got != "json" {
		t.Fatalf("expected json, got %q", got)
	}

	if err := flags.Set("format", "xml"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	got = ""
	applyStringDefault(flags, "format", "yaml", func(v string) { got = v })
	if got != "" {
		t.Fatalf("setter should not run when flag overridden, got %q", got)
	}
}

func TestDetectOperatorFromEnv(t *testing.T) {
	t.Setenv("USER", "env-user")
	if got := detectOperatorFromEnv(); got != "env-user" {
		t.Fatalf("expected env-user, got %s", got)
	}

	t.Setenv("USER", "")
	t.Setenv("LOGNAME", "log-user")
	if got := detectOperatorFromEnv(); got != "log-user" {
		t.Fatalf("expected log-user, got %s", got)
	}
}

func TestNewCLIConfigDefaults(t *testing.T) {
	cfg := newCLIConfig()
	if cfg.Check.TimeoutSecs != defaultCheckTimeoutSeconds {
		t.Fatalf("unexpected timeout default: %d", cfg.Check.TimeoutSecs)
	}
	if cfg.Check.ConnectTimeoutSecs != defaultConnectTimeoutSeconds {
		t.Fatalf("unexpected connect timeout default: %d", cfg.Check.ConnectTimeoutSecs)
	}
	if cfg.Check.Concurrency != defaultConcurrency || cfg.Check.RateLimit != defaultRateLimit {
		t.Fatalf("unexpected runner defaults: %+v", cfg.Check)
	}
	if cfg.Check.OutputFormat != "text" {
		t.Fatalf("unexpected output format: %s", cfg.Check.OutputFormat)
	}
	if cfg.Check.TelemetryEnabled || cfg.Check.SaveResults || cfg.Check.FailOnVulnerable {
		t.Fatalf("expected opt-in features to be disabled by default")
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		*cliConfig = *newCLIConfig()
	})

	*cliConfig = *newCLIConfig()

	viper.Set("defaults.timeout_secs", 20)
	viper.Set("defaults.connect_timeout_secs", 3)
	viper.Set("defaults.concurrency", 12)
	viper.Set("defaults.rate_limit", 0)
	viper.Set("defaults.output_format", "xml")
	viper.Set("defaults.telemetry", true)
	viper.Set("defaults.operator", "cfg-operator")

	// Reset flag state to simulate untouched CLI flags.
	for _, name := range []string{"timeout", "connect-timeout", "concurrency", "rate", "format", "telemetry"} {
		if flag := checkCmd.PersistentFlags().Lookup(name); flag != nil {
			flag.Changed = false
		}
	}

	testCmd := &cobra.Command{Use: "root"}
	testCmd.Flags().String("operator", "", "")

	applyConfigDefaults(testCmd)

	check := cliConfig.Check
	if check.TimeoutSecs != 20 || check.ConnectTimeoutSecs != 3 {
		t.Fatalf("expected timeouts 20/3, got %d/%d", check.TimeoutSecs, check.ConnectTimeoutSecs)
	}
	if check.Concurrency != 12 || check.RateLimit != 0 {
		t.Fatalf("expected concurrency 12 and unlimited rate, got %d/%d", check.Concurrency, check.RateLimit)
	}
	if check.OutputFormat != "xml" {
		t.Fatalf("expected xml format, got %s", check.OutputFormat)
	}
	if !check.TelemetryEnabled {
		t.Fatalf("expected telemetry to be enabled")
	}
	if cliConfig.Defaults.Operator != "cfg-operator" {
		t.Fatalf("expected operator from config, got %s", cliConfig.Defaults.Operator)
	}
}

func TestApplyConfigDefaultsRespectsFlags(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		*cliConfig = *newCLIConfig()
		if flag := checkCmd.PersistentFlags().Lookup("concurrency"); flag != nil {
			flag.Changed = false
		}
	})

	*cliConfig = *newCLIConfig()
	viper.Set("defaults.concurrency", 40)

	if err := checkCmd.PersistentFlags().Set("concurrency", "2"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	applyConfigDefaults(&cobra.Command{Use: "root"})

	if cliConfig.Check.Concurrency != 2 {
		t.Fatalf("expected flag value 2 to win, got %d", cliConfig.Check.Concurrency)
	}
}
