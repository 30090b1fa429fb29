package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultCheckTimeoutSeconds   = 30
	defaultConnectTimeoutSeconds = 5
	defaultConcurrency           = 5
	defaultRateLimit             = 10
	defaultOutputFormat          = "text"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Check    CheckRuntimeConfig
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	Operator string
}

// CheckRuntimeConfig consolidates flag-driven settings for check commands.
type CheckRuntimeConfig struct {
	Concurrency        int
	RateLimit          int
	TimeoutSecs        int
	ConnectTimeoutSecs int
	OutputFormat       string
	XMLOut             string
	JSONOut            string
	YAMLOut            string
	TargetsFile        string
	TLSVersion         string
	SNI                string
	ProgressEnabled    bool
	TelemetryEnabled   bool
	SaveResults        bool
	FailOnVulnerable   bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Defaults: DefaultValues{
			Operator: detectOperatorFromEnv(),
		},
		Check: CheckRuntimeConfig{
			Concurrency:        defaultConcurrency,
			RateLimit:          defaultRateLimit,
			TimeoutSecs:        defaultCheckTimeoutSeconds,
			ConnectTimeoutSecs: defaultConnectTimeoutSeconds,
			OutputFormat:       defaultOutputFormat,
		},
	}
}

func detectOperatorFromEnv() string {
	if env := os.Getenv("USER"); env != "" {
		return env
	}
	if env := os.Getenv("LOGNAME"); env != "" {
		return env
	}
	return ""
}

// applyConfigDefaults merges config file defaults into the runtime config when the user
// did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("defaults.operator") {
		if op := viper.GetString("defaults.operator"); op != "" {
			applyStringDefault(cmd.Flags(), "operator", op, func(v string) {
				cliConfig.Defaults.Operator = v
			})
		}
	}

	flags := checkCmd.PersistentFlags()

	if viper.IsSet("defaults.timeout_secs") {
		applyIntDefault(flags, "timeout", viper.GetInt("defaults.timeout_secs"), func(v int) {
			cliConfig.Check.TimeoutSecs = v
		})
	}

	if viper.IsSet("defaults.connect_timeout_secs") {
		applyIntDefault(flags, "connect-timeout", viper.GetInt("defaults.connect_timeout_secs"), func(v int) {
			cliConfig.Check.ConnectTimeoutSecs = v
		})
	}

	if viper.IsSet("defaults.concurrency") {
		applyIntDefault(flags, "concurrency", viper.GetInt("defaults.concurrency"), func(v int) {
			cliConfig.Check.Concurrency = v
		})
	}

	if viper.IsSet("defaults.rate_limit") {
		applyIntDefault(flags, "rate", viper.GetInt("defaults.rate_limit"), func(v int) {
			cliConfig.Check.RateLimit = v
		})
	}

	if viper.IsSet("defaults.output_format") {
		applyStringDefault(flags, "format", viper.GetString("defaults.output_format"), func(v string) {
			cliConfig.Check.OutputFormat = v
		})
	}

	if viper.IsSet("defaults.telemetry") {
		applyBoolDefault(flags, "telemetry", viper.GetBool("defaults.telemetry"), func(v bool) {
			cliConfig.Check.TelemetryEnabled = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
