package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var verbose bool
var noColor bool

// AppContext carries per-invocation state from the root command to subcommands.
type AppContext struct {
	Logger     *zap.SugaredLogger
	Operator   string
	ResultsDir string
	Config     *CLIConfig
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:           "sslyze",
	Short:         "Probe TLS servers for protocol downgrade protection (TLS_FALLBACK_SCSV)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".sslyze")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("SSLYZE")
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}

		applyConfigDefaults(cmd)

		resultsDir, err := resolveResultsDir(viper.GetString("results_dir"))
		if err != nil {
			return fmt.Errorf("failed to resolve results directory: %w", err)
		}

		if noColor {
			color.NoColor = true
		}

		// init logger
		logger, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialise logger: %w", err)
		}

		appCtx := &AppContext{
			Logger:     logger.Sugar(),
			Operator:   cliConfig.Defaults.Operator,
			ResultsDir: resultsDir,
			Config:     cliConfig,
		}
		storeAppContext(cmd, appCtx)

		appCtx.Logger.Debugw("configuration loaded",
			"config_file", viper.ConfigFileUsed(),
			"operator", appCtx.Operator,
			"results_dir", resultsDir,
		)
		return nil
	},
}

// newLogger builds a production logger that only surfaces warnings, or a
// development logger at debug level when verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if ctx := cmd.Context(); ctx != nil {
		if appCtx, ok := ctx.Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	if globalAppContext != nil {
		return globalAppContext
	}
	return &AppContext{
		Logger:     zap.NewNop().Sugar(),
		ResultsDir: "./results",
		Config:     cliConfig,
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sslyze.yaml)")
	rootCmd.PersistentFlags().StringVarP(&cliConfig.Defaults.Operator, "operator", "o", cliConfig.Defaults.Operator, "operator name recorded in reports (or set via USER env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	// add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}
