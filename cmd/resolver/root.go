package main

import (
	"fmt"
	"io"

	"github.com/Bidon15/lotteryresolver/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Global flag variables
var (
	cfgFile string
	verbose bool
)

// flagKeys maps persistent flags onto configuration keys. The private key is
// deliberately not a flag so it never shows up in the process list.
var flagKeys = map[string]string{
	"rpc-url":         config.KeyRPCURL,
	"lottery-address": config.KeyLotteryAddress,
	"head-mode":       config.KeyHeadMode,
	"poll-interval":   config.KeyPollInterval,
	"tx-timeout":      config.KeyTxTimeout,
	"metrics-addr":    config.KeyMetricsAddr,
	"log-level":       config.KeyLogLevel,
	"log-format":      config.KeyLogFormat,
}

// rootCmd is the base command for the CLI
var rootCmd *cobra.Command

// versionCmd prints version information
var versionCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "resolver",
		Short: "Resolver - commit-reveal bot for the lottery contract",
		Long: `Resolver watches a lottery contract block by block.

Once the current lottery's commit window has passed it commits the hash of a
fresh random value together with the committer stake, and on a later block it
reveals the value to resolve the lottery. The value is kept in memory only.

Configuration (in order of priority):
  1. Command-line flags (--rpc-url, --lottery-address, ...)
  2. Environment variables (RPC_URL, PRIVATE_KEY, LOTTERY_ADDRESS, RESOLVER_*)
  3. Config file (./resolver.yaml or ~/.resolver/resolver.yaml)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit hash, and build date of resolver",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "resolver %s\n", Version)
			if verbose {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", Commit)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", BuildDate)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./resolver.yaml)")
	flags.String("rpc-url", "", "Ethereum RPC endpoint (or RPC_URL env)")
	flags.String("lottery-address", "", "lottery contract address (or LOTTERY_ADDRESS env)")
	flags.String("head-mode", "", "new block source: auto, subscribe or poll (default auto)")
	flags.Duration("poll-interval", 0, "block polling interval (default 4s)")
	flags.Duration("tx-timeout", 0, "maximum wait for a transaction receipt (default 5m)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("log-level", "", "log level: debug, info, warn, error (default info)")
	flags.String("log-format", "", "log format: text or json (default text)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithArgs runs the root command with the provided arguments (for testing)
func ExecuteWithArgs(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// SetOutput sets the output writer for the root command (for testing)
func SetOutput(w io.Writer) {
	rootCmd.SetOut(w)
	rootCmd.SetErr(w)
}

// ResetFlags resets all global flags to their defaults (for testing)
func ResetFlags() {
	cfgFile = ""
	verbose = false
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	rootCmd.Flags().VisitAll(reset)
}

// newViper returns a viper instance with defaults, environment and the
// command's flags bound.
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	config.Prepare(v)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	return v
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(newViper(cmd), cfgFile)
}
