package main

import (
	"fmt"

	"github.com/Bidon15/lotteryresolver/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect resolver configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Print the configuration the resolver would run with, as YAML, with the
private key masked. Exits non-zero when the configuration is invalid.`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	v := newViper(cmd)
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}
	cfg := config.FromViper(v)

	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, _ = cmd.OutOrStdout().Write(out)

	if file := v.ConfigFileUsed(); file != "" && verbose {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", file)
	}

	return cfg.Validate()
}
