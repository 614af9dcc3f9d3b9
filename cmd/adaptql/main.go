// Package main contains the cli implementation of the tool. It uses the
// cobra package for cli tool implementation, the same shape the teacher's
// own cmd/smf uses: one root command, one subcommand per operation, flags
// bound straight to a per-command options struct.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adaptql/internal/config"

	_ "adaptql/internal/ir/asmbackend"
	_ "adaptql/internal/ir/llvmbackend"
)

// globalFlags holds the options every subcommand shares: which fixture to
// load tables from, which options file (if any) configures the adaptive
// regions, and how verbosely to log.
type globalFlags struct {
	fixture    string
	configFile string
	format     string
	verbose    bool
	explain    bool
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "adaptql",
		Short: "Adaptive, compiled SQL execution engine",
	}
	rootCmd.PersistentFlags().StringVar(&flags.fixture, "fixture", "", "Path to a TOML table fixture file (required)")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a TOML engine options file (defaults to config.Default())")
	rootCmd.PersistentFlags().StringVarP(&flags.format, "format", "f", "human", "Output format: human, json, or sql")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(operatorGroup("run", flags, false))
	rootCmd.AddCommand(operatorGroup("explain", flags, true))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the options file named by --config, or config.Default()
// if none was given.
func (g *globalFlags) loadConfig() (config.Config, error) {
	if g.configFile == "" {
		return config.Default(), nil
	}
	return config.LoadFile(g.configFile)
}

// newLogger builds the zap.Logger threaded through every query's
// executor.QueryState, mirroring the teacher's own "plain fmt output by
// default, structured detail only when asked" split: --verbose switches
// from a no-op logger to zap's development config.
func (g *globalFlags) newLogger() (*zap.Logger, error) {
	if !g.verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("adaptql: build logger: %w", err)
	}
	return logger, nil
}

func (g *globalFlags) requireFixture() error {
	if g.fixture == "" {
		return fmt.Errorf("adaptql: --fixture is required")
	}
	return nil
}
