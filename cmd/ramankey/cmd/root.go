// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/RamanKey/pkg/config"
)

var (
	// Persistent flags
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ramankey",
	Short: "RamanKey - Raman peak matching and polymer classification",
	Long: `RamanKey matches the detected Raman peaks of measured samples against a
reference table of characteristic peak positions per polymer type, and
classifies every sample as the type with the highest match percentage.

Batches are read from CSV or XLSX peak listings, and results can be written
to:
- Excel workbooks with highlighted cells (one worksheet per batch)
- SQLite results databases (one run per invocation)
- The terminal`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ramankey/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(referenceCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the stderr text logger for the requested level
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level '%s', must be debug, info, warn or error", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// loadConfig reads --config, or the default path when it exists
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.LoadOptional(config.DefaultConfigPath())
}

func stderrLogger() (*slog.Logger, error) {
	return newLogger(os.Stderr, logLevel)
}
