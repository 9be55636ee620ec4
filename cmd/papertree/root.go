package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/home"
	"github.com/jackzampolin/papertree/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "papertree",
	Short: "Rebuild the section outline of a paper from layout regions",
	Long: `papertree turns the layout regions detected on each page of a scanned
paper into a navigable section tree with a catalog of figures and tables.

The pipeline includes:
  - Gap detection for text the layout model missed
  - Title grouping and cross-page paragraph merging
  - Section numbering repair and outline tree building
  - Caption binding for figures, tables, lists and algorithms`,
	Version:      version.GitRelease,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.papertree/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "papertree home directory (default: ~/.papertree)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	// Load .env and set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger writes structured logs to stderr so command output stays clean.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// openHome resolves the home directory. It is not created.
func openHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// loadConfig loads --config, falling back to the home directory's config
// file and then to the default search path.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	file := cfgFile
	if file == "" && h != nil && h.ConfigExists() {
		file = h.ConfigPath()
	}
	return config.NewManager(file)
}
