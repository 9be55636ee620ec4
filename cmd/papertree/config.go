package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the papertree config file",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ~/.papertree/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		path := cfgFile
		if path == "" {
			path = h.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// SettingView is one key with its effective and default values.
type SettingView struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Default     any    `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

var configShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show effective settings, including env overrides",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}

		entries := config.DefaultEntries()
		if len(args) == 1 {
			e, err := config.GetDefault(args[0])
			if err != nil {
				return err
			}
			entries = []config.Entry{*e}
		}

		out := make([]SettingView, 0, len(entries))
		for _, e := range entries {
			out = append(out, SettingView{
				Key:         e.Key,
				Value:       mgr.Value(e.Key),
				Default:     e.Value,
				Description: e.Description,
			})
		}
		return api.Output(out)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
