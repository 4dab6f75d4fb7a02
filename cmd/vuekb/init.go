package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/logger"
	"github.com/vuekb/vuekb/pkg/presenter"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up vuekb configuration",
	Long:  `Write a default configuration file to ~/.vuekb/config.yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		override, _ := cmd.Flags().GetBool("override")

		configDir := filepath.Join(os.Getenv("HOME"), ".vuekb")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			presenter.Error(err, "Failed to create config directory")
			logger.G(ctx).WithError(err).WithField("config_dir", configDir).Error("Config directory creation failed")
			return
		}

		configFile := filepath.Join(configDir, "config.yaml")

		if !override {
			if _, err := os.Stat(configFile); err == nil {
				presenter.Warning(fmt.Sprintf("Configuration file already exists at %s", configFile))
				presenter.Info("To overwrite, use the --override flag or remove the file and run 'vuekb init' again")
				return
			}
		}

		configContent := `log_level: info
log_format: text
tracing:
    enabled: false
    sampler: ratio
    ratio: 1
`

		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			presenter.Error(err, "Failed to write config file")
			logger.G(ctx).WithError(err).WithField("config_file", configFile).Error("Config file write failed")
			return
		}

		if override {
			presenter.Success(fmt.Sprintf("Configuration overwritten at %s", configFile))
		} else {
			presenter.Success(fmt.Sprintf("Configuration saved to %s", configFile))
		}

		presenter.Separator()
		presenter.Section("Getting Started")
		presenter.Info("  vuekb list                       # List all reference articles")
		presenter.Info("  vuekb show <slug>                # Print one article")
		presenter.Info("  vuekb search \"your query\"        # Full-text search")
		presenter.Info("  vuekb serve                      # Browse the corpus in your browser")
		presenter.Info("  vuekb --help                     # Show all available commands")
	},
}

func init() {
	initCmd.Flags().Bool("override", false, "Overwrite existing configuration file if it exists")
	rootCmd.AddCommand(initCmd)
}
