package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"iviweb/internal/config"
	"iviweb/internal/system"
)

var (
	configFile string
	envFile    string
	debug      bool
	settings   config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "iviweb",
	Short: "iviweb – serve markup pages to terminals",
	Long:  "iviweb renders a subset of HTML as interactive terminal scenes, served over telnet or SSH or viewed locally.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file (default <config dir>/iviweb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with IVIWEB_* overrides")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadSettings() error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	var err error
	if configFile != "" {
		settings, err = config.LoadFile(configFile)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&settings); err != nil {
		return err
	}
	system.SetLevel(settings.LogLevel)
	if debug {
		system.SetLevel("debug")
	}
	return nil
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
