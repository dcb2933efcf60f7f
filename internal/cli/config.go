package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfg "iviweb/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configInitCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing settings file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialise the settings file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cfg.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		p, err := cfg.Path()
		if err != nil {
			return err
		}
		if _, err := os.Stat(p); err == nil && !force {
			fmt.Fprintf(cmd.OutOrStdout(), "• keeping existing %s (use --force to overwrite)\n", p)
			return nil
		}
		if err := cfg.Save(cfg.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", p)
		return nil
	},
}
