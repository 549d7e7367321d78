package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/macdbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to a file so it can be edited. The
format is chosen from the extension (.yaml/.yml or .json).

Example:
  macdbot config --out macdbot.yaml`,
	RunE: runConfig,
}

var configOutPath string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configOutPath, "out", "macdbot.yaml", "where to write the default config")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configOutPath); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", configOutPath)
	return nil
}
