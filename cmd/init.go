package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/qarelay/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize qarelay configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the upstream endpoint and model fallback chain and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
