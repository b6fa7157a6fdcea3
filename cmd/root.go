package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "resplan",
	Short:         "Capacity-aware project to resource scheduler",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON); defaults and RESPLAN_ variables apply when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
