package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/resplan/app"
	"github.com/kilianp07/resplan/config"
	"github.com/kilianp07/resplan/core/planner"
	"github.com/kilianp07/resplan/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and check the input documents without solving",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Publish.Broker = ""
	cfg.Metrics.Sinks = nil
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	ds, err := svc.Load()
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	part := planner.Classify(ds, logger.New("validate"))
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Projects: %d (free %d, preassigned %d, on hold %d)\n", len(ds.Projects),
		len(part.IDs(planner.ClassFree)), len(part.IDs(planner.ClassFixed)), len(part.IDs(planner.ClassOnHold)))
	fmt.Fprintf(w, "Resources: %d\n", len(ds.Resources))
	fmt.Fprintf(w, "Holidays: %d\n", len(ds.Holidays))
	fmt.Fprintf(w, "Dropped references: %d\n", len(part.Dropped))
	for _, d := range part.Dropped {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return nil
}
