package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/resplan/app"
	"github.com/kilianp07/resplan/config"
	"github.com/kilianp07/resplan/core/planner"
	"github.com/kilianp07/resplan/infra/logger"
)

var (
	scheduleFormat string
	scheduleOutput string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Assign projects to resources and print the schedule",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleFormat, "format", "f", "", "output format: text, json, csv or svg")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scheduleFormat != "" {
		cfg.Output.Format = scheduleFormat
	}
	if scheduleOutput != "" {
		cfg.Output.Path = scheduleOutput
	}
	cfg.Output.SetDefaults()
	if err := cfg.Output.Validate(); err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	out, err := svc.Schedule(ctx)
	if planner.IsNothingToSchedule(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to schedule.")
		return nil
	}
	if err != nil {
		return err
	}
	return svc.Emit(ctx, out, cmd.OutOrStdout())
}
