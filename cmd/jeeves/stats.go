package main

import (
	"fmt"

	"github.com/jeeves-ai/jeeves/pkg/budget"
	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/history"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show request history and budget usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			h, err := history.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			summary, err := h.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if len(summary) == 0 {
				fmt.Println("No requests recorded yet.")
			} else {
				fmt.Printf("%-10s %10s %10s\n", "SOURCE", "REQUESTS", "ATTEMPTS")
				for _, sum := range summary {
					fmt.Printf("%-10s %10d %10d\n", sum.Source, sum.Requests, sum.Attempts)
				}
			}

			if cfg.Budget.Enabled {
				enforcer := budget.New(cfg.Budget, h)
				status, err := enforcer.Status(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("\nBudget (%s): %d/%d calls used, %d remaining\n",
					status.Period, status.Used, status.MaxCalls, status.Remaining)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "jeeves.yaml", "path to config file")
	return cmd
}
