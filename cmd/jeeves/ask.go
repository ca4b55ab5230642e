package main

import (
	"fmt"
	"strings"

	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/models"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var configPath string
	var model string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			w, err := buildGateway(cfg)
			if err != nil {
				return err
			}
			defer w.close()

			req := models.Request{
				Prompt: strings.Join(args, " "),
				Model:  model,
			}
			ans, err := w.gateway.Answer(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Println(ans.Text)
			if ans.Source != models.SourceLive {
				fmt.Printf("\n[%s answer]\n", ans.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "jeeves.yaml", "path to config file")
	cmd.Flags().StringVarP(&model, "model", "m", "", "override the configured model")
	return cmd
}
