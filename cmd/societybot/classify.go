package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-society-bot/internal/app"
)

func classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the classification of a message as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			clf, err := app.NewClassifier(cfg.Classifier)
			if err != nil {
				return err
			}
			res := clf.Classify(cmd.Context(), strings.Join(args, " "))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
