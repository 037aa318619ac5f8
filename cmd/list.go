package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naka-gawa/contributor-stats/internal/gateway"
	"github.com/naka-gawa/contributor-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Counts merged pull requests per author and outputs as JSON",
	Long:  `Counts merged pull requests per author on the tracked branches and prints the report in JSON format without touching any document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		owner, repo, err := cfg.OwnerRepo()
		if err != nil {
			return err
		}
		fetcher, err := gateway.NewFetcher(cfg.Token, cfg.API, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		report, err := usecase.NewCounter(fetcher, logger).Count(ctx, owner, repo, cfg.Branches)
		if err != nil {
			return fmt.Errorf("failed to count contributors: %w", err)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
