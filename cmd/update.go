package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/contributor-stats/internal/config"
	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/naka-gawa/contributor-stats/internal/gateway"
	"github.com/naka-gawa/contributor-stats/internal/readme"
	"github.com/naka-gawa/contributor-stats/internal/render"
	"github.com/naka-gawa/contributor-stats/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	defaultTimeout = 2 * time.Minute
	topN           = 10
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refreshes the contributor section of the target document",
	Long: `Counts merged pull requests per author on the tracked branches, renders the
contributor avatars and rewrites the block between the start and end markers
of the target document, appending the block when the markers are missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		owner, repo, err := cfg.OwnerRepo()
		if err != nil {
			return err
		}

		// Inject dependencies and run the main business logic.
		fetcher, err := gateway.NewFetcher(cfg.Token, cfg.API, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		avatars := gateway.NewAvatarClient("", cfg.AvatarSize, logger)
		renderer, err := render.New(cfg.Style, render.Options{
			Columns:     cfg.Columns,
			AvatarSize:  cfg.AvatarSize,
			Concurrency: cfg.Concurrency,
			AssetPath:   cfg.AssetPath,
			AssetLink:   cfg.AssetLink(),
		}, avatars, logger)
		if err != nil {
			return err
		}
		updater := readme.NewUpdater(cfg.StartMarker, cfg.EndMarker, section(cfg, repo), logger)
		publisher := usecase.NewPublisher(usecase.NewCounter(fetcher, logger), renderer, updater, logger)

		out := cmd.OutOrStdout()
		fmt.Fprintln(cmd.ErrOrStderr(), "Starting contributor statistics...")
		result, err := publisher.Publish(ctx, usecase.PublishInput{
			Owner:      owner,
			Repo:       repo,
			Branches:   cfg.Branches,
			TargetFile: cfg.TargetFile,
			DryRun:     dryRun,
		})
		if err != nil {
			return err
		}

		printReport(cmd, result.Report)
		if result.Report.Empty() {
			return nil
		}
		if dryRun {
			fmt.Fprint(out, result.Document)
			return nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Updated %s\n", cfg.TargetFile)
		fmt.Fprintln(cmd.ErrOrStderr(), "Statistics completed!")
		return nil
	},
}

// section builds the heading text shown above the avatars.
func section(cfg config.Config, repo string) readme.Section {
	s := readme.Section{Title: cfg.Title, Description: cfg.Description}
	if s.Description == "" {
		s.Description = fmt.Sprintf("Thanks to everyone who has contributed to **%s**.", repo)
	}
	return s
}

// printReport writes branch warnings and the top contributors to stderr.
func printReport(cmd *cobra.Command, report *domain.Report) {
	w := cmd.ErrOrStderr()
	for _, f := range report.Failures {
		fmt.Fprintf(w, "Warning: Could not fetch %s PRs: %v\n", f.Branch, f.Err)
	}
	if report.Empty() {
		fmt.Fprintln(w, "No contributors found")
		return
	}
	fmt.Fprintf(w, "Found %d contributors (%d merged PRs, median %.1f)\n",
		report.Summary.Contributors, report.Summary.MergedPRs, report.Summary.Median)
	for i, c := range report.Contributors[:min(topN, len(report.Contributors))] {
		fmt.Fprintf(w, "%d. %s: %d merged PRs\n", i+1, c.Login, c.MergedPRs)
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("target", "t", "", "Document to update (overrides TARGET_FILE, default README.md)")
	updateCmd.Flags().StringP("style", "s", "", "Presentation style: svg, table or flow")
	updateCmd.Flags().Int("columns", config.DefaultColumns, "Avatars per row")
	updateCmd.Flags().Bool("dry-run", false, "Print the updated document instead of writing it")
}
