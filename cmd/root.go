// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"

	"github.com/naka-gawa/contributor-stats/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contributor-stats",
	Short: "A CLI tool to showcase repository contributors in a README.",
	Long: `contributor-stats counts merged pull requests per author on the tracked
branches of a GitHub repository and refreshes a marker-delimited contributor
section in a README, either as HTML or as a generated SVG image.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Repository in owner/name form (overrides GITHUB_REPOSITORY)")
	rootCmd.PersistentFlags().StringSlice("branch", nil, "Base branches to count merged pull requests on")
	rootCmd.PersistentFlags().String("api", "", "GitHub API to query: rest or graphql")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "Overall time limit for the run")
}

// newLogger discards all logs unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(cmd.ErrOrStderr())
	}
	return logger
}

// loadConfig builds the run configuration: defaults, then environment,
// then config file, then flags that were explicitly set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags.Changed("config"), os.Getenv)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("repo") {
		cfg.Repository, _ = flags.GetString("repo")
	}
	if flags.Changed("branch") {
		cfg.Branches, _ = flags.GetStringSlice("branch")
	}
	if flags.Changed("api") {
		cfg.API, _ = flags.GetString("api")
	}
	if f := flags.Lookup("target"); f != nil && f.Changed {
		cfg.TargetFile = f.Value.String()
	}
	if f := flags.Lookup("style"); f != nil && f.Changed {
		cfg.Style = f.Value.String()
	}
	if flags.Lookup("columns") != nil && flags.Changed("columns") {
		cfg.Columns, _ = flags.GetInt("columns")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
