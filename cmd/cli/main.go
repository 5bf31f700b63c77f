package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/budget-advisor/internal/config"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath        string
	provider          string
	model             string
	completionTimeout time.Duration
	logLevel          string
	logFormat         string
	bqProject         string
	bucket            string

	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Budget advice from a spending spreadsheet",
	Long: `advisor reads a spending spreadsheet (CSV or Excel, local, in GCS or
from a BigQuery query) and asks a language model for a suggested monthly
budget using four strategies: LIME evidence, standard, chain of thought
and self-check.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c

		l, err := logger.NewFromOptions(logger.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Writer: os.Stderr,
		})
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (or set BUDGET_ADVISOR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Completion provider: gemini or anthropic")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model name (default depends on provider)")
	rootCmd.PersistentFlags().DurationVar(&completionTimeout, "completion-timeout", 0, "Timeout for a single completion call")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().StringVar(&bqProject, "bq-project", "", "Google Cloud project for BigQuery sources")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "", "GCS bucket for uploads")

	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(uploadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers explicitly set flags over defaults, file and
// environment.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("BUDGET_ADVISOR_CONFIG")
	}

	c, err := config.LoadWithoutFlags(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		c.LLMProvider = provider
	}
	if flags.Changed("model") {
		c.Model = model
	}
	if flags.Changed("completion-timeout") {
		c.CompletionTimeout = completionTimeout
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if flags.Changed("bq-project") {
		c.BigQueryProject = bqProject
	}
	if flags.Changed("bucket") {
		c.GCSBucket = bucket
	}

	c.Finalize()
	return c, nil
}
