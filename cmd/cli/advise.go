package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/budget-advisor/internal/advisor"
	"github.com/dvloznov/budget-advisor/internal/llm"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/spf13/cobra"
)

var (
	adviseSource sourceFlags
	adviseFormat string
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Generate budget advice with all four strategies",
	Long: `Reads a spreadsheet and runs the LIME, standard, chain-of-thought and
self-check strategies concurrently against the configured model.

Examples:
  advisor advise --file spending.csv
  advisor advise --gcs-uri gs://sheets/2024/jan.xlsx --format json
  advisor advise --bq-query 'SELECT date, category, amount FROM ds.tx' --bq-project my-proj`,
	Args: cobra.NoArgs,
	RunE: runAdvise,
}

func init() {
	adviseSource.register(adviseCmd)
	adviseCmd.Flags().StringVar(&adviseFormat, "format", "text", "Output format: text or json")
}

func runAdvise(cmd *cobra.Command, args []string) error {
	if adviseFormat != "text" && adviseFormat != "json" {
		return fmt.Errorf("invalid --format %q (want text or json)", adviseFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Self-Check makes two sequential completion calls.
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.CompletionTimeout+30*time.Second)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	t, err := loadSource(ctx, adviseSource)
	if err != nil {
		return err
	}
	log.Info().
		Str("source", adviseSource.name()).
		Int("rows", t.Len()).
		Str("provider", cfg.LLMProvider).
		Str("model", cfg.Model).
		Msg("Generating advice")

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		return err
	}

	resp, adviseErr := advisor.New(completer).AdviseErr(ctx, t)

	out := cmd.OutOrStdout()
	if adviseFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("runAdvise: encode response: %w", err)
		}
	} else {
		renderAdvice(out, resp)
	}
	return adviseErr
}
