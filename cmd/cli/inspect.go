package main

import (
	"context"
	"time"

	"github.com/dvloznov/budget-advisor/internal/advisor"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/spf13/cobra"
)

var inspectSource sourceFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show inferred columns, category totals and heuristic insight",
	Long: `Loads a spreadsheet and prints what the advisor would send to the model:
the inferred column roles, the per-category summary and the LIME heuristic
explanation. No completion calls are made and no API key is needed.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectSource.register(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	t, err := loadSource(ctx, inspectSource)
	if err != nil {
		return err
	}

	roles, err := advisor.InferColumns(t.Columns)
	if err != nil {
		return err
	}

	renderInspection(cmd.OutOrStdout(), inspection{
		Columns:  t.Columns,
		Rows:     t.Len(),
		Roles:    roles,
		Summary:  advisor.Summarize(t, roles),
		Evidence: advisor.NewEngine().Explain(ctx, t.Clone(), roles),
	})
	return nil
}
