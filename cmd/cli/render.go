package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dvloznov/budget-advisor/internal/advisor"
	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.Bold)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// renderAdvice prints every strategy slot in response order.
func renderAdvice(w io.Writer, resp domain.Response) {
	for i, s := range domain.Strategies {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerColor.Fprintf(w, "== %s (%s) ==\n", s.AgentName(), s)

		outcome := resp.Get(s)
		if outcome.Result == nil {
			errorColor.Fprintf(w, "error: %s\n", outcome.Err)
			continue
		}
		renderResult(w, outcome.Result)
	}
}

func renderResult(w io.Writer, r *domain.StrategyResult) {
	labelColor.Fprintln(w, "Budget:")
	switch {
	case r.Advice.Error != "":
		errorColor.Fprintf(w, "  error: %s\n", r.Advice.Error)
	case len(r.Advice.Budget) == 0:
		dimColor.Fprintln(w, "  (none)")
	default:
		renderAmounts(w, r.Advice.Budget)
	}

	if r.Explanation != "" {
		labelColor.Fprint(w, "Explanation: ")
		fmt.Fprintln(w, r.Explanation)
	}
	if r.SavingsAdvice != "" {
		labelColor.Fprint(w, "Savings advice: ")
		fmt.Fprintln(w, r.SavingsAdvice)
	}
}

// renderAmounts prints category amounts sorted by name with aligned values.
func renderAmounts(w io.Writer, amounts map[string]float64) {
	names := make([]string, 0, len(amounts))
	width := 0
	for name := range amounts {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-*s  %10.2f\n", width, name, amounts[name])
	}
}

// inspection is what the inspect command reports about a spreadsheet.
type inspection struct {
	Columns  []string
	Rows     int
	Roles    advisor.Roles
	Summary  advisor.Summary
	Evidence string
}

func renderInspection(w io.Writer, in inspection) {
	headerColor.Fprintln(w, "== Spreadsheet ==")
	fmt.Fprintf(w, "Rows:    %d\n", in.Rows)
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(in.Columns, ", "))

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "== Column roles ==")
	for _, role := range []struct{ name, col string }{
		{"category", in.Roles.Category},
		{"amount", in.Roles.Amount},
		{"date", in.Roles.Date},
		{"description", in.Roles.Description},
	} {
		if role.col == "" {
			fmt.Fprintf(w, "  %-12s ", role.name)
			dimColor.Fprintln(w, "(not found)")
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", role.name, role.col)
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "== Spending by category ==")
	if len(in.Summary) == 0 {
		dimColor.Fprintln(w, "  (none)")
	} else {
		renderAmounts(w, in.Summary.Floats())
		fmt.Fprintf(w, "  Total: %s\n", in.Summary.Total().StringFixed(2))
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "== Evidence ==")
	fmt.Fprintln(w, in.Evidence)
}
