package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dvloznov/budget-advisor/internal/advisor"
	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestRenderAdvice(t *testing.T) {
	withoutColor(t)

	var resp domain.Response
	resp.Set(domain.StrategyLime, domain.Succeeded(&domain.StrategyResult{
		Agent:       domain.StrategyLime.AgentName(),
		Advice:      domain.Advice{Budget: map[string]float64{"Rent": 1000, "Food": 250.5}},
		Explanation: "Weekend spending is 2.0x higher than weekdays.",
		Type:        domain.StrategyLime,
	}))
	resp.Set(domain.StrategyStandard, domain.Failed("Completion failed: timeout"))
	resp.Set(domain.StrategyCoT, domain.Succeeded(&domain.StrategyResult{
		Advice: domain.Advice{Error: "Failed to parse LLM response"},
		Type:   domain.StrategyCoT,
	}))
	resp.Set(domain.StrategySelfCheck, domain.Succeeded(&domain.StrategyResult{
		Advice:        domain.Advice{Budget: map[string]float64{}},
		SavingsAdvice: "Cook at home.",
		Type:          domain.StrategySelfCheck,
	}))

	var buf bytes.Buffer
	renderAdvice(&buf, resp)
	out := buf.String()

	assert.Contains(t, out, "== LIME Evidence (lime) ==")
	assert.Contains(t, out, "Explanation: Weekend spending is 2.0x higher than weekdays.")
	assert.Less(t, strings.Index(out, "Food"), strings.Index(out, "Rent"), "categories sorted")
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "250.50")

	assert.Contains(t, out, "== Standard (standard) ==\nerror: Completion failed: timeout\n")
	assert.Contains(t, out, "  error: Failed to parse LLM response")
	assert.Contains(t, out, "  (none)")
	assert.Contains(t, out, "Savings advice: Cook at home.")

	order := []string{"(lime)", "(standard)", "(cot)", "(self_check)"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestRenderInspection(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	renderInspection(&buf, inspection{
		Columns: []string{"date", "category", "amount"},
		Rows:    3,
		Roles:   advisor.Roles{Category: "category", Amount: "amount", Date: "date"},
		Summary: advisor.Summary{
			"Food": decimal.RequireFromString("12.5"),
			"Rent": decimal.RequireFromString("1000"),
		},
		Evidence: "LIME analysis could not extract features: no heuristic produced an insight",
	})
	out := buf.String()

	assert.Contains(t, out, "Rows:    3")
	assert.Contains(t, out, "Columns: date, category, amount")
	assert.Contains(t, out, "  category     category")
	assert.Contains(t, out, "  description  (not found)")
	assert.Contains(t, out, "Total: 1012.50")
	assert.Contains(t, out, "no heuristic produced an insight")
}

func TestSourceFlagsValidate(t *testing.T) {
	assert.Error(t, sourceFlags{}.validate())
	assert.NoError(t, sourceFlags{file: "a.csv"}.validate())
	assert.NoError(t, sourceFlags{gcsURI: "gs://b/a.csv"}.validate())
	assert.Error(t, sourceFlags{file: "a.csv", bqQuery: "SELECT 1"}.validate())
}
