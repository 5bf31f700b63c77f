package advisor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/dvloznov/budget-advisor/internal/table"
	"github.com/shopspring/decimal"
)

// Summary is the total amount spent per category label.
type Summary map[string]decimal.Decimal

// Summarize groups rows by the category column and sums the amount column.
// Rows with a blank category are left out of every group.
func Summarize(t *table.Table, roles Roles) Summary {
	s := make(Summary)
	for _, row := range t.Rows {
		cat := row[roles.Category]
		if table.IsBlank(cat) {
			continue
		}
		label := table.CellString(cat)
		s[label] = s[label].Add(ParseAmount(row[roles.Amount]))
	}
	return s
}

// Categories returns the category labels in sorted order.
func (s Summary) Categories() []string {
	cats := make([]string, 0, len(s))
	for c := range s {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Total sums every category.
func (s Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}

// Floats converts the totals for JSON output.
func (s Summary) Floats() map[string]float64 {
	out := make(map[string]float64, len(s))
	for c, v := range s {
		out[c] = v.InexactFloat64()
	}
	return out
}

// String renders the summary as a JSON object with sorted keys and exact
// decimal values, the form embedded in prompts.
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, c := range s.Categories() {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(c)
		b.Write(key)
		b.WriteString(": ")
		b.WriteString(s[c].String())
	}
	b.WriteString("}")
	return b.String()
}
