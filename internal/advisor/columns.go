package advisor

import (
	"strings"

	"github.com/dvloznov/budget-advisor/internal/table"
)

// Keyword lists used to guess column roles from header names. Matching is by
// substring on the normalized header.
var (
	categoryKeywords    = []string{"cat", "vendor", "service", "desc", "type", "merchant"}
	amountKeywords      = []string{"amount", "cost", "price", "value", "sek", "eur", "usd", "total"}
	dateKeywords        = []string{"date", "time", "day"}
	descriptionKeywords = []string{"desc", "merchant", "details", "memo"}
)

// Roles maps each logical column role to a table column. An empty string
// means the role is unassigned.
type Roles struct {
	Category    string
	Amount      string
	Date        string
	Description string
}

// HasDate reports whether a date column was found.
func (r Roles) HasDate() bool { return r.Date != "" }

// HasDescription reports whether a description column was found.
func (r Roles) HasDescription() bool { return r.Description != "" }

// InferColumns assigns roles from header names. The first column in the
// given order that contains one of a role's keywords wins; a column is never
// assigned to two roles. Category and amount are required.
func InferColumns(columns []string) (Roles, error) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = table.NormalizeColumn(c)
	}

	var roles Roles
	taken := make(map[string]bool, 4)

	roles.Category = firstMatch(names, categoryKeywords, taken)
	taken[roles.Category] = roles.Category != ""
	roles.Amount = firstMatch(names, amountKeywords, taken)
	taken[roles.Amount] = roles.Amount != ""

	if roles.Category == "" || roles.Amount == "" {
		return roles, &SchemaInferenceError{
			Columns:  names,
			Category: roles.Category,
			Amount:   roles.Amount,
		}
	}

	roles.Date = firstMatch(names, dateKeywords, taken)
	taken[roles.Date] = roles.Date != ""

	roles.Description = firstMatch(names, descriptionKeywords, taken)
	if roles.Description == "" {
		for _, n := range names {
			if !taken[n] {
				roles.Description = n
				break
			}
		}
	}

	return roles, nil
}

func firstMatch(names, keywords []string, taken map[string]bool) string {
	for _, n := range names {
		if taken[n] {
			continue
		}
		if containsAny(n, keywords) {
			return n
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
