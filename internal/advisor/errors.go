package advisor

import (
	"fmt"
	"strings"

	"github.com/dvloznov/budget-advisor/internal/domain"
)

// SchemaInferenceError is returned when the category or amount column cannot
// be identified from the headers.
type SchemaInferenceError struct {
	Columns  []string
	Category string
	Amount   string
}

func (e *SchemaInferenceError) Error() string {
	return fmt.Sprintf("Could not identify Category or Amount columns. Found: [%s]", quoteList(e.Columns))
}

// CompletionParseError is returned when a completion cannot be decoded into
// the strategy's expected JSON shape.
type CompletionParseError struct {
	Strategy domain.StrategyType
	Raw      string
	Err      error
}

func (e *CompletionParseError) Error() string {
	return fmt.Sprintf("parse %s completion: %v", e.Strategy, e.Err)
}

func (e *CompletionParseError) Unwrap() error {
	return e.Err
}

// HeuristicFailure records why a heuristic could not be evaluated. The
// engine treats it as "no insight" and moves on.
type HeuristicFailure struct {
	Heuristic string
	Err       error
}

func (e *HeuristicFailure) Error() string {
	return fmt.Sprintf("%s heuristic: %v", e.Heuristic, e.Err)
}

func (e *HeuristicFailure) Unwrap() error {
	return e.Err
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
