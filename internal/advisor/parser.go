package advisor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/budget-advisor/internal/domain"
)

// completionPayload is the union of the keys any strategy asks for.
type completionPayload struct {
	Budget        budgetMap `json:"budget"`
	Reason        flexText  `json:"reason"`
	Thoughts      flexText  `json:"thoughts"`
	Critique      flexText  `json:"critique"`
	SavingsAdvice flexText  `json:"savings_advice"`
}

// budgetMap accepts numbers or currency strings as values.
type budgetMap map[string]float64

func (m *budgetMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("budget is not an object: %w", err)
	}

	out := make(budgetMap, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case float64:
			out[k] = val
		case string:
			out[k] = ParseAmount(val).InexactFloat64()
		case nil:
			out[k] = 0
		default:
			return fmt.Errorf("budget value for %q has type %T", k, v)
		}
	}
	*m = out
	return nil
}

// flexText accepts a string, or any other JSON value kept as its compact text.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = flexText(s)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*t = flexText(buf.String())
	return nil
}

// cleanModelJSON strips Markdown code fences and any prose around the
// outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// parseCompletion decodes a raw completion into the shared payload.
func parseCompletion(strategy domain.StrategyType, raw string) (completionPayload, error) {
	var p completionPayload

	clean := cleanModelJSON(raw)
	if !strings.HasPrefix(clean, "{") {
		return p, &CompletionParseError{Strategy: strategy, Raw: raw, Err: errors.New("no JSON object in response")}
	}
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return completionPayload{}, &CompletionParseError{Strategy: strategy, Raw: raw, Err: err}
	}
	return p, nil
}
