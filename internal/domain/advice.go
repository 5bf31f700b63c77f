package domain

import (
	"encoding/json"
	"fmt"
)

// StrategyType identifies one of the four advice strategies.
type StrategyType string

const (
	// StrategyLime pairs a model budget with a heuristic, data-derived explanation.
	StrategyLime StrategyType = "lime"
	// StrategyStandard asks for a budget plus the model's own reason.
	StrategyStandard StrategyType = "standard"
	// StrategyCoT asks the model to reason step by step before budgeting.
	StrategyCoT StrategyType = "cot"
	// StrategySelfCheck drafts a budget, then critiques and refines it.
	StrategySelfCheck StrategyType = "self_check"
)

// Strategies lists every strategy in response order.
var Strategies = []StrategyType{StrategyLime, StrategyStandard, StrategyCoT, StrategySelfCheck}

// AgentName returns the display name used for a strategy.
func (s StrategyType) AgentName() string {
	switch s {
	case StrategyLime:
		return "LIME Evidence"
	case StrategyStandard:
		return "Standard"
	case StrategyCoT:
		return "Chain of Thought"
	case StrategySelfCheck:
		return "Self Check"
	default:
		return string(s)
	}
}

// Advice is a suggested budget per category, or an error marker when the
// model output could not be used.
type Advice struct {
	Budget map[string]float64
	Error  string
}

// MarshalJSON renders the budget map, or {"error": "..."} for a marker.
func (a Advice) MarshalJSON() ([]byte, error) {
	if a.Error != "" {
		return json.Marshal(map[string]string{"error": a.Error})
	}
	if a.Budget == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.Budget)
}

// StrategyResult is the normalized output of one strategy.
// It is not modified after the strategy returns it.
type StrategyResult struct {
	Agent         string       `json:"agent"`
	Advice        Advice       `json:"advice"`
	Explanation   string       `json:"explanation"`
	SavingsAdvice string       `json:"savings_advice"`
	Type          StrategyType `json:"type"`
}

// Outcome holds either a StrategyResult or an error message for one slot of
// the response.
type Outcome struct {
	Result *StrategyResult
	Err    string
}

// Failed builds an error outcome.
func Failed(format string, args ...interface{}) Outcome {
	return Outcome{Err: fmt.Sprintf(format, args...)}
}

// Succeeded wraps a result.
func Succeeded(r *StrategyResult) Outcome {
	return Outcome{Result: r}
}

// MarshalJSON emits the result object or {"error": "..."}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Result == nil {
		return json.Marshal(map[string]string{"error": o.Err})
	}
	return json.Marshal(o.Result)
}

// Response is the unified answer for one spreadsheet: always all four keys.
type Response struct {
	Lime      Outcome `json:"lime"`
	Standard  Outcome `json:"standard"`
	CoT       Outcome `json:"cot"`
	SelfCheck Outcome `json:"self_check"`
}

// Set stores an outcome in the slot for the given strategy.
func (r *Response) Set(s StrategyType, o Outcome) {
	switch s {
	case StrategyLime:
		r.Lime = o
	case StrategyStandard:
		r.Standard = o
	case StrategyCoT:
		r.CoT = o
	case StrategySelfCheck:
		r.SelfCheck = o
	}
}

// Get returns the outcome stored for a strategy.
func (r *Response) Get(s StrategyType) Outcome {
	switch s {
	case StrategyLime:
		return r.Lime
	case StrategyStandard:
		return r.Standard
	case StrategyCoT:
		return r.CoT
	case StrategySelfCheck:
		return r.SelfCheck
	}
	return Outcome{Err: fmt.Sprintf("unknown strategy %q", s)}
}

// UniformError fills every slot with the same error message.
func UniformError(msg string) Response {
	var r Response
	for _, s := range Strategies {
		r.Set(s, Outcome{Err: msg})
	}
	return r
}

// BackendErrorResponse is returned when a request fails outside any single
// strategy.
func BackendErrorResponse(err error) Response {
	return UniformError(fmt.Sprintf("Backend Error: %v", err))
}
