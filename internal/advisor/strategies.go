package advisor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/dvloznov/budget-advisor/internal/table"
)

const (
	parseFailedText    = "Failed to parse"
	limeParseFailedMsg = "Failed to parse LLM response"
)

// strategyInput is what each strategy receives. The table and summary are
// private to the strategy; the roles are shared and read-only.
type strategyInput struct {
	table   *table.Table
	roles   Roles
	summary Summary
}

type strategyFunc func(ctx context.Context, in strategyInput) domain.Outcome

func (a *Advisor) strategies() map[domain.StrategyType]strategyFunc {
	return map[domain.StrategyType]strategyFunc{
		domain.StrategyLime:      a.runLime,
		domain.StrategyStandard:  a.runStandard,
		domain.StrategyCoT:       a.runCoT,
		domain.StrategySelfCheck: a.runSelfCheck,
	}
}

// runLime asks the model for a budget and explains it with the heuristic
// engine instead of the model. The completion and the explanation run
// concurrently. A failed completion leaves an error marker in the advice but
// keeps the explanation.
func (a *Advisor) runLime(ctx context.Context, in strategyInput) domain.Outcome {
	log := logger.FromContext(ctx)
	result := newResult(domain.StrategyLime)

	var (
		raw         string
		err         error
		explanation string
		panicked    interface{}
		wg          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() { panicked = recover() }()
		raw, err = a.completer.Complete(ctx, buildLimePrompt(in.summary))
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				explanation = fmt.Sprintf("LIME analysis could not extract features: heuristics panicked: %v", r)
			}
		}()
		explanation = a.engine.Explain(ctx, in.table, in.roles)
	}()
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}

	if err != nil {
		log.Warn().Err(err).Msg("Completion failed")
		result.Advice = domain.Advice{Error: completionFailed(err)}
	} else if p, err := parseCompletion(domain.StrategyLime, raw); err != nil {
		logParseFailure(ctx, err)
		result.Advice = domain.Advice{Error: limeParseFailedMsg}
	} else {
		result.Advice = domain.Advice{Budget: p.Budget}
		result.SavingsAdvice = string(p.SavingsAdvice)
	}

	result.Explanation = explanation
	return domain.Succeeded(result)
}

// runStandard asks for a budget with the model's own reason.
func (a *Advisor) runStandard(ctx context.Context, in strategyInput) domain.Outcome {
	raw, err := a.completer.Complete(ctx, buildStandardPrompt(in.summary))
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Completion failed")
		return domain.Failed("%s", completionFailed(err))
	}

	result := newResult(domain.StrategyStandard)
	p, err := parseCompletion(domain.StrategyStandard, raw)
	if err != nil {
		logParseFailure(ctx, err)
		result.Explanation = parseFailedText
		return domain.Succeeded(result)
	}
	fill(result, p, p.Reason)
	return domain.Succeeded(result)
}

// runCoT asks the model to reason step by step before budgeting.
func (a *Advisor) runCoT(ctx context.Context, in strategyInput) domain.Outcome {
	raw, err := a.completer.Complete(ctx, buildCoTPrompt(in.summary))
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Completion failed")
		return domain.Failed("%s", completionFailed(err))
	}

	result := newResult(domain.StrategyCoT)
	p, err := parseCompletion(domain.StrategyCoT, raw)
	if err != nil {
		logParseFailure(ctx, err)
		result.Explanation = parseFailedText
		return domain.Succeeded(result)
	}
	fill(result, p, p.Thoughts)
	return domain.Succeeded(result)
}

// runSelfCheck drafts a budget, then asks the model to critique the draft
// against the summary and produce a final budget. It always makes two calls:
// if the draft call fails, its error text stands in for the draft.
func (a *Advisor) runSelfCheck(ctx context.Context, in strategyInput) domain.Outcome {
	log := logger.FromContext(ctx)

	draft, err := a.completer.Complete(ctx, buildDraftPrompt(in.summary))
	if err != nil {
		log.Warn().Err(err).Msg("Draft completion failed, critiquing error text")
		draft = completionFailed(err)
	}

	raw, err := a.completer.Complete(ctx, buildCritiquePrompt(in.summary, draft))
	if err != nil {
		log.Warn().Err(err).Msg("Completion failed")
		return domain.Failed("%s", completionFailed(err))
	}

	result := newResult(domain.StrategySelfCheck)
	p, err := parseCompletion(domain.StrategySelfCheck, raw)
	if err != nil {
		logParseFailure(ctx, err)
		result.Explanation = parseFailedText
		return domain.Succeeded(result)
	}
	fill(result, p, p.Critique)
	return domain.Succeeded(result)
}

func newResult(s domain.StrategyType) *domain.StrategyResult {
	return &domain.StrategyResult{
		Agent:  s.AgentName(),
		Advice: domain.Advice{Budget: map[string]float64{}},
		Type:   s,
	}
}

func fill(r *domain.StrategyResult, p completionPayload, explanation flexText) {
	if p.Budget != nil {
		r.Advice = domain.Advice{Budget: p.Budget}
	}
	r.Explanation = string(explanation)
	r.SavingsAdvice = string(p.SavingsAdvice)
}

func completionFailed(err error) string {
	return "Completion failed: " + err.Error()
}

func logParseFailure(ctx context.Context, err error) {
	log := logger.FromContext(ctx)
	ev := log.Warn().Err(err)
	var pe *CompletionParseError
	if errors.As(err, &pe) {
		ev = ev.Str("raw_response", truncate(pe.Raw, 500))
	}
	ev.Msg("Could not parse completion")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
