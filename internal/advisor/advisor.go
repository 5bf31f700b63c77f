// Package advisor turns a transaction table into four independent budget
// recommendations, one per prompting strategy, and merges them into a single
// response.
package advisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/dvloznov/budget-advisor/internal/table"
	"golang.org/x/sync/errgroup"
)

// Advisor runs every strategy against a table.
type Advisor struct {
	completer Completer
	engine    *Engine
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithEngine replaces the default heuristic engine used by the LIME strategy.
func WithEngine(e *Engine) Option {
	return func(a *Advisor) {
		a.engine = e
	}
}

// New creates an Advisor backed by the given completion service.
func New(completer Completer, opts ...Option) *Advisor {
	a := &Advisor{
		completer: completer,
		engine:    NewEngine(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Advise runs the four strategies concurrently and returns their merged
// outcomes. The response always has all four slots filled. If the category
// or amount column cannot be identified, every slot carries that error and
// no completions are requested. t is never modified.
func (a *Advisor) Advise(ctx context.Context, t *table.Table) domain.Response {
	log := logger.FromContext(ctx)
	log.Debug().Strs("columns", t.Columns).Int("rows", t.Len()).Msg("Generating advice")

	roles, err := InferColumns(t.Columns)
	if err != nil {
		log.Warn().Err(err).Msg("Column inference failed")
		return domain.UniformError(err.Error())
	}
	log.Debug().
		Str("category", roles.Category).
		Str("amount", roles.Amount).
		Str("date", roles.Date).
		Str("description", roles.Description).
		Msg("Columns inferred")

	var (
		mu   sync.Mutex
		resp domain.Response
		g    errgroup.Group
	)
	runners := a.strategies()

	for _, s := range domain.Strategies {
		run := runners[s]
		in := strategyInput{table: t.Clone(), roles: roles}

		g.Go(func() error {
			stratLog := log.With().Str("strategy", string(s)).Logger()
			sctx := logger.WithContext(ctx, stratLog)
			start := time.Now()

			outcome := runSafely(sctx, s, run, in)

			stratLog.Info().
				Dur("duration", time.Since(start)).
				Bool("ok", outcome.Result != nil).
				Msg("Strategy finished")

			mu.Lock()
			resp.Set(s, outcome)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return resp
}

// runSafely summarizes the strategy's own copy of the table and runs the
// strategy. A panic in either step becomes an error outcome for that
// strategy only.
func runSafely(ctx context.Context, s domain.StrategyType, run strategyFunc, in strategyInput) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log := logger.FromContext(ctx)
			log.Error().Interface("panic", r).Msg("Strategy panicked")
			outcome = domain.Failed("%s strategy failed: %v", s, r)
		}
	}()
	in.summary = Summarize(in.table, in.roles)
	return run(ctx, in)
}

// AdviseErr is like Advise but reports a schema failure as an error as well,
// for callers that want to stop before rendering.
func (a *Advisor) AdviseErr(ctx context.Context, t *table.Table) (domain.Response, error) {
	if _, err := InferColumns(t.Columns); err != nil {
		return domain.UniformError(err.Error()), fmt.Errorf("AdviseErr: %w", err)
	}
	return a.Advise(ctx, t), nil
}
