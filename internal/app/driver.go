package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/convergenps/sheetctl/internal/domain"
	"github.com/convergenps/sheetctl/internal/logging"
)

// BackendClient is the slice of the backend API the driver needs.
type BackendClient interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Import(ctx context.Context, token string, category domain.Category) (*domain.ImportResult, error)
	ImportAll(ctx context.Context, token string) (json.RawMessage, error)
}

type state int

const (
	stateIdle state = iota
	stateAuthenticating
	stateAuthFailed
	stateStrategySelected
	stateExecuting
	stateAggregating
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAuthenticating:
		return "authenticating"
	case stateAuthFailed:
		return "auth_failed"
	case stateStrategySelected:
		return "strategy_selected"
	case stateExecuting:
		return "executing"
	case stateAggregating:
		return "aggregating"
	default:
		return "done"
	}
}

// Driver runs one import invocation: authenticate, execute the selected
// strategy, aggregate. Strictly sequential; one category failure never
// aborts the rest of a sequential run.
type Driver struct {
	client     BackendClient
	categories []domain.Category
	delay      time.Duration
	sleep      func(time.Duration)
	logger     *logging.Logger
	state      state
}

type DriverOption func(*Driver)

// WithSleep replaces the inter-call pause; tests use it to avoid real waits.
func WithSleep(sleep func(time.Duration)) DriverOption {
	return func(d *Driver) {
		d.sleep = sleep
	}
}

func NewDriver(client BackendClient, categories []domain.Category, delay time.Duration, logger *logging.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		client:     client,
		categories: categories,
		delay:      delay,
		sleep:      time.Sleep,
		logger:     logger,
		state:      stateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drives one invocation to completion. It never returns an error: every
// failure mode ends in a RunOutcome with OverallSuccess false and the cause
// in Error (or in a per-category result).
func (d *Driver) Run(ctx context.Context, creds domain.Credentials, strategy domain.Strategy) *domain.RunOutcome {
	outcome := &domain.RunOutcome{
		Strategy:  strategy,
		StartedAt: time.Now(),
	}

	d.transition(stateAuthenticating)
	d.logger.Info("authenticating as %s", creds.Email)

	token, err := d.client.Login(ctx, creds)
	if err != nil {
		d.transition(stateAuthFailed)
		d.logger.Error("%v", err)
		outcome.Error = err.Error()
		outcome.CompletedAt = time.Now()
		return outcome
	}

	d.transition(stateStrategySelected)
	d.logger.Info("strategy: %s", strategy)

	d.transition(stateExecuting)
	switch strategy {
	case domain.StrategyAtomic:
		d.runAtomic(ctx, token, outcome)
	default:
		d.runSequential(ctx, token, outcome)
	}

	d.transition(stateAggregating)
	outcome.OverallSuccess = outcome.Error == "" && allOK(outcome.Results)
	outcome.CompletedAt = time.Now()

	d.transition(stateDone)
	return outcome
}

// runAtomic issues the single import-everything call. Atomicity is the
// backend's problem; any failure here is terminal with no partial results.
func (d *Driver) runAtomic(ctx context.Context, token string, outcome *domain.RunOutcome) {
	d.logger.Info("importing all categories in one call")

	summary, err := d.client.ImportAll(ctx, token)
	if err != nil {
		d.logger.Error("import all failed: %v", err)
		outcome.Error = err.Error()
		return
	}
	outcome.Summary = summary
}

// runSequential walks the configured categories in order, once each, with a
// pause between calls. A failed category is recorded and the loop moves on.
func (d *Driver) runSequential(ctx context.Context, token string, outcome *domain.RunOutcome) {
	outcome.Results = make([]domain.ImportResult, 0, len(d.categories))

	for i, category := range d.categories {
		// Abort between categories only; a dispatched call always runs
		// to completion or timeout.
		if err := ctx.Err(); err != nil {
			d.logger.Warn("run aborted before %s: %v", category, err)
			outcome.Error = err.Error()
			return
		}

		d.logger.Info("importing %s", category)
		result, err := d.client.Import(ctx, token, category)
		if err != nil {
			d.logger.Warn("%s import failed: %v", category, err)
			result = &domain.ImportResult{Category: category, Failure: err.Error()}
		}
		outcome.Results = append(outcome.Results, *result)

		if i < len(d.categories)-1 {
			d.sleep(d.delay)
		}
	}
}

func (d *Driver) transition(s state) {
	d.state = s
	d.logger.Debug("state: %s", s)
}

func allOK(results []domain.ImportResult) bool {
	for i := range results {
		if !results[i].OK() {
			return false
		}
	}
	return true
}
