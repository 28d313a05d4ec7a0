// Package discovery runs the candidate discovery state machine: plan which
// sources to search, search them one at a time, validate what came back, and
// loop until enough candidates were found or the sources are exhausted.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/ratelimit"
	"github.com/jonathan/talent-scout/internal/sites"
	"github.com/jonathan/talent-scout/internal/types"
	"github.com/jonathan/talent-scout/internal/validation"
)

// Planner produces search parameters and source plans for a run.
type Planner interface {
	ParseIntent(ctx context.Context, queryText string) (*types.SearchParameters, error)
	PlanActions(ctx context.Context, params *types.SearchParameters) (*types.ActionPlan, error)
}

// SessionOpener opens a browser session for a run. Abstracted so tests can
// run the orchestrator without Chrome.
type SessionOpener func(ctx context.Context) (*browser.Session, error)

// Orchestrator drives discovery runs end to end.
type Orchestrator struct {
	planner     Planner
	registry    *sites.Registry
	limiter     *ratelimit.Limiter
	openSession SessionOpener
	minRequired int
}

// New creates an orchestrator. minRequired is the number of valid candidates
// a run tries to collect before it stops searching further sources.
func New(planner Planner, registry *sites.Registry, limiter *ratelimit.Limiter, openSession SessionOpener, minRequired int) *Orchestrator {
	if minRequired < 1 {
		minRequired = 1
	}
	return &Orchestrator{
		planner:     planner,
		registry:    registry,
		limiter:     limiter,
		openSession: openSession,
		minRequired: minRequired,
	}
}

// Run executes one discovery run from free-text query to validated
// candidates. The returned state is always non-nil; on failure its Status is
// StatusFailed and ErrorMessage says why. The error return carries the same
// failure for callers that prefer error handling over state inspection.
func (o *Orchestrator) Run(ctx context.Context, query string) (*types.DiscoveryState, error) {
	state := types.NewDiscoveryState(query, nil, o.minRequired)

	params, err := o.planner.ParseIntent(ctx, query)
	if err != nil {
		return fail(state, fmt.Errorf("intent parsing failed: %w", err))
	}
	state.SearchParams = params

	return o.run(ctx, state)
}

// RunWithParams executes a discovery run from already-parsed parameters,
// skipping intent extraction.
func (o *Orchestrator) RunWithParams(ctx context.Context, params *types.SearchParameters) (*types.DiscoveryState, error) {
	params.ClampMaxResults()
	state := types.NewDiscoveryState("", params, o.minRequired)
	return o.run(ctx, state)
}

func (o *Orchestrator) run(ctx context.Context, state *types.DiscoveryState) (*types.DiscoveryState, error) {
	state.Status = types.StatusPlanning

	plan, err := o.planner.PlanActions(ctx, state.SearchParams)
	if err != nil {
		return fail(state, fmt.Errorf("action planning failed: %w", err))
	}
	state.Plan = plan
	state.EnqueueSources(plan.SourceNames())
	log.Printf("[discovery] plan: %v", plan.SourceNames())

	session, err := o.openSession(ctx)
	if err != nil {
		return fail(state, fmt.Errorf("failed to open browser session: %w", err))
	}
	defer session.Close()

	// The search/validate loop. Each iteration takes one source off the
	// queue, searches it, and re-validates the accumulated raw profiles.
	state.Status = types.StatusSearching
	searched, hardFailed := 0, 0
	for state.ShouldSearchMore() {
		if err := ctx.Err(); err != nil {
			return fail(state, err)
		}

		source, ok := state.NextSource()
		if !ok {
			break
		}
		searched++
		if !o.searchSource(ctx, state, session, source) {
			hardFailed++
		}

		state.Status = types.StatusValidating
		result := validation.ValidateProfiles(state.RawProfiles, state.SearchParams)
		state.ValidCandidates = result.Valid
		state.InvalidProfiles = result.Invalid
		log.Printf("[discovery] %d valid, %d invalid after %s", len(result.Valid), len(result.Invalid), source)

		if state.ShouldSearchMore() {
			state.Status = types.StatusSearching
		}
	}

	// A source that legitimately finds nothing is still a successful search.
	// The run fails only when every searched source errored and nothing was
	// ever collected.
	if searched > 0 && hardFailed == searched && len(state.RawProfiles) == 0 {
		return fail(state, fmt.Errorf("all sources failed: %s", state.Warnings[len(state.Warnings)-1]))
	}

	state.Status = types.StatusCompleted
	return state, nil
}

// searchSource runs one source and reports whether the search itself
// succeeded. Source-level failures are recorded as warnings, not run
// failures: the run moves on to the next planned source. An empty result set
// from a working source still counts as success.
func (o *Orchestrator) searchSource(ctx context.Context, state *types.DiscoveryState, session *browser.Session, source string) bool {
	defer state.MarkSearched(source)

	adapter := o.registry.Get(source)
	if adapter == nil {
		state.AddWarning(fmt.Sprintf("%s: no adapter registered", source))
		return false
	}

	if o.limiter != nil {
		if err := o.limiter.Check(ctx, "search:"+source); err != nil {
			var exceeded *ratelimit.ExceededError
			if errors.As(err, &exceeded) {
				state.AddWarning(fmt.Sprintf("%s: rate limited, retry after %s", source, exceeded.RetryAfter))
				return false
			}
			state.AddWarning(fmt.Sprintf("%s: rate limit check failed: %v", source, err))
			return false
		}
	}

	remaining := state.SearchParams.MaxResults - len(state.RawProfiles)
	profiles, err := adapter.Search(ctx, session, state.SearchParams, remaining)
	if err != nil {
		state.AddWarning(fmt.Sprintf("%s: %v", source, err))
		return false
	}
	state.RawProfiles = append(state.RawProfiles, profiles...)
	log.Printf("[discovery] %s returned %d profiles (%d raw total)", source, len(profiles), len(state.RawProfiles))
	return true
}

func fail(state *types.DiscoveryState, err error) (*types.DiscoveryState, error) {
	state.Status = types.StatusFailed
	state.ErrorMessage = err.Error()
	return state, err
}
