package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/ratelimit"
	"github.com/jonathan/talent-scout/internal/sites"
	"github.com/jonathan/talent-scout/internal/types"
)

type fakePlanner struct {
	params    *types.SearchParameters
	parseErr  error
	plan      *types.ActionPlan
	planErr   error
	planCalls int
}

func (f *fakePlanner) ParseIntent(ctx context.Context, queryText string) (*types.SearchParameters, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.params, nil
}

func (f *fakePlanner) PlanActions(ctx context.Context, params *types.SearchParameters) (*types.ActionPlan, error) {
	f.planCalls++
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.plan, nil
}

type fakeAdapter struct {
	name     string
	profiles []types.RawProfile
	err      error
	calls    int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(ctx context.Context, session *browser.Session, params *types.SearchParameters, limit int) ([]types.RawProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.profiles) > limit {
		return f.profiles[:limit], nil
	}
	return f.profiles, nil
}

func nilSession(ctx context.Context) (*browser.Session, error) {
	return nil, nil
}

func plan(sources ...string) *types.ActionPlan {
	p := &types.ActionPlan{}
	for i, name := range sources {
		p.Sources = append(p.Sources, types.PlannedSource{Name: name, Priority: i + 1})
	}
	return p
}

func rawProfiles(prefix string, n int) []types.RawProfile {
	out := make([]types.RawProfile, n)
	for i := range out {
		out[i] = types.RawProfile{Name: fmt.Sprintf("%s-%d", prefix, i), Skills: []string{"go"}}
	}
	return out
}

func searchParams() *types.SearchParameters {
	return &types.SearchParameters{JobTitle: "Engineer", Location: "Berlin", Skills: []string{"go"}, MaxResults: 50}
}

func TestRunCompletesFromSingleSource(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 5)}
	gh := &fakeAdapter{name: "github", profiles: rawProfiles("gh", 5)}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin", "github")}
	o := New(planner, sites.NewRegistry(li, gh), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "find go engineers in berlin")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Len(t, state.ValidCandidates, 5)
	// enough candidates after linkedin, so github is never searched
	assert.Equal(t, 1, li.calls)
	assert.Equal(t, 0, gh.calls)
	assert.True(t, state.WebsitesSearched["linkedin"])
	assert.False(t, state.WebsitesSearched["github"])
}

func TestRunFallsThroughToSecondSource(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 1)}
	gh := &fakeAdapter{name: "github", profiles: rawProfiles("gh", 4)}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin", "github")}
	o := New(planner, sites.NewRegistry(li, gh), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "find go engineers")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Equal(t, 1, li.calls)
	assert.Equal(t, 1, gh.calls)
	assert.Len(t, state.ValidCandidates, 5)
}

func TestRunCompletesWithWarningWhenSourceFails(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", err: errors.New("page did not load")}
	gh := &fakeAdapter{name: "github", profiles: rawProfiles("gh", 3)}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin", "github")}
	o := New(planner, sites.NewRegistry(li, gh), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "find go engineers")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Len(t, state.ValidCandidates, 3)
	require.Len(t, state.Warnings, 1)
	assert.Contains(t, state.Warnings[0], "linkedin")
}

func TestRunCompletesWhenOnlyResultIsAnEmptySource(t *testing.T) {
	// linkedin works but finds nobody; github errors. The run must complete
	// with a warning, not fail: one source did search successfully.
	li := &fakeAdapter{name: "linkedin"}
	gh := &fakeAdapter{name: "github", err: errors.New("page did not load")}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin", "github")}
	o := New(planner, sites.NewRegistry(li, gh), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "find go engineers")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Empty(t, state.ValidCandidates)
	require.Len(t, state.Warnings, 1)
	assert.Contains(t, state.Warnings[0], "github")
}

func TestRunFailsWhenAllSourcesFail(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", err: errors.New("login failed")}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin")}
	o := New(planner, sites.NewRegistry(li), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "find go engineers")
	require.Error(t, err)
	assert.Equal(t, types.StatusFailed, state.Status)
	assert.NotEmpty(t, state.ErrorMessage)
}

func TestRunFailsOnIntentParseError(t *testing.T) {
	planner := &fakePlanner{parseErr: errors.New("not parseable")}
	o := New(planner, sites.NewRegistry(), nil, nilSession, 3)

	state, err := o.Run(context.Background(), "gibberish")
	require.Error(t, err)
	assert.Equal(t, types.StatusFailed, state.Status)
	assert.Equal(t, 0, planner.planCalls)
}

func TestRunRespectsRateLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	limiter := ratelimit.New(store, 1, time.Hour)
	// burn the single allowed search for linkedin
	err := limiter.Check(context.Background(), "search:linkedin")
	require.NoError(t, err)

	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 5)}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin")}
	o := New(planner, sites.NewRegistry(li), limiter, nilSession, 3)

	state, runErr := o.Run(context.Background(), "find go engineers")
	require.Error(t, runErr)
	assert.Equal(t, types.StatusFailed, state.Status)
	assert.Equal(t, 0, li.calls)
	require.NotEmpty(t, state.Warnings)
	assert.Contains(t, state.Warnings[0], "rate limited")
}

func TestRunWithParamsSkipsIntentParsing(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 3)}
	planner := &fakePlanner{parseErr: errors.New("should not be called"), plan: plan("linkedin")}
	o := New(planner, sites.NewRegistry(li), nil, nilSession, 3)

	state, err := o.RunWithParams(context.Background(), searchParams())
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Len(t, state.ValidCandidates, 3)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 5)}
	planner := &fakePlanner{params: searchParams(), plan: plan("linkedin")}
	o := New(planner, sites.NewRegistry(li), nil, nilSession, 3)

	state, err := o.Run(ctx, "find go engineers")
	require.Error(t, err)
	assert.Equal(t, types.StatusFailed, state.Status)
	assert.Equal(t, 0, li.calls)
}

func TestRunBoundsTotalByMaxResults(t *testing.T) {
	li := &fakeAdapter{name: "linkedin", profiles: rawProfiles("li", 10)}
	gh := &fakeAdapter{name: "github", profiles: rawProfiles("gh", 10)}
	params := searchParams()
	params.MaxResults = 12
	planner := &fakePlanner{params: params, plan: plan("linkedin", "github")}
	// high minimum forces it to keep searching after linkedin
	o := New(planner, sites.NewRegistry(li, gh), nil, nilSession, 11)

	state, err := o.Run(context.Background(), "find go engineers")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, state.Status)
	assert.Len(t, state.RawProfiles, 12)
}
