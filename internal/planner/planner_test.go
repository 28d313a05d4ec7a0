package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/types"
)

// fakeClient returns canned responses keyed off call order.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return "fake" }

func (f *fakeClient) Close() error { return nil }

func TestParseIntent(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"job_title": "Backend Engineer", "location": "Berlin", "company": null, "skills": ["go", "postgres"], "max_results": 30}`,
	}}
	p := New(client)

	params, err := p.ParseIntent(context.Background(), "find backend engineers in Berlin who know Go and Postgres, up to 30")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", params.JobTitle)
	assert.Equal(t, "Berlin", params.Location)
	assert.Empty(t, params.Company)
	assert.Equal(t, []string{"go", "postgres"}, params.Skills)
	assert.Equal(t, 30, params.MaxResults)
}

func TestParseIntentDefaultsMaxResults(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"job_title": "Data Scientist", "location": "Remote", "company": null, "skills": [], "max_results": null}`,
	}}
	p := New(client)

	params, err := p.ParseIntent(context.Background(), "data scientists, remote")
	require.NoError(t, err)
	assert.Equal(t, 20, params.MaxResults)
}

func TestParseIntentStripsCodeFence(t *testing.T) {
	client := &fakeClient{responses: []string{
		"```json\n{\"job_title\": \"SRE\", \"location\": \"London\"}\n```",
	}}
	p := New(client)

	params, err := p.ParseIntent(context.Background(), "SREs in London")
	require.NoError(t, err)
	assert.Equal(t, "SRE", params.JobTitle)
}

func TestParseIntentMissingRequiredFields(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"job_title": "Engineer", "location": null}`,
	}}
	p := New(client)

	_, err := p.ParseIntent(context.Background(), "engineers somewhere")
	require.Error(t, err)
	var parseErr *IntentParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseIntentEmptyQuery(t *testing.T) {
	p := New(&fakeClient{})

	_, err := p.ParseIntent(context.Background(), "   ")
	require.Error(t, err)
	var parseErr *IntentParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseIntentInvalidJSON(t *testing.T) {
	client := &fakeClient{responses: []string{"I could not understand the query, sorry!"}}
	p := New(client)

	_, err := p.ParseIntent(context.Background(), "please find people")
	require.Error(t, err)
	var parseErr *IntentParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseIntentClientError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("quota exhausted")}}
	p := New(client)

	_, err := p.ParseIntent(context.Background(), "golang devs in Austin")
	require.Error(t, err)
	var parseErr *IntentParseError
	require.True(t, errors.As(err, &parseErr))
	assert.ErrorContains(t, err, "quota exhausted")
}

func TestPlanActions(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"sources": [{"name": "github", "priority": 2}, {"name": "linkedin", "priority": 1}], "reasoning": "linkedin has the widest reach"}`,
	}}
	p := New(client)

	plan, err := p.PlanActions(context.Background(), &types.SearchParameters{JobTitle: "Engineer", Location: "NYC"})
	require.NoError(t, err)
	require.Len(t, plan.Sources, 2)
	assert.Equal(t, "linkedin", plan.Sources[0].Name)
	assert.Equal(t, "github", plan.Sources[1].Name)
	assert.Equal(t, "linkedin has the widest reach", plan.Reasoning)
}

func TestPlanActionsFiltersUnknownSources(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"sources": [{"name": "facebook", "priority": 1}, {"name": "LinkedIn", "priority": 2}], "reasoning": ""}`,
	}}
	p := New(client)

	plan, err := p.PlanActions(context.Background(), &types.SearchParameters{JobTitle: "Engineer", Location: "NYC"})
	require.NoError(t, err)
	require.Len(t, plan.Sources, 1)
	assert.Equal(t, "linkedin", plan.Sources[0].Name)
}

func TestPlanActionsFallsBackOnError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("model unavailable")}}
	p := New(client)

	plan, err := p.PlanActions(context.Background(), &types.SearchParameters{JobTitle: "Engineer", Location: "NYC"})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Sources)
	assert.Equal(t, "linkedin", plan.Sources[0].Name)
}

func TestPlanActionsFallsBackOnEmptyPlan(t *testing.T) {
	client := &fakeClient{responses: []string{`{"sources": [], "reasoning": "none apply"}`}}
	p := New(client)

	plan, err := p.PlanActions(context.Background(), &types.SearchParameters{JobTitle: "Engineer", Location: "NYC"})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Sources)
}
