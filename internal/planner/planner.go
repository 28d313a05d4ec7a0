// Package planner turns free-text hiring queries into canonical search
// parameters and ranks which sources to query, using LLM structured extraction.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/prompts"
	"github.com/jonathan/talent-scout/internal/types"
)

// KnownSources are the site adapters the planner may rank, in default
// priority order.
var KnownSources = []string{"linkedin", "wellfound", "github"}

// Planner drives intent parsing and action planning through an LLM client.
type Planner struct {
	client   llm.Client
	validate *validator.Validate
}

// New creates a planner over an LLM client.
func New(client llm.Client) *Planner {
	return &Planner{
		client:   client,
		validate: validator.New(),
	}
}

// parsedIntent mirrors the extraction schema. Pointer fields distinguish
// "absent" from zero values so ambiguous input stays null instead of being
// guessed.
type parsedIntent struct {
	JobTitle   *string  `json:"job_title"`
	Location   *string  `json:"location"`
	Company    *string  `json:"company"`
	Skills     []string `json:"skills"`
	MaxResults *int     `json:"max_results"`
}

// ParseIntent extracts SearchParameters from a free-text query. job_title and
// location are required; a response that cannot be coerced to the schema is an
// *IntentParseError, never a guessed default.
func (p *Planner) ParseIntent(ctx context.Context, queryText string) (*types.SearchParameters, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, &IntentParseError{Message: "query text is empty"}
	}

	prompt := llm.BuildExtractionPrompt(llm.SearchIntentSchema(), queryText)
	responseText, err := p.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &IntentParseError{Message: "intent extraction call failed", Cause: err}
	}

	var intent parsedIntent
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &intent); err != nil {
		return nil, &IntentParseError{Message: "intent response is not valid JSON", Cause: err}
	}

	params := &types.SearchParameters{
		Skills: intent.Skills,
	}
	if intent.JobTitle != nil {
		params.JobTitle = strings.TrimSpace(*intent.JobTitle)
	}
	if intent.Location != nil {
		params.Location = strings.TrimSpace(*intent.Location)
	}
	if intent.Company != nil {
		params.Company = strings.TrimSpace(*intent.Company)
	}
	if intent.MaxResults != nil {
		params.MaxResults = *intent.MaxResults
	}
	params.ClampMaxResults()

	if err := p.validate.Struct(params); err != nil {
		return nil, &IntentParseError{
			Message: "extracted parameters are incomplete (job_title and location are required)",
			Cause:   err,
		}
	}

	log.Printf("[planner] parsed intent: %q in %q (skills: %v, max %d)",
		params.JobTitle, params.Location, params.Skills, params.MaxResults)
	return params, nil
}

// plannedActions mirrors the planning response shape.
type plannedActions struct {
	Sources []struct {
		Name     string `json:"name"`
		Priority int    `json:"priority"`
	} `json:"sources"`
	Reasoning string `json:"reasoning"`
}

// PlanActions ranks the known sources for the given parameters. The returned
// plan is never empty: when the model response is unusable the planner falls
// back to the default source order, since an empty plan would stall the run.
func (p *Planner) PlanActions(ctx context.Context, params *types.SearchParameters) (*types.ActionPlan, error) {
	prompt := buildPlanningPrompt(params)

	responseText, err := p.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("[planner] planning call failed, using default plan: %v", err)
		return defaultPlan(), nil
	}

	var planned plannedActions
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &planned); err != nil {
		log.Printf("[planner] planning response unusable, using default plan: %v", err)
		return defaultPlan(), nil
	}

	plan := &types.ActionPlan{Reasoning: planned.Reasoning}
	for _, s := range planned.Sources {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if !isKnownSource(name) {
			continue
		}
		plan.Sources = append(plan.Sources, types.PlannedSource{Name: name, Priority: s.Priority})
	}

	if len(plan.Sources) == 0 {
		log.Printf("[planner] plan contained no known sources, using default plan")
		return defaultPlan(), nil
	}

	sortByPriority(plan.Sources)
	return plan, nil
}

func buildPlanningPrompt(params *types.SearchParameters) string {
	search := fmt.Sprintf("%s in %s", params.JobTitle, params.Location)
	if params.Company != "" {
		search += ", company " + params.Company
	}
	if len(params.Skills) > 0 {
		search += ", skills " + strings.Join(params.Skills, ", ")
	}

	template := prompts.MustGet("planner.json", "plan-sources")
	return prompts.Format(template, map[string]string{
		"Sources": strings.Join(KnownSources, ", "),
		"Search":  search,
	})
}

func defaultPlan() *types.ActionPlan {
	plan := &types.ActionPlan{Reasoning: "default source order"}
	for i, name := range KnownSources {
		plan.Sources = append(plan.Sources, types.PlannedSource{Name: name, Priority: i + 1})
	}
	return plan
}

func isKnownSource(name string) bool {
	for _, s := range KnownSources {
		if s == name {
			return true
		}
	}
	return false
}

// sortByPriority is a stable insertion sort; plans are tiny.
func sortByPriority(sources []types.PlannedSource) {
	for i := 1; i < len(sources); i++ {
		for j := i; j > 0 && sources[j].Priority < sources[j-1].Priority; j-- {
			sources[j], sources[j-1] = sources[j-1], sources[j]
		}
	}
}
