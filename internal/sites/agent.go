package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/prompts"
	"github.com/jonathan/talent-scout/internal/types"
)

// profilesSchema constrains what the extraction model may return for a page.
// name is the only hard requirement; everything else is best-effort.
const profilesSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"job_title": {"type": "string"},
			"location": {"type": "string"},
			"current_company": {"type": "string"},
			"headline": {"type": "string"},
			"skills": {"type": "array", "items": {"type": "string"}},
			"open_to_work": {"type": "boolean"},
			"profile_url": {"type": "string"}
		}
	}
}`

// AgentAdapter is a generic LLM-driven adapter for sources that have no
// deterministic parser. It renders the search page in the browser and asks
// the model to extract candidate listings from the visible text.
type AgentAdapter struct {
	name      string
	searchURL func(params *types.SearchParameters) string
	client    llm.Client
}

// NewAgent creates an LLM-driven adapter for the named source.
func NewAgent(name string, searchURL func(params *types.SearchParameters) string, client llm.Client) *AgentAdapter {
	return &AgentAdapter{name: name, searchURL: searchURL, client: client}
}

// NewWellfound creates the adapter for Wellfound (formerly AngelList Talent).
func NewWellfound(client llm.Client) *AgentAdapter {
	return NewAgent("wellfound", func(params *types.SearchParameters) string {
		role := strings.ReplaceAll(strings.ToLower(params.JobTitle), " ", "-")
		return "https://wellfound.com/role/" + role
	}, client)
}

// NewGitHub creates the adapter for GitHub user search.
func NewGitHub(client llm.Client) *AgentAdapter {
	return NewAgent("github", func(params *types.SearchParameters) string {
		query := params.JobTitle
		if params.Location != "" {
			query += " location:\"" + params.Location + "\""
		}
		return "https://github.com/search?type=users&q=" + strings.ReplaceAll(query, " ", "+")
	}, client)
}

func (a *AgentAdapter) Name() string { return a.name }

// Search loads the source's search page and extracts profiles from its text
// via the LLM. The model output is schema-validated before use; anything that
// fails validation is an ExtractionError rather than partial garbage.
func (a *AgentAdapter) Search(ctx context.Context, session *browser.Session, params *types.SearchParameters, limit int) ([]types.RawProfile, error) {
	if limit <= 0 {
		return nil, nil
	}

	url := a.searchURL(params)
	log.Printf("[%s] searching: %s", a.name, url)

	if err := session.Navigate(url); err != nil {
		return nil, &SearchError{Source: a.name, Message: "navigation failed", Cause: err}
	}
	pageText, err := session.BodyText()
	if err != nil {
		return nil, &SearchError{Source: a.name, Message: "could not read page text", Cause: err}
	}
	if strings.TrimSpace(pageText) == "" {
		return nil, &SearchError{Source: a.name, Message: "page is empty"}
	}

	prompt := buildProfileExtractionPrompt(a.name, params, pageText, limit)
	responseText, err := a.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &ExtractionError{Source: a.name, Message: "LLM extraction failed", Cause: err}
	}

	profiles, err := decodeExtractedProfiles(llm.CleanJSONBlock(responseText))
	if err != nil {
		return nil, &ExtractionError{Source: a.name, Message: "invalid extraction response", Cause: err}
	}

	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	for i := range profiles {
		profiles[i].Source = a.name
	}
	return profiles, nil
}

// decodeExtractedProfiles validates model output against profilesSchema and
// decodes it.
func decodeExtractedProfiles(jsonText string) ([]types.RawProfile, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(profilesSchema),
		gojsonschema.NewStringLoader(jsonText),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("response does not match profile schema: %s", strings.Join(details, "; "))
	}

	var profiles []types.RawProfile
	if err := json.Unmarshal([]byte(jsonText), &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

const maxPageTextChars = 20000

func buildProfileExtractionPrompt(source string, params *types.SearchParameters, pageText string, limit int) string {
	if len(pageText) > maxPageTextChars {
		pageText = pageText[:maxPageTextChars]
	}

	template := prompts.MustGet("sites.json", "extract-profiles")
	return prompts.Format(template, map[string]string{
		"Limit":    strconv.Itoa(limit),
		"Source":   source,
		"JobTitle": params.JobTitle,
		"Location": params.Location,
		"PageText": pageText,
	})
}
