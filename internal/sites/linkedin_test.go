package sites

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/types"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const searchResultsHTML = `
<div class="search-results-container">
	<ul>
		<li class="reusable-search__result-container">
			<span class="entity-result__title-text">
				<a href="https://www.linkedin.com/in/jane-doe?miniProfile=abc">Jane Doe
view profile</a>
			</span>
			<div class="entity-result__primary-subtitle">Senior Backend Engineer at Acme Corp</div>
			<div class="entity-result__secondary-subtitle">Berlin, Germany</div>
			<div class="image-badge-recruiter-entity-lockup__badge"></div>
		</li>
		<li class="reusable-search__result-container">
			<span class="entity-result__title-text">
				<a href="https://www.linkedin.com/in/bob-smith">Bob Smith</a>
			</span>
			<div class="entity-result__primary-subtitle">Platform Engineer</div>
			<div class="entity-result__secondary-subtitle">Hamburg, Germany</div>
		</li>
		<li class="reusable-search__result-container">
			<div class="entity-result__primary-subtitle">LinkedIn Member</div>
		</li>
	</ul>
	<button class="artdeco-pagination__button--next" type="button">Next</button>
</div>`

func TestParseResultCards(t *testing.T) {
	doc := docFromHTML(t, searchResultsHTML)

	profiles := parseResultCards(doc, 10)
	require.Len(t, profiles, 2)

	jane := profiles[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "Senior Backend Engineer", jane.JobTitle)
	assert.Equal(t, "Acme Corp", jane.CurrentCompany)
	assert.Equal(t, "Berlin, Germany", jane.Location)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", jane.ProfileURL)
	assert.True(t, jane.OpenToWork)
	assert.Equal(t, "linkedin", jane.Source)

	bob := profiles[1]
	assert.Equal(t, "Bob Smith", bob.Name)
	assert.Equal(t, "Platform Engineer", bob.JobTitle)
	assert.Empty(t, bob.CurrentCompany)
	assert.False(t, bob.OpenToWork)
}

func TestParseResultCardsRespectsMax(t *testing.T) {
	doc := docFromHTML(t, searchResultsHTML)

	profiles := parseResultCards(doc, 1)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Jane Doe", profiles[0].Name)
}

func TestHasNextPage(t *testing.T) {
	assert.True(t, hasNextPage(docFromHTML(t, searchResultsHTML)))

	disabled := docFromHTML(t, `<button class="artdeco-pagination__button--next" disabled>Next</button>`)
	assert.False(t, hasNextPage(disabled))

	missing := docFromHTML(t, `<div class="search-results-container"></div>`)
	assert.False(t, hasNextPage(missing))
}

func TestParseSkillsSection(t *testing.T) {
	doc := docFromHTML(t, `
		<section class="skills-section">
			<span class="skill-name">Go</span>
			<span class="skill-name"> PostgreSQL </span>
			<span class="skill-name"></span>
		</section>`)

	assert.Equal(t, []string{"Go", "PostgreSQL"}, parseSkillsSection(doc))
}

func TestMatchSkillsInText(t *testing.T) {
	text := "Seasoned engineer working with Go, Kubernetes and PostgreSQL in production."

	matched := matchSkillsInText(text, []string{"go", "Rust", "postgresql"})
	assert.Equal(t, []string{"go", "postgresql"}, matched)

	assert.Empty(t, matchSkillsInText(text, nil))
}

func TestBuildSearchURL(t *testing.T) {
	params := &types.SearchParameters{
		JobTitle: "Backend Engineer",
		Location: "San Francisco Bay Area",
	}
	url := buildSearchURL(params)
	assert.Equal(t, "https://www.linkedin.com/search/results/people/?keywords=Backend%20Engineer&location=San%20Francisco%20Bay%20Area", url)

	params.Company = "Acme Corp"
	assert.Contains(t, buildSearchURL(params), "&currentCompany=Acme%20Corp")
}

func TestSplitTitleCompany(t *testing.T) {
	title, company := splitTitleCompany("Staff Engineer at Stripe")
	assert.Equal(t, "Staff Engineer", title)
	assert.Equal(t, "Stripe", company)

	title, company = splitTitleCompany("Freelance Consultant")
	assert.Equal(t, "Freelance Consultant", title)
	assert.Empty(t, company)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Jane Doe", firstLine("\n  Jane Doe\nView profile"))
	assert.Empty(t, firstLine("  \n \n"))
}

// resultsPage builds a search results page with the given candidate names and
// an optional enabled next button. Cards carry no profile link so the skill
// enrichment pass has nothing to visit.
func resultsPage(withNext bool, names ...string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="search-results-container"><ul>`)
	for _, name := range names {
		sb.WriteString(`<li class="reusable-search__result-container">`)
		sb.WriteString(`<span class="entity-result__title-text"><a>` + name + `</a></span>`)
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
	if withNext {
		sb.WriteString(`<button class="artdeco-pagination__button--next" type="button">Next</button>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func TestSearchStopsWhenPaginationEnds(t *testing.T) {
	pages := []string{
		resultsPage(true, "One", "Two"),
		resultsPage(true, "Three", "Four"),
		resultsPage(false, "Five"),
	}

	li := NewLinkedIn(browser.Credentials{}, 0)
	li.login = func(*browser.Session) error { return nil }

	var loadedURLs []string
	li.loadPage = func(_ *browser.Session, url, _ string) (*goquery.Document, error) {
		page := len(loadedURLs)
		loadedURLs = append(loadedURLs, url)
		require.Less(t, page, len(pages), "searched past the last page")
		return docFromHTML(t, pages[page]), nil
	}

	params := &types.SearchParameters{JobTitle: "Engineer", Location: "Berlin"}
	profiles, err := li.Search(context.Background(), nil, params, 100)
	require.NoError(t, err)

	// all three pages were visited, then the missing next control stopped it
	require.Len(t, loadedURLs, 3)
	assert.NotContains(t, loadedURLs[0], "&page=")
	assert.Contains(t, loadedURLs[1], "&page=2")
	assert.Contains(t, loadedURLs[2], "&page=3")
	require.Len(t, profiles, 5)
	assert.Equal(t, "Five", profiles[4].Name)
}

func TestSearchStopsAtLimitBeforePaginationEnds(t *testing.T) {
	li := NewLinkedIn(browser.Credentials{}, 0)
	li.login = func(*browser.Session) error { return nil }

	loads := 0
	li.loadPage = func(_ *browser.Session, _, _ string) (*goquery.Document, error) {
		loads++
		return docFromHTML(t, resultsPage(true, "One", "Two")), nil
	}

	params := &types.SearchParameters{JobTitle: "Engineer", Location: "Berlin"}
	profiles, err := li.Search(context.Background(), nil, params, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, loads)
	assert.Len(t, profiles, 3)
}
