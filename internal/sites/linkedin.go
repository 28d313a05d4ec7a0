package sites

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/types"
)

const (
	linkedInURL       = "https://www.linkedin.com"
	linkedInLoginURL  = linkedInURL + "/login"
	linkedInSearchURL = linkedInURL + "/search/results/people/"

	// selectors for the people-search result page
	resultsContainerSelector = ".search-results-container"
	resultCardSelector       = ".reusable-search__result-container"
	cardNameSelector         = ".entity-result__title-text a"
	cardTitleSelector        = ".entity-result__primary-subtitle"
	cardLocationSelector     = ".entity-result__secondary-subtitle"
	openToWorkBadgeSelector  = ".image-badge-recruiter-entity-lockup__badge"
	nextButtonSelector       = "button.artdeco-pagination__button--next"

	// selectors for individual profile pages
	skillsSectionSelector = "section.skills-section"
	skillNameSelector     = "span.skill-name"
)

// LinkedIn is the deterministic adapter for LinkedIn people search.
type LinkedIn struct {
	creds           browser.Credentials
	extractionDelay time.Duration

	// login and loadPage are replaceable so the pagination loop can run
	// against canned pages without a live browser.
	login    func(session *browser.Session) error
	loadPage func(session *browser.Session, url, waitSelector string) (*goquery.Document, error)
}

// NewLinkedIn creates a LinkedIn adapter. extractionDelay is the pause between
// profile page visits; zero disables it.
func NewLinkedIn(creds browser.Credentials, extractionDelay time.Duration) *LinkedIn {
	l := &LinkedIn{creds: creds, extractionDelay: extractionDelay}
	l.login = l.ensureLoggedIn
	l.loadPage = loadDocument
	return l
}

func (l *LinkedIn) Name() string { return "linkedin" }

// loginSpec describes the LinkedIn login flow. A post-submit URL containing
// "feed" or "voyager" means the session is authenticated.
func (l *LinkedIn) loginSpec() browser.LoginSpec {
	return browser.LoginSpec{
		LoginURL:         linkedInLoginURL,
		UsernameSelector: "input#username",
		PasswordSelector: "input#password",
		SubmitSelector:   "button[type='submit']",
		SuccessMarkers:   []string{"feed", "voyager"},
	}
}

// Search pages through LinkedIn people-search results, then visits each
// profile page to extract skills. It stops at limit profiles or when the
// pagination next button is missing or disabled.
func (l *LinkedIn) Search(ctx context.Context, session *browser.Session, params *types.SearchParameters, limit int) ([]types.RawProfile, error) {
	if limit <= 0 {
		return nil, nil
	}

	if err := l.login(session); err != nil {
		return nil, &SearchError{Source: l.Name(), Message: "login failed", Cause: err}
	}

	searchURL := buildSearchURL(params)
	log.Printf("[linkedin] searching: %s", searchURL)

	var profiles []types.RawProfile
	for page := 1; len(profiles) < limit; page++ {
		if err := ctx.Err(); err != nil {
			return profiles, err
		}

		pageURL := searchURL
		if page > 1 {
			pageURL += "&page=" + strconv.Itoa(page)
		}
		doc, err := l.loadPage(session, pageURL, resultsContainerSelector)
		if err != nil {
			if page == 1 {
				return nil, &SearchError{Source: l.Name(), Message: "results page did not load", Cause: err}
			}
			log.Printf("[linkedin] page %d did not load, stopping pagination: %v", page, err)
			break
		}

		pageProfiles := parseResultCards(doc, limit-len(profiles))
		profiles = append(profiles, pageProfiles...)
		log.Printf("[linkedin] page %d yielded %d profiles (%d total)", page, len(pageProfiles), len(profiles))

		if !hasNextPage(doc) {
			break
		}
	}

	l.enrichProfiles(ctx, session, profiles, params.Skills)
	return profiles, nil
}

// ensureLoggedIn navigates to the homepage and runs the login flow when a
// login link or form is present.
func (l *LinkedIn) ensureLoggedIn(session *browser.Session) error {
	if err := session.Navigate(linkedInURL); err != nil {
		return err
	}
	required, err := session.IsLoginRequired()
	if err != nil {
		return err
	}
	if !required {
		return nil
	}
	log.Printf("[linkedin] login required, authenticating")
	return session.Login(l.loginSpec(), l.creds)
}

// enrichProfiles visits each profile page and fills in skills. Failures on
// individual profiles are logged and skipped so one broken page does not sink
// the batch.
func (l *LinkedIn) enrichProfiles(ctx context.Context, session *browser.Session, profiles []types.RawProfile, requestedSkills []string) {
	for i := range profiles {
		if ctx.Err() != nil {
			return
		}
		if profiles[i].ProfileURL == "" {
			continue
		}

		doc, err := l.loadPage(session, profiles[i].ProfileURL, "body")
		if err != nil {
			log.Printf("[linkedin] failed to load profile %s: %v", profiles[i].ProfileURL, err)
			continue
		}

		skills := parseSkillsSection(doc)
		if len(skills) == 0 && len(requestedSkills) > 0 {
			skills = matchSkillsInText(doc.Text(), requestedSkills)
		}
		profiles[i].Skills = skills

		if l.extractionDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.extractionDelay):
			}
		}
	}
}

// buildSearchURL constructs the people-search URL. Spaces are encoded as %20
// to match the URLs LinkedIn itself produces.
func buildSearchURL(params *types.SearchParameters) string {
	encode := func(s string) string { return strings.ReplaceAll(s, " ", "%20") }

	url := linkedInSearchURL + "?keywords=" + encode(params.JobTitle)
	url += "&location=" + encode(params.Location)
	if params.Company != "" {
		url += "&currentCompany=" + encode(params.Company)
	}
	return url
}

// loadDocument navigates to url, waits for waitSelector, and parses the page
// into a goquery document.
func loadDocument(session *browser.Session, url, waitSelector string) (*goquery.Document, error) {
	if err := session.Navigate(url); err != nil {
		return nil, err
	}
	if err := session.WaitVisible(waitSelector); err != nil {
		return nil, err
	}
	html, err := session.OuterHTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// parseResultCards extracts up to max profiles from a search results page.
// Cards without a name link are skipped.
func parseResultCards(doc *goquery.Document, max int) []types.RawProfile {
	var profiles []types.RawProfile

	doc.Find(resultCardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(profiles) >= max {
			return false
		}

		nameLink := card.Find(cardNameSelector).First()
		if nameLink.Length() == 0 {
			return true
		}
		name := firstLine(nameLink.Text())
		if name == "" {
			return true
		}

		profileURL, _ := nameLink.Attr("href")
		if idx := strings.Index(profileURL, "?"); idx >= 0 {
			profileURL = profileURL[:idx]
		}

		title := strings.TrimSpace(card.Find(cardTitleSelector).First().Text())
		location := strings.TrimSpace(card.Find(cardLocationSelector).First().Text())
		title, company := splitTitleCompany(title)

		profiles = append(profiles, types.RawProfile{
			Name:           name,
			JobTitle:       title,
			Location:       location,
			CurrentCompany: company,
			OpenToWork:     card.Find(openToWorkBadgeSelector).Length() > 0,
			ProfileURL:     profileURL,
			Source:         "linkedin",
		})
		return true
	})

	return profiles
}

// hasNextPage reports whether the pagination next button is present and
// enabled.
func hasNextPage(doc *goquery.Document) bool {
	next := doc.Find(nextButtonSelector).First()
	if next.Length() == 0 {
		return false
	}
	_, disabled := next.Attr("disabled")
	return !disabled
}

// parseSkillsSection extracts declared skills from a profile page.
func parseSkillsSection(doc *goquery.Document) []string {
	var skills []string
	doc.Find(skillsSectionSelector).Find(skillNameSelector).Each(func(_ int, s *goquery.Selection) {
		if skill := strings.TrimSpace(s.Text()); skill != "" {
			skills = append(skills, skill)
		}
	})
	return skills
}

// matchSkillsInText returns the requested skills that appear anywhere in the
// page text, case-insensitively. Used as a fallback when a profile has no
// explicit skills section.
func matchSkillsInText(text string, requested []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, skill := range requested {
		if skill == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}
	return matched
}

// splitTitleCompany splits headlines of the form "Title at Company".
func splitTitleCompany(title string) (string, string) {
	parts := strings.SplitN(title, " at ", 2)
	if len(parts) != 2 {
		return title, ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// firstLine returns the first non-empty line, trimmed. LinkedIn name links
// contain hidden accessibility text on later lines.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
