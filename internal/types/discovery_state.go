package types

// Status tracks where a discovery run is in its lifecycle.
type Status string

// Discovery run statuses. Completed and Failed are terminal.
const (
	StatusInitialized Status = "initialized"
	StatusPlanning    Status = "planning"
	StatusSearching   Status = "searching"
	StatusValidating  Status = "validating"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Terminal reports whether the status stops further orchestration.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DiscoveryState is the mutable working state of one discovery run. It is
// owned by a single run and never shared across runs.
type DiscoveryState struct {
	Query               string             `json:"query,omitempty"`
	SearchParams        *SearchParameters  `json:"search_params,omitempty"`
	Plan                *ActionPlan        `json:"plan,omitempty"`
	WebsitesSearched    map[string]bool    `json:"websites_searched"`
	WebsitesToSearch    []string           `json:"websites_to_search"`
	RawProfiles         []RawProfile       `json:"raw_profiles"`
	ValidCandidates     []CandidateProfile `json:"valid_candidates"`
	InvalidProfiles     []RawProfile       `json:"invalid_profiles"`
	MinRequiredProfiles int                `json:"min_required_profiles"`
	Status              Status             `json:"status"`
	ErrorMessage        string             `json:"error_message,omitempty"`
	Warnings            []string           `json:"warnings,omitempty"`
}

// NewDiscoveryState creates the initial state for a run.
func NewDiscoveryState(query string, params *SearchParameters, minRequired int) *DiscoveryState {
	return &DiscoveryState{
		Query:               query,
		SearchParams:        params,
		WebsitesSearched:    make(map[string]bool),
		MinRequiredProfiles: minRequired,
		Status:              StatusInitialized,
	}
}

// HasEnoughProfiles reports whether the run has collected the minimum number
// of valid candidates.
func (s *DiscoveryState) HasEnoughProfiles() bool {
	return len(s.ValidCandidates) >= s.MinRequiredProfiles
}

// ShouldSearchMore is true only when the run still needs candidates and
// unsearched sources remain.
func (s *DiscoveryState) ShouldSearchMore() bool {
	return !s.HasEnoughProfiles() && len(s.WebsitesToSearch) > 0
}

// EnqueueSources adds sources to the remaining queue, skipping any that were
// already searched or already queued.
func (s *DiscoveryState) EnqueueSources(names []string) {
	queued := make(map[string]bool, len(s.WebsitesToSearch))
	for _, n := range s.WebsitesToSearch {
		queued[n] = true
	}
	for _, n := range names {
		if s.WebsitesSearched[n] || queued[n] {
			continue
		}
		s.WebsitesToSearch = append(s.WebsitesToSearch, n)
		queued[n] = true
	}
}

// NextSource dequeues the highest-priority remaining source. Returns false
// when the queue is empty.
func (s *DiscoveryState) NextSource() (string, bool) {
	if len(s.WebsitesToSearch) == 0 {
		return "", false
	}
	name := s.WebsitesToSearch[0]
	s.WebsitesToSearch = s.WebsitesToSearch[1:]
	return name, true
}

// MarkSearched records a source as searched. Idempotent.
func (s *DiscoveryState) MarkSearched(name string) {
	s.WebsitesSearched[name] = true
}

// AddWarning records a non-fatal run-level warning.
func (s *DiscoveryState) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
