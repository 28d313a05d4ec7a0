// Package types defines the shared data structures for candidate discovery.
package types

// DefaultMaxResults is used when a query does not specify a result cap.
const DefaultMaxResults = 20

// MaxResultsCeiling is the hard upper bound on results per discovery run.
const MaxResultsCeiling = 100

// SearchParameters holds the canonical search criteria for a discovery run.
// Immutable once a run starts.
type SearchParameters struct {
	JobTitle   string   `json:"job_title" validate:"required"`
	Location   string   `json:"location" validate:"required"`
	Company    string   `json:"company,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	MaxResults int      `json:"max_results" validate:"min=1,max=100"`
}

// ClampMaxResults normalizes MaxResults into [1, MaxResultsCeiling],
// applying the default when unset.
func (p *SearchParameters) ClampMaxResults() {
	if p.MaxResults == 0 {
		p.MaxResults = DefaultMaxResults
	}
	if p.MaxResults < 1 {
		p.MaxResults = 1
	}
	if p.MaxResults > MaxResultsCeiling {
		p.MaxResults = MaxResultsCeiling
	}
}

// ActionPlan ranks which sources to query for a run. Sources are consumed
// (popped) as they are searched.
type ActionPlan struct {
	Sources   []PlannedSource `json:"sources"`
	Reasoning string          `json:"reasoning,omitempty"`
}

// PlannedSource is one source in an ActionPlan. Lower priority means
// searched earlier.
type PlannedSource struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// SourceNames returns the plan's source names in priority order.
func (p *ActionPlan) SourceNames() []string {
	names := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		names = append(names, s.Name)
	}
	return names
}
