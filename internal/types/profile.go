package types

import (
	"time"

	"github.com/google/uuid"
)

// RawProfile is an unvalidated profile extracted from a single source.
// It only lives between extraction and validation.
type RawProfile struct {
	Name           string   `json:"name"`
	JobTitle       string   `json:"job_title,omitempty"`
	Location       string   `json:"location,omitempty"`
	CurrentCompany string   `json:"current_company,omitempty"`
	Headline       string   `json:"headline,omitempty"`
	About          string   `json:"about,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	Education      string   `json:"education,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	OpenToWork     bool     `json:"open_to_work,omitempty"`
	ProfileURL     string   `json:"profile_url,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// CandidateProfile is a validated, scored profile ready for persistence.
type CandidateProfile struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title,omitempty"`
	Location       string    `json:"location,omitempty"`
	CurrentCompany string    `json:"current_company,omitempty"`
	Skills         []string  `json:"skills"`
	OpenToWork     bool      `json:"open_to_work"`
	ProfileURL     string    `json:"profile_url,omitempty"`
	Source         string    `json:"source,omitempty"`
	MatchedSkills  []string  `json:"matched_skills"`
	MatchScore     float64   `json:"match_score"`
	MatchReasons   []string  `json:"match_reasons"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCandidateProfile promotes a raw profile into a candidate with a fresh
// identity. Scoring fields are filled in by the validator.
func NewCandidateProfile(raw RawProfile) CandidateProfile {
	return CandidateProfile{
		ID:             uuid.New(),
		Name:           raw.Name,
		Title:          raw.JobTitle,
		Location:       raw.Location,
		CurrentCompany: raw.CurrentCompany,
		Skills:         raw.Skills,
		OpenToWork:     raw.OpenToWork,
		ProfileURL:     raw.ProfileURL,
		Source:         raw.Source,
		CreatedAt:      time.Now(),
	}
}
