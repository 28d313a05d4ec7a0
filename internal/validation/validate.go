// Package validation filters raw profiles against search parameters and
// scores the survivors.
package validation

import (
	"sort"
	"strings"

	"github.com/jonathan/talent-scout/internal/types"
)

// Result separates the profiles that passed validation from those that were
// rejected.
type Result struct {
	Valid   []types.CandidateProfile
	Invalid []types.RawProfile
}

// ValidateProfiles checks each raw profile against the search parameters.
// Profiles without a name are always rejected. When the search requests
// skills, profiles matching none of them are rejected. Valid candidates come
// back scored and sorted by descending match score; the sort is stable so
// source order breaks ties.
func ValidateProfiles(profiles []types.RawProfile, params *types.SearchParameters) *Result {
	result := &Result{}

	for _, raw := range profiles {
		if strings.TrimSpace(raw.Name) == "" {
			result.Invalid = append(result.Invalid, raw)
			continue
		}

		matched := matchSkills(raw.Skills, params.Skills)
		if len(params.Skills) > 0 && len(matched) == 0 {
			result.Invalid = append(result.Invalid, raw)
			continue
		}

		candidate := types.NewCandidateProfile(raw)
		candidate.MatchedSkills = matched
		candidate.MatchScore = matchScore(matched, params.Skills)
		candidate.MatchReasons = matchReasons(raw, matched, params)
		result.Valid = append(result.Valid, candidate)
	}

	sort.SliceStable(result.Valid, func(i, j int) bool {
		return result.Valid[i].MatchScore > result.Valid[j].MatchScore
	})
	return result
}

// matchSkills returns the requested skills present in the profile's skills,
// compared case-insensitively as substrings. The returned values keep the
// requested spelling.
func matchSkills(profileSkills, requested []string) []string {
	if len(requested) == 0 || len(profileSkills) == 0 {
		return nil
	}

	lowered := make([]string, len(profileSkills))
	for i, s := range profileSkills {
		lowered[i] = strings.ToLower(s)
	}

	var matched []string
	for _, want := range requested {
		wantLower := strings.ToLower(want)
		for _, have := range lowered {
			if strings.Contains(have, wantLower) || strings.Contains(wantLower, have) {
				matched = append(matched, want)
				break
			}
		}
	}
	return matched
}

// matchScore is the fraction of requested skills matched. Searches without
// skill requirements score a neutral 0.5.
func matchScore(matched, requested []string) float64 {
	if len(requested) == 0 {
		return 0.5
	}
	return float64(len(matched)) / float64(len(requested))
}

// matchReasons explains why a profile matched, one reason per satisfied
// criterion.
func matchReasons(raw types.RawProfile, matched []string, params *types.SearchParameters) []string {
	var reasons []string

	for _, skill := range matched {
		reasons = append(reasons, "has skill: "+skill)
	}
	if params.Location != "" && containsFold(raw.Location, params.Location) {
		reasons = append(reasons, "located in "+params.Location)
	}
	if params.Company != "" && containsFold(raw.CurrentCompany, params.Company) {
		reasons = append(reasons, "works at "+params.Company)
	}
	if raw.OpenToWork {
		reasons = append(reasons, "open to work")
	}
	return reasons
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
