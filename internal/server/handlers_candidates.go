package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/db"
)

// handleListCandidates returns stored candidates with optional filters.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := db.CandidateFilters{
		Title:    q.Get("title"),
		Location: q.Get("location"),
		Company:  q.Get("company"),
		Source:   q.Get("source"),
	}

	for _, raw := range q["skills"] {
		for _, skill := range strings.Split(raw, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				filters.Skills = append(filters.Skills, skill)
			}
		}
	}

	if raw := q.Get("is_open_to_work"); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "is_open_to_work must be a boolean")
			return
		}
		filters.OpenToWork = &open
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filters.Offset = n
	}

	candidates, err := s.store.ListCandidates(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list candidates")
		return
	}
	if candidates == nil {
		candidates = []db.Candidate{}
	}
	s.jsonResponse(w, http.StatusOK, candidates)
}

// createCandidateRequest is the POST body for manual candidate creation.
type createCandidateRequest struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	CurrentCompany string   `json:"current_company"`
	Skills         []string `json:"skills"`
	OpenToWork     bool     `json:"open_to_work"`
	ProfileURL     string   `json:"profile_url"`
	Source         string   `json:"source"`
}

// handleCreateCandidate inserts a candidate directly, bypassing discovery.
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.errorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	candidate := &db.Candidate{
		Name:           req.Name,
		Title:          req.Title,
		Location:       req.Location,
		CurrentCompany: req.CurrentCompany,
		Skills:         req.Skills,
		OpenToWork:     req.OpenToWork,
		ProfileURL:     req.ProfileURL,
		Source:         req.Source,
	}

	saved, err := s.store.CreateCandidate(r.Context(), candidate)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to create candidate")
		return
	}
	s.jsonResponse(w, http.StatusCreated, saved)
}

// handleGetCandidate returns one candidate by ID.
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to get candidate")
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

// updateCandidateRequest is the PUT body; absent fields are left unchanged.
type updateCandidateRequest struct {
	Name           *string  `json:"name"`
	Title          *string  `json:"title"`
	Location       *string  `json:"location"`
	CurrentCompany *string  `json:"current_company"`
	Skills         []string `json:"skills"`
	OpenToWork     *bool    `json:"open_to_work"`
	ProfileURL     *string  `json:"profile_url"`
}

// handleUpdateCandidate applies a partial update.
func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	var req updateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		s.errorResponse(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	candidate, err := s.store.UpdateCandidate(r.Context(), id, db.CandidateUpdate{
		Name:           req.Name,
		Title:          req.Title,
		Location:       req.Location,
		CurrentCompany: req.CurrentCompany,
		Skills:         req.Skills,
		OpenToWork:     req.OpenToWork,
		ProfileURL:     req.ProfileURL,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to update candidate")
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

// handleDeleteCandidate removes a candidate.
func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.candidateID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete candidate")
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// candidateID parses the {id} path value, writing a 400 on failure.
func (s *Server) candidateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid candidate ID")
		return uuid.Nil, false
	}
	return id, true
}
