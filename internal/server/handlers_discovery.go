package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/planner"
	"github.com/jonathan/talent-scout/internal/ratelimit"
	"github.com/jonathan/talent-scout/internal/types"
)

// searchRequest is either a free-text query or structured parameters,
// never both.
type searchRequest struct {
	query  string
	params *types.SearchParameters
}

// handleDiscoverySearch starts a candidate search. With
// run_in_background=true it returns a task ID immediately; otherwise it
// blocks until the search completes and returns the saved candidates.
func (s *Server) handleDiscoverySearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("run_in_background") == "true" {
		s.startBackgroundSearch(w, req)
		return
	}

	state, err := s.runDiscovery(r.Context(), req)
	if err != nil {
		var parseErr *planner.IntentParseError
		if errors.As(err, &parseErr) {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		var exceeded *ratelimit.ExceededError
		if errors.As(err, &exceeded) {
			s.errorResponse(w, http.StatusTooManyRequests, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "discovery failed: "+err.Error())
		return
	}

	saved, saveErrs := s.store.SaveCandidates(r.Context(), state.ValidCandidates)
	for _, saveErr := range saveErrs {
		log.Printf("[discovery] failed to save candidate: %v", saveErr)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates":  state.ValidCandidates,
		"total_found": len(state.RawProfiles),
		"total_saved": saved,
		"warnings":    state.Warnings,
	})
}

// runDiscovery dispatches to intent parsing or the structured path.
func (s *Server) runDiscovery(ctx context.Context, req searchRequest) (*types.DiscoveryState, error) {
	if req.query != "" {
		return s.runner.Run(ctx, req.query)
	}
	return s.runner.RunWithParams(ctx, req.params)
}

// startBackgroundSearch launches the run in a goroutine bounded by the
// concurrency semaphore and responds with the task ID.
func (s *Server) startBackgroundSearch(w http.ResponseWriter, req searchRequest) {
	if !s.sem.TryAcquire(1) {
		s.errorResponse(w, http.StatusTooManyRequests, "too many discovery runs in progress")
		return
	}

	taskID := uuid.New().String()
	s.taskStore.Create(context.Background(), taskID, taskParams(req))

	go s.runBackgroundSearch(taskID, req)

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  "queued",
	})
}

// taskParams returns the parameters recorded on the task hash. A free-text
// run has no structured fields until its intent is parsed, so the raw query
// stands in as the title.
func taskParams(req searchRequest) *types.SearchParameters {
	if req.params != nil {
		return req.params
	}
	return &types.SearchParameters{JobTitle: req.query}
}

// runBackgroundSearch owns one background run: it releases the semaphore,
// recovers panics into a failed task, and records progress as it goes.
func (s *Server) runBackgroundSearch(taskID string, req searchRequest) {
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), backgroundRunTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[discovery] background run %s panicked: %v", taskID, rec)
			s.taskStore.Fail(ctx, taskID, "internal error")
		}
	}()

	s.taskStore.SetRunning(ctx, taskID)

	state, err := s.runDiscovery(ctx, req)
	if err != nil {
		s.taskStore.Fail(ctx, taskID, err.Error())
		return
	}
	s.taskStore.SetTotalFound(ctx, taskID, len(state.RawProfiles))

	saved, saveErrs := s.store.SaveCandidates(ctx, state.ValidCandidates)
	for _, saveErr := range saveErrs {
		log.Printf("[discovery] failed to save candidate: %v", saveErr)
	}
	s.taskStore.SetTotalSaved(ctx, taskID, saved)
	s.taskStore.Complete(ctx, taskID)
	log.Printf("[discovery] background run %s completed: %d found, %d saved", taskID, len(state.RawProfiles), saved)
}

// handleDiscoveryStatus returns the status hash of a background task.
func (s *Server) handleDiscoveryStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")

	fields, ok := s.taskStore.Get(r.Context(), taskID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "task not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, fields)
}

// parseSearchRequest builds a search request from query parameters. A
// non-empty free-text query wins; otherwise title and location are required.
func parseSearchRequest(r *http.Request) (searchRequest, error) {
	q := r.URL.Query()

	if query := strings.TrimSpace(q.Get("query")); query != "" {
		return searchRequest{query: query}, nil
	}

	params := &types.SearchParameters{
		JobTitle: strings.TrimSpace(q.Get("title")),
		Location: strings.TrimSpace(q.Get("location")),
		Company:  strings.TrimSpace(q.Get("company")),
	}
	if params.JobTitle == "" {
		return searchRequest{}, errors.New("either query or title is required")
	}
	if params.Location == "" {
		return searchRequest{}, errors.New("location is required")
	}

	for _, raw := range q["skills"] {
		for _, skill := range strings.Split(raw, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				params.Skills = append(params.Skills, skill)
			}
		}
	}

	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return searchRequest{}, errors.New("max_results must be an integer")
		}
		params.MaxResults = n
	}
	params.ClampMaxResults()

	return searchRequest{params: params}, nil
}
