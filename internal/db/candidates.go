package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-scout/internal/types"
)

// Candidate represents a stored candidate record
type Candidate struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title,omitempty"`
	Location       string    `json:"location,omitempty"`
	CurrentCompany string    `json:"current_company,omitempty"`
	Skills         []string  `json:"skills"`
	OpenToWork     bool      `json:"open_to_work"`
	ProfileURL     string    `json:"profile_url,omitempty"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const candidateColumns = `id, name, title, location, current_company, skills, open_to_work, profile_url, source, created_at, updated_at`

// CreateCandidate inserts a candidate. Candidates with a profile_url already
// present are updated in place instead of duplicated.
func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) (*Candidate, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, name, title, location, current_company, skills, open_to_work, profile_url, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		 ON CONFLICT (profile_url) DO UPDATE SET
		     name = EXCLUDED.name,
		     title = EXCLUDED.title,
		     location = EXCLUDED.location,
		     current_company = EXCLUDED.current_company,
		     skills = EXCLUDED.skills,
		     open_to_work = EXCLUDED.open_to_work,
		     source = EXCLUDED.source,
		     updated_at = NOW()
		 RETURNING `+candidateColumns,
		c.ID, c.Name, c.Title, c.Location, c.CurrentCompany, c.Skills, c.OpenToWork, c.ProfileURL, c.Source,
	)
	saved, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return saved, nil
}

// SaveCandidates persists a batch of validated profiles and returns how many
// were stored. Individual failures are skipped so one bad row does not lose
// the batch.
func (db *DB) SaveCandidates(ctx context.Context, profiles []types.CandidateProfile) (int, []error) {
	var errs []error
	saved := 0
	for _, p := range profiles {
		c := &Candidate{
			ID:             p.ID,
			Name:           p.Name,
			Title:          p.Title,
			Location:       p.Location,
			CurrentCompany: p.CurrentCompany,
			Skills:         p.Skills,
			OpenToWork:     p.OpenToWork,
			ProfileURL:     p.ProfileURL,
			Source:         p.Source,
		}
		if _, err := db.CreateCandidate(ctx, c); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errs
}

// GetCandidate retrieves a candidate by ID. Returns nil when not found.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// CandidateUpdate holds the fields that may be changed on an existing
// candidate. Nil fields are left untouched.
type CandidateUpdate struct {
	Name           *string
	Title          *string
	Location       *string
	CurrentCompany *string
	Skills         []string
	OpenToWork     *bool
	ProfileURL     *string
}

// UpdateCandidate applies a partial update and returns the updated record.
// Returns nil when the candidate does not exist.
func (db *DB) UpdateCandidate(ctx context.Context, id uuid.UUID, update CandidateUpdate) (*Candidate, error) {
	sets, args := buildUpdateSets(update)
	if len(sets) == 0 {
		return db.GetCandidate(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE candidates SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), candidateColumns,
	)

	c, err := scanCandidate(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate. Returns false when no row matched.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CandidateFilters holds optional filters for listing candidates
type CandidateFilters struct {
	Title      string
	Location   string
	Company    string
	Skills     []string
	OpenToWork *bool
	Source     string
	Limit      int
	Offset     int
}

// ListCandidates retrieves candidates with optional filters, newest first.
func (db *DB) ListCandidates(ctx context.Context, filters CandidateFilters) ([]Candidate, error) {
	query, args := buildListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

// buildListQuery constructs the filtered SELECT. Skills filtering uses the
// array overlap operator so any one matching skill qualifies a row.
func buildListQuery(filters CandidateFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Title != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", argNum)
		args = append(args, "%"+filters.Title+"%")
		argNum++
	}
	if filters.Location != "" {
		query += fmt.Sprintf(" AND location ILIKE $%d", argNum)
		args = append(args, "%"+filters.Location+"%")
		argNum++
	}
	if filters.Company != "" {
		query += fmt.Sprintf(" AND current_company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}
	if len(filters.Skills) > 0 {
		query += fmt.Sprintf(" AND skills && $%d", argNum)
		args = append(args, filters.Skills)
		argNum++
	}
	if filters.OpenToWork != nil {
		query += fmt.Sprintf(" AND open_to_work = $%d", argNum)
		args = append(args, *filters.OpenToWork)
		argNum++
	}
	if filters.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, filters.Source)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filters.Limit, filters.Offset)
	return query, args
}

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	var title, location, company, profileURL, source *string
	err := row.Scan(&c.ID, &c.Name, &title, &location, &company, &c.Skills,
		&c.OpenToWork, &profileURL, &source, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if title != nil {
		c.Title = *title
	}
	if location != nil {
		c.Location = *location
	}
	if company != nil {
		c.CurrentCompany = *company
	}
	if profileURL != nil {
		c.ProfileURL = *profileURL
	}
	if source != nil {
		c.Source = *source
	}
	return &c, nil
}

func buildUpdateSets(update CandidateUpdate) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.CurrentCompany != nil {
		add("current_company", *update.CurrentCompany)
	}
	if update.Skills != nil {
		add("skills", update.Skills)
	}
	if update.OpenToWork != nil {
		add("open_to_work", *update.OpenToWork)
	}
	if update.ProfileURL != nil {
		add("profile_url", *update.ProfileURL)
	}
	return sets, args
}
