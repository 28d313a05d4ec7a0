// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSearchParameters outputs a human-readable summary of the parsed
// search criteria.
func (p *Printer) PrintSearchParameters(params *types.SearchParameters) {
	if params == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", params.JobTitle))
	sb.WriteString(fmt.Sprintf("Location: %s\n", params.Location))
	if params.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", params.Company))
	}
	sb.WriteString(fmt.Sprintf("Max:      %d\n", params.MaxResults))

	if len(params.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(params.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", params.Skills[i]))
		}
		if len(params.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(params.Skills)-maxItemsToShow))
		}
	}

	p.printBox("SEARCH PARAMETERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintActionPlan outputs the ranked source plan for a run.
func (p *Printer) PrintActionPlan(plan *types.ActionPlan) {
	if plan == nil || len(plan.Sources) == 0 {
		return
	}

	var sb strings.Builder
	for i, src := range plan.Sources {
		sb.WriteString(fmt.Sprintf("#%d  %s (priority %d)\n", i+1, src.Name, src.Priority))
	}
	if plan.Reasoning != "" {
		reasoning := plan.Reasoning
		if len(reasoning) > 50 {
			reasoning = reasoning[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("\n%s", reasoning))
	}

	p.printBox("SOURCE PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs the top validated candidates with scores and
// matched skills.
func (p *Printer) PrintCandidates(candidates []types.CandidateProfile) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total candidates: %d\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, c.Name))
		sb.WriteString(fmt.Sprintf("    Score: %.2f", c.MatchScore))
		if c.Source != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Source))
		}
		sb.WriteString("\n")
		if len(c.MatchedSkills) > 0 {
			skills := strings.Join(c.MatchedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox("TOP CANDIDATES", sb.String())
}

// PrintWarnings outputs any per-source warnings collected during a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO WARNINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d warnings:\n\n", len(warnings)))

	for i, w := range warnings {
		if len(w) > 50 {
			w = w[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RUN WARNINGS", sb.String())
}
