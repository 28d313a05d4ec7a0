package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/observability"
	"github.com/jonathan/talent-scout/internal/types"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Run a one-off candidate search from the command line",
	Long: `Runs a discovery search without the HTTP server and prints the results.

The query can be given either as free text ("senior Go engineers in Berlin")
or as explicit flags. Discovered candidates are saved to the database.`,
	RunE: discoverCmd,
}

var (
	discoverQuery      string
	discoverTitle      string
	discoverLocation   string
	discoverCompany    string
	discoverSkills     []string
	discoverMaxResults int
	discoverJSON       bool
	discoverVerbose    bool
)

func init() {
	discoverCommand.Flags().StringVarP(&discoverQuery, "query", "q", "", "Free-text search query (parsed by the LLM)")
	discoverCommand.Flags().StringVar(&discoverTitle, "title", "", "Job title to search for")
	discoverCommand.Flags().StringVar(&discoverLocation, "location", "", "Location to search in")
	discoverCommand.Flags().StringVar(&discoverCompany, "company", "", "Company filter")
	discoverCommand.Flags().StringSliceVar(&discoverSkills, "skills", nil, "Skills to filter by")
	discoverCommand.Flags().IntVar(&discoverMaxResults, "max-results", 20, "Maximum number of profiles to collect")
	discoverCommand.Flags().BoolVar(&discoverJSON, "json", false, "Print results as JSON")
	discoverCommand.Flags().BoolVarP(&discoverVerbose, "verbose", "v", false, "Print the parsed parameters, source plan and top candidates")
	rootCmd.AddCommand(discoverCommand)
}

func discoverCmd(_ *cobra.Command, _ []string) error {
	if discoverQuery == "" && (discoverTitle == "" || discoverLocation == "") {
		return fmt.Errorf("either --query or both --title and --location are required")
	}

	ctx := context.Background()

	application, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	var state *types.DiscoveryState
	if discoverQuery != "" {
		state, err = application.orchestrator.Run(ctx, discoverQuery)
	} else {
		params := &types.SearchParameters{
			JobTitle:   discoverTitle,
			Location:   discoverLocation,
			Company:    discoverCompany,
			Skills:     discoverSkills,
			MaxResults: discoverMaxResults,
		}
		state, err = application.orchestrator.RunWithParams(ctx, params)
	}
	if err != nil {
		return err
	}

	saved, saveErrs := application.database.SaveCandidates(ctx, state.ValidCandidates)
	for _, saveErr := range saveErrs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", saveErr)
	}
	for _, warning := range state.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if discoverVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintSearchParameters(state.SearchParams)
		printer.PrintActionPlan(state.Plan)
		printer.PrintCandidates(state.ValidCandidates)
		printer.PrintWarnings(state.Warnings)
	}

	if discoverJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"candidates":  state.ValidCandidates,
			"total_found": len(state.RawProfiles),
			"total_saved": saved,
			"warnings":    state.Warnings,
		})
	}

	fmt.Printf("Found %d profiles, saved %d candidates:\n", len(state.RawProfiles), saved)
	for _, c := range state.ValidCandidates {
		line := c.Name
		if c.Title != "" {
			line += ", " + c.Title
		}
		if c.CurrentCompany != "" {
			line += " @ " + c.CurrentCompany
		}
		fmt.Printf("  %.2f  %s\n", c.MatchScore, line)
	}
	return nil
}
