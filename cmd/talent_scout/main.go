// Package main provides the entry point for the Talent Scout candidate
// discovery service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent_scout",
	Short: "Talent Scout candidate discovery service",
	Long:  "Talent Scout discovers candidate profiles across LinkedIn and other sources using browser automation and LLM-guided search planning, and stores them for querying via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
