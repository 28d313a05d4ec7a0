package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/server"
	"github.com/jonathan/talent-scout/internal/tasks"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the REST API for candidate discovery: search endpoints, background task status, and candidate CRUD.",
	RunE:  serveCmd,
}

var servePort int

func init() {
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (defaults to PORT env var or 8000)")
	rootCmd.AddCommand(serveCommand)
}

func serveCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	application, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	taskStore, err := tasks.NewStore(ctx, application.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	port := application.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{Port: port}, application.database, taskStore, application.orchestrator)
	return srv.Start()
}
