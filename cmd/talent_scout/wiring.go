package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/config"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/discovery"
	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/planner"
	"github.com/jonathan/talent-scout/internal/ratelimit"
	"github.com/jonathan/talent-scout/internal/sites"
)

// app holds the wired application components shared by the serve and
// discover commands.
type app struct {
	cfg          *config.Config
	database     *db.DB
	llmClient    llm.Client
	orchestrator *discovery.Orchestrator
}

// buildApp connects backing services and assembles the discovery pipeline.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	registry := sites.NewRegistry(
		sites.NewLinkedIn(browser.Credentials{
			Email:    cfg.LinkedInEmail,
			Password: cfg.LinkedInPassword,
		}, cfg.ExtractionDelay),
		sites.NewWellfound(llmClient),
		sites.NewGitHub(llmClient),
	)

	limiter := ratelimit.New(ratelimit.NewPGStore(database.Pool()), cfg.MaxProfilesPerDay, cfg.RateLimitWindow)

	openSession := func(ctx context.Context) (*browser.Session, error) {
		return browser.Open(ctx, browser.Options{
			Headless:   cfg.BrowserHeadless,
			ProxyURL:   cfg.BrowserProxyURL,
			UserAgent:  cfg.UserAgent,
			NavTimeout: cfg.NavTimeout,
		})
	}

	orchestrator := discovery.New(planner.New(llmClient), registry, limiter, openSession, cfg.MinRequiredProfile)

	return &app{
		cfg:          cfg,
		database:     database,
		llmClient:    llmClient,
		orchestrator: orchestrator,
	}, nil
}

// Close releases the app's backing connections.
func (a *app) Close() {
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.database != nil {
		a.database.Close()
	}
}
