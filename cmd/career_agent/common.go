package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

// localProfileID stands in for the account id of a profile read from disk.
const localProfileID = "local"

// newLLMClient is swapped out in tests.
var newLLMClient = func(ctx context.Context, apiKey string) (llm.Client, error) {
	return llm.NewClient(ctx, llm.DefaultGeminiConfig(), apiKey)
}

// openFlows builds the model client and the flows on top of it. The returned
// func closes the client.
func openFlows(ctx context.Context, apiKeyFlag string) (*flows.Flows, func(), error) {
	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	client, err := newLLMClient(ctx, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return flows.New(client), func() { _ = client.Close() }, nil
}

func openDatabase(ctx context.Context, urlFlag string) (*db.DB, error) {
	databaseURL := urlFlag
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required (or use --db-url flag)")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// readProfile loads a profile JSON file. The file has the same shape as the
// profile editor form, so scores may be numbers, numeric strings or empty.
func readProfile(path string) (*types.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var form profile.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	p := profile.Default(localProfileID, "", "", "")
	profile.Apply(p, &form)
	profile.Normalize(p)
	return p, nil
}

// writeOutput writes v as indented JSON to path.
func writeOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
