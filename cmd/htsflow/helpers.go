package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"htsflow/internal/engine"
	"htsflow/internal/llm"
	"htsflow/internal/quota"
	"htsflow/internal/storage"
)

// openStorage opens the configured database and applies migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/htsflow/htsflow.db"
	}
	dbPath = expandPath(dbPath)

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// planFromConfig reads the tenant's plan settings.
func planFromConfig() quota.Plan {
	return quota.Plan{
		Metered: viper.GetBool("plan.metered"),
		Limit:   viper.GetInt("plan.limit"),
	}
}

// buildEngine wires the full classification pipeline from configuration.
func buildEngine(db *storage.SQLiteStorage) (*engine.Engine, error) {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:      apiKey,
		Model:       viper.GetString("anthropic.model"),
		MaxTokens:   viper.GetInt("anthropic.max_tokens"),
		Temperature: viper.GetFloat64("anthropic.temperature"),
		Timeout:     viper.GetDuration("anthropic.timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classification client: %w", err)
	}

	plan := planFromConfig()
	tracker := quota.NewTracker(db, plan)

	cfg := engine.Config{
		ConfidenceThreshold: viper.GetFloat64("classification.threshold"),
		Country:             viper.GetString("classification.country"),
		Plan:                plan,
	}

	return engine.New(db, tracker, client, nil, cfg, slog.Default()), nil
}

// expandPath expands a leading ~ and $VAR references in a file path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
