package llm

import (
	"context"
	"time"
)

// Client performs one classification call against the AI provider and
// returns the raw response body. Interpreting the content is the
// validator's job, not the client's.
type Client interface {
	Classify(ctx context.Context, prompt string) ([]byte, error)
}

// Config holds provider settings for the classification client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Provider defaults, matching the reference deployment.
const (
	DefaultModel       = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.2
	DefaultTimeout     = 30 * time.Second

	// MaxTimeout bounds how long a single call may block.
	MaxTimeout = 45 * time.Second
)
