// Package llm calls the completion service that turns composed prompts into
// SQL and chart code. A fallback implementation keeps the pipeline runnable
// when no service is configured or a call fails.
package llm

import (
	"context"
	"time"
)

// Service defines the interface for completion operations
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config represents completion service configuration
type Config struct {
	Endpoint       string        `json:"endpoint"`
	APIKey         string        `json:"api_key,omitempty"`
	DeploymentName string        `json:"deployment_name"`
	APIVersion     string        `json:"api_version"`
	Timeout        time.Duration `json:"timeout"`
	MaxTokens      int           `json:"max_tokens"`
}

const (
	// DefaultAPIVersion is the service API version used when none is configured.
	DefaultAPIVersion = "2023-07-01-preview"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 1000

	// DefaultTimeout bounds a single completion round-trip.
	DefaultTimeout = 60 * time.Second
)
