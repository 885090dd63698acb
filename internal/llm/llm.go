package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when a provider lacks the credentials or
// endpoint it needs.
var ErrNotConfigured = errors.New("llm provider not configured")

// Request is a single system+user completion request.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider is the interface for LLM providers.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	IsConfigured() bool
	Name() string
}

// Settings selects and configures a provider.
type Settings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	OllamaURL string
}

// CreateProvider creates an LLM provider based on configuration.
func CreateProvider(s Settings) (Provider, error) {
	var p Provider
	switch strings.ToLower(s.Provider) {
	case "", "claude", "anthropic":
		p = NewClaudeProvider(s.Model, s.APIKey, s.BaseURL)
	case "openai":
		p = NewOpenAIProvider(s.Model, s.APIKey, s.BaseURL)
	case "ollama":
		baseURL := s.OllamaURL
		if baseURL == "" {
			baseURL = s.BaseURL
		}
		p = NewOllamaProvider(s.Model, baseURL)
	case "gemini":
		gp, err := NewGeminiProvider(s.Model, s.APIKey)
		if err != nil {
			return nil, err
		}
		p = gp
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrNotConfigured)
	}
	return p, nil
}

// KeyPrefix returns the prefix API keys for provider start with, or "" when
// the provider's keys have no fixed shape.
func KeyPrefix(provider string) string {
	switch strings.ToLower(provider) {
	case "", "claude", "anthropic":
		return "sk-ant-"
	case "openai":
		return "sk-"
	}
	return ""
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}
