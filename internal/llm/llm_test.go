package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefix(t *testing.T) {
	tests := map[string]string{
		"":          "sk-ant-",
		"claude":    "sk-ant-",
		"Anthropic": "sk-ant-",
		"openai":    "sk-",
		"gemini":    "",
		"ollama":    "",
	}
	for provider, want := range tests {
		assert.Equal(t, want, KeyPrefix(provider), provider)
	}
}

func TestParseJSON(t *testing.T) {
	var got struct {
		Key string `json:"key"`
		Num int    `json:"num"`
	}
	require.NoError(t, ParseJSON("```json\n{\"key\": \"value\", \"num\": 42}\n```", &got))
	assert.Equal(t, "value", got.Key)
	assert.Equal(t, 42, got.Num)
}

func TestParseJSONInvalid(t *testing.T) {
	var v map[string]any
	assert.Error(t, ParseJSON("not json at all", &v))
	assert.Error(t, ParseJSON("", &v))
	assert.Error(t, ParseJSON("```\n```", &v))
}

func TestCreateProviderUnknown(t *testing.T) {
	_, err := CreateProvider(Settings{Provider: "mistral"})
	assert.Error(t, err)
}

func TestCreateProviderNotConfigured(t *testing.T) {
	for _, name := range []string{"", "claude", "openai", "gemini"} {
		_, err := CreateProvider(Settings{Provider: name})
		assert.True(t, errors.Is(err, ErrNotConfigured), "provider %q: %v", name, err)
	}
}

func TestCreateProviderOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	p, err := CreateProvider(Settings{Provider: "ollama", Model: "llama3.2", OllamaURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = CreateProvider(Settings{Provider: "ollama", Model: "mistral", OllamaURL: srv.URL})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClaudeProviderGenerate(t *testing.T) {
	var got claudeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"generated text"}]}`))
	}))
	defer srv.Close()

	p := NewClaudeProvider("", "sk-ant-test", srv.URL+"/")
	out, err := p.Generate(context.Background(), Request{
		System:      "be brief",
		User:        "summarize this",
		MaxTokens:   512,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)

	assert.Equal(t, defaultClaudeModel, got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.Equal(t, "be brief", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "summarize this", got.Messages[0].Content)
}

func TestClaudeProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid x-api-key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewClaudeProvider("", "sk-ant-bad", srv.URL)
	_, err := p.Generate(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClaudeProviderNotConfigured(t *testing.T) {
	p := NewClaudeProvider("", "", "")
	assert.False(t, p.IsConfigured())
	_, err := p.Generate(context.Background(), Request{User: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOllamaProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"hello from ollama"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider("llama3.2", srv.URL)
	out, err := p.Generate(context.Background(), Request{System: "sys", User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello from ollama", out)
}
