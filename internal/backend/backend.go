// Package backend is the local implementation of the generation service:
// URL extraction, the three-stage repurposing run, saved history, brand
// voices, usage accounting and settings, all persisted in SQLite.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/database"
	"github.com/TobiSchelling/repurposer/internal/llm"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAPIKeyMissing is returned when no provider credentials are available.
	ErrAPIKeyMissing = errors.New("API key not configured")
)

// UsageLimitError reports that the monthly generation quota is spent.
type UsageLimitError struct {
	Used  int
	Limit int
}

func (e *UsageLimitError) Error() string {
	return fmt.Sprintf("usage limit reached: %d/%d repurposings used this month", e.Used, e.Limit)
}

const (
	keyPointsMaxTokens = 2048
	adaptTemperature   = 0.7
)

// URLFetcher extracts readable text from a web page.
type URLFetcher interface {
	Fetch(ctx context.Context, url string) (*content.Fetched, error)
}

// ProviderFactory builds a provider for an API key. It returns an error
// wrapping llm.ErrNotConfigured when the key is not enough to run.
type ProviderFactory func(apiKey string) (llm.Provider, error)

// Options configures a Local backend.
type Options struct {
	// Provider names the configured LLM provider. It decides the shape of
	// API keys SetAPIKey accepts.
	Provider    string
	NewProvider ProviderFactory
	// EnvAPIKey is used when no key is stored in settings.
	EnvAPIKey string
	// Defaults fills request hints the caller leaves unset.
	Defaults     platform.Config
	MonthlyLimit int
	MaxTokens    int
	ExportDir    string

	Now   func() time.Time
	NewID func() string
}

// Local serves the generation surface from a database and an LLM provider.
type Local struct {
	db      *database.DB
	fetcher URLFetcher
	opts    Options
	logger  *zap.Logger
}

// New creates a Local backend. Unset options get working defaults.
func New(db *database.DB, fetcher URLFetcher, opts Options, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NewProvider == nil {
		opts.NewProvider = func(key string) (llm.Provider, error) {
			return llm.CreateProvider(llm.Settings{APIKey: key})
		}
	}
	if opts.MonthlyLimit <= 0 {
		opts.MonthlyLimit = 50
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Defaults.IsEmpty() {
		opts.Defaults = platform.Config{
			TweetCount:    platform.Int(5),
			HashtagCount:  platform.Int(3),
			IncludeEmojis: platform.Bool(true),
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Local{db: db, fetcher: fetcher, opts: opts, logger: logger}
}

func (l *Local) now() time.Time {
	return l.opts.Now().UTC()
}

// FetchURL extracts the text of a web page.
func (l *Local) FetchURL(ctx context.Context, url string) (*content.Fetched, error) {
	if l.fetcher == nil {
		return nil, errors.New("URL fetching is not available")
	}
	f, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	l.logger.Info("url fetched", zap.String("url", url), zap.Int("words", f.WordCount))
	return f, nil
}

// provider resolves the API key (settings first, then the environment) and
// builds a provider for it.
func (l *Local) provider() (llm.Provider, error) {
	key, err := l.db.GetSetting(database.SettingAPIKey)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = l.opts.EnvAPIKey
	}
	p, err := l.opts.NewProvider(key)
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, ErrAPIKeyMissing
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// voiceFor returns the explicitly requested voice, or the default voice when
// none is requested and the request does not opt out. It returns nil when
// there is no voice to apply.
func (l *Local) voiceFor(req content.Request) (*content.VoiceProfile, error) {
	if req.NoVoice {
		return nil, nil
	}
	if id := req.VoiceID; id != "" {
		v, err := l.db.GetVoice(id)
		if err != nil {
			return nil, fmt.Errorf("loading brand voice: %w", err)
		}
		if v == nil {
			return nil, fmt.Errorf("brand voice %q: %w", id, ErrNotFound)
		}
		return v, nil
	}
	v, err := l.db.GetDefaultVoice()
	if err != nil {
		return nil, fmt.Errorf("loading default brand voice: %w", err)
	}
	return v, nil
}

// RepurposeContent runs key-point extraction, per-format adaptation and
// brand-voice refinement, then saves the input and outputs and charges usage.
func (l *Local) RepurposeContent(ctx context.Context, req content.Request) (*content.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := l.checkUsage(ctx); err != nil {
		return nil, err
	}
	p, err := l.provider()
	if err != nil {
		return nil, err
	}
	voice, err := l.voiceFor(req)
	if err != nil {
		return nil, err
	}

	cfg := l.opts.Defaults
	if req.Config != nil {
		cfg = req.Config.Merge(l.opts.Defaults)
	}

	log := l.logger.With(zap.String("provider", p.Name()), zap.Int("formats", len(req.Formats)))
	log.Info("repurpose started")

	points, err := l.extractKeyPoints(ctx, p, req.Content)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(req.Formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range req.Formats {
		g.Go(func() error {
			text, err := p.Generate(gctx, llm.Request{
				System:      formatPrompt(f, req.Tone, req.Length, cfg),
				User:        points,
				MaxTokens:   l.opts.MaxTokens,
				Temperature: adaptTemperature,
			})
			if err != nil {
				return fmt.Errorf("adapting to %s: %w", f, err)
			}
			if voice != nil {
				text, err = p.Generate(gctx, llm.Request{
					System:      voicePrompt(f, voice.StyleAttributes),
					User:        text,
					MaxTokens:   l.opts.MaxTokens,
					Temperature: adaptTemperature,
				})
				if err != nil {
					return fmt.Errorf("applying brand voice to %s: %w", f, err)
				}
			}
			texts[i] = strings.TrimSpace(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("repurpose failed", zap.Error(err))
		return nil, err
	}

	created := database.FormatTime(l.now())
	inputID := l.opts.NewID()
	gen := database.Generation{
		Input: content.Input{
			ID:        inputID,
			Title:     req.Title,
			SourceURL: req.SourceURL,
			RawText:   req.Content,
			WordCount: content.WordCount(req.Content),
			CreatedAt: created,
		},
		UsageID: l.opts.NewID(),
	}
	for i, f := range req.Formats {
		gen.Outputs = append(gen.Outputs, content.Output{
			ID:             l.opts.NewID(),
			ContentInputID: inputID,
			Format:         string(f),
			OutputText:     texts[i],
			CreatedAt:      created,
		})
	}
	if err := l.db.SaveGeneration(gen); err != nil {
		return nil, fmt.Errorf("saving generation: %w", err)
	}

	log.Info("repurpose saved", zap.String("content_input_id", inputID))
	return &content.Response{ContentInputID: inputID, Outputs: gen.Outputs}, nil
}

// extractKeyPoints runs stage one and returns the key points as indented
// JSON for the adaptation prompts.
func (l *Local) extractKeyPoints(ctx context.Context, p llm.Provider, text string) (string, error) {
	resp, err := p.Generate(ctx, llm.Request{
		System:      keyPointsPrompt,
		User:        text,
		MaxTokens:   keyPointsMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("extracting key points: %w", err)
	}
	var kp keyPoints
	if err := llm.ParseJSON(resp, &kp); err != nil {
		return "", fmt.Errorf("extracting key points: %w", err)
	}
	out, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
