package backend

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/database"
	"github.com/TobiSchelling/repurposer/internal/llm"
)

const (
	maxVoiceSamples     = 10
	minVoiceSampleChars = 50
	voiceAnalysisTemp   = 0.3
	voiceAnalysisTokens = 1024
)

// GetBrandVoices lists profiles, the default first, then by name.
func (l *Local) GetBrandVoices(ctx context.Context) ([]content.VoiceProfile, error) {
	return l.db.ListVoices()
}

func validateAnalyze(req content.AnalyzeVoiceRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return content.Invalid("voice name cannot be empty")
	}
	if len(req.Samples) == 0 {
		return content.Invalid("at least one writing sample is required")
	}
	if len(req.Samples) > maxVoiceSamples {
		return content.Invalid("at most %d writing samples are allowed", maxVoiceSamples)
	}
	for i, s := range req.Samples {
		if strings.TrimSpace(s) == "" {
			return content.Invalid("writing sample %d is empty", i+1)
		}
		if utf8.RuneCountInString(s) < minVoiceSampleChars {
			return content.Invalid("writing sample %d is too short (minimum %d characters)", i+1, minVoiceSampleChars)
		}
	}
	return nil
}

// AnalyzeBrandVoice derives style attributes from the samples and saves a
// new profile with them. The first profile saved becomes the default.
func (l *Local) AnalyzeBrandVoice(ctx context.Context, req content.AnalyzeVoiceRequest) (*content.VoiceProfile, error) {
	if err := validateAnalyze(req); err != nil {
		return nil, err
	}
	p, err := l.provider()
	if err != nil {
		return nil, err
	}

	resp, err := p.Generate(ctx, llm.Request{
		System:      voiceAnalysisPrompt,
		User:        voiceSamplesMessage(req.Samples),
		MaxTokens:   voiceAnalysisTokens,
		Temperature: voiceAnalysisTemp,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing brand voice: %w", err)
	}
	var style content.StyleAttributes
	if err := llm.ParseJSON(resp, &style); err != nil {
		return nil, fmt.Errorf("analyzing brand voice: %w", err)
	}

	now := database.FormatTime(l.now())
	profile := &content.VoiceProfile{
		ID:              l.opts.NewID(),
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		StyleAttributes: style,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := l.db.InsertVoice(profile, req.Samples); err != nil {
		return nil, fmt.Errorf("saving brand voice: %w", err)
	}
	l.logger.Info("brand voice saved", zap.String("id", profile.ID), zap.Bool("default", profile.IsDefault))
	return profile, nil
}

// DeleteBrandVoice removes a profile and its samples.
func (l *Local) DeleteBrandVoice(ctx context.Context, id string) error {
	found, err := l.db.DeleteVoice(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("brand voice %q: %w", id, ErrNotFound)
	}
	return nil
}

// SetDefaultVoice makes id the only default profile.
func (l *Local) SetDefaultVoice(ctx context.Context, id string) error {
	found, err := l.db.SetDefaultVoice(id, database.FormatTime(l.now()))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("brand voice %q: %w", id, ErrNotFound)
	}
	return nil
}
