// Package brandvoice manages brand-voice profiles: listing, creation by
// sample analysis, deletion and default selection.
package brandvoice

import (
	"context"
	"fmt"
	"strings"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/store"
)

const (
	MinSamples     = 3
	MaxSamples     = 5
	MinSampleChars = 50
)

// Backend is the part of the backend the voice manager needs.
type Backend interface {
	GetBrandVoices(ctx context.Context) ([]content.VoiceProfile, error)
	AnalyzeBrandVoice(ctx context.Context, req content.AnalyzeVoiceRequest) (*content.VoiceProfile, error)
	DeleteBrandVoice(ctx context.Context, id string) error
	SetDefaultVoice(ctx context.Context, id string) error
}

// ValidateRequest checks a create request before it is sent: a non-blank
// name and three to five non-blank samples of at least MinSampleChars
// characters. Blank samples are dropped from req.
func ValidateRequest(req *content.AnalyzeVoiceRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return content.Invalid("voice name cannot be empty")
	}
	var samples []string
	for _, s := range req.Samples {
		if s = strings.TrimSpace(s); s != "" {
			samples = append(samples, s)
		}
	}
	if len(samples) < MinSamples || len(samples) > MaxSamples {
		return content.Invalid("provide between %d and %d writing samples, got %d", MinSamples, MaxSamples, len(samples))
	}
	for i, s := range samples {
		if n := len([]rune(s)); n < MinSampleChars {
			return content.Invalid("sample %d is too short (%d chars, need at least %d)", i+1, n, MinSampleChars)
		}
	}
	req.Samples = samples
	return nil
}

// Manager keeps the store's voice list in sync with the backend. Every
// mutation is followed by a reload of the list.
type Manager struct {
	backend Backend
	store   *store.Store
}

// NewManager creates a voice manager publishing into s.
func NewManager(backend Backend, s *store.Store) *Manager {
	return &Manager{backend: backend, store: s}
}

// Load fetches the voice list into the store. The first load selects the
// default voice when the user has not chosen one.
func (m *Manager) Load(ctx context.Context) ([]content.VoiceProfile, error) {
	voices, err := m.backend.GetBrandVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading brand voices: %w", err)
	}
	m.store.SetVoices(voices)
	return voices, nil
}

// Create analyzes samples into a new profile.
func (m *Manager) Create(ctx context.Context, req content.AnalyzeVoiceRequest) (*content.VoiceProfile, error) {
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}
	p, err := m.backend.AnalyzeBrandVoice(ctx, req)
	if err != nil {
		err = fmt.Errorf("analyzing brand voice: %w", err)
	}
	return p, m.refresh(ctx, err)
}

// Delete removes a profile.
func (m *Manager) Delete(ctx context.Context, id string) error {
	err := m.backend.DeleteBrandVoice(ctx, id)
	if err != nil {
		err = fmt.Errorf("deleting brand voice %s: %w", id, err)
	}
	return m.refresh(ctx, err)
}

// SetDefault makes id the only default profile.
func (m *Manager) SetDefault(ctx context.Context, id string) error {
	err := m.backend.SetDefaultVoice(ctx, id)
	if err != nil {
		err = fmt.Errorf("setting default brand voice %s: %w", id, err)
	}
	return m.refresh(ctx, err)
}

// refresh reloads the list after a mutation. The mutation error wins over a
// reload error.
func (m *Manager) refresh(ctx context.Context, mutateErr error) error {
	_, err := m.Load(ctx)
	if mutateErr != nil {
		return mutateErr
	}
	return err
}
