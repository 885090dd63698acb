package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/database"
	"github.com/TobiSchelling/repurposer/internal/llm"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

const keyPointsJSON = `{"main_thesis":"Small teams ship faster","key_arguments":["fewer handoffs","clear ownership","short feedback loops"],"supporting_data":["3x deploy frequency"],"target_audience":"engineering managers","emotional_tone":"confident","call_to_action":null}`

type mockProvider struct {
	mu       sync.Mutex
	requests []llm.Request
	respond  func(llm.Request) (string, error)
}

func (m *mockProvider) Generate(_ context.Context, r llm.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.mu.Unlock()
	return m.respond(r)
}

func (m *mockProvider) IsConfigured() bool { return true }
func (m *mockProvider) Name() string       { return "mock" }

func (m *mockProvider) count(match func(llm.Request) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if match(r) {
			n++
		}
	}
	return n
}

func isVoicePass(r llm.Request) bool {
	return strings.HasPrefix(r.System, "You edit drafts")
}

// defaultResponses answers each stage with a plausible payload.
func defaultResponses(r llm.Request) (string, error) {
	switch {
	case r.System == keyPointsPrompt:
		return "```json\n" + keyPointsJSON + "\n```", nil
	case r.System == voiceAnalysisPrompt:
		return `{"tone":"warm","vocabulary_level":"plain","sentence_style":"short","personality_traits":["curious"],"signature_phrases":["here's the thing"],"avoid_phrases":["synergy"]}`, nil
	case isVoicePass(r):
		return r.User + " (in voice)", nil
	case strings.Contains(r.System, "Twitter/X threads"):
		return `["Small teams win.","Here is why."]`, nil
	}
	return "Adapted text", nil
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestBackend(t *testing.T, p *mockProvider) (*Local, *database.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ids := 0
	b := New(db, nil, Options{
		NewProvider: func(key string) (llm.Provider, error) {
			if key == "" {
				return nil, fmt.Errorf("claude: %w", llm.ErrNotConfigured)
			}
			return p, nil
		},
		EnvAPIKey: "sk-ant-env-key-0000",
		ExportDir: filepath.Join(t.TempDir(), "exports"),
		Now:       func() time.Time { return fixedNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%04d", ids)
		},
	}, nil)
	return b, db
}

func longText() string {
	return strings.Repeat("Small teams with clear ownership ship faster and learn more. ", 10)
}

func request(formats ...platform.Format) content.Request {
	return content.Request{
		Content: longText(),
		Title:   "Small teams",
		Formats: formats,
		Tone:    platform.Professional,
		Length:  platform.Medium,
	}
}

func TestRepurposeContent(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, db := newTestBackend(t, p)

	resp, err := b.RepurposeContent(context.Background(), request(platform.Summary, platform.TwitterThread, platform.LinkedIn))
	require.NoError(t, err)

	require.Len(t, resp.Outputs, 3)
	assert.Equal(t, "summary", resp.Outputs[0].Format)
	assert.Equal(t, "twitter_thread", resp.Outputs[1].Format)
	assert.Equal(t, "linkedin", resp.Outputs[2].Format)
	assert.Equal(t, `["Small teams win.","Here is why."]`, resp.Outputs[1].OutputText)
	for _, o := range resp.Outputs {
		assert.Equal(t, resp.ContentInputID, o.ContentInputID)
	}

	// One extraction plus one adaptation per format, no voice configured.
	assert.Equal(t, 4, p.count(func(llm.Request) bool { return true }))
	assert.Zero(t, p.count(isVoicePass))

	detail, err := b.GetHistoryDetail(context.Background(), resp.ContentInputID)
	require.NoError(t, err)
	assert.Equal(t, "Small teams", detail.Input.Title)
	assert.Equal(t, content.WordCount(longText()), detail.Input.WordCount)
	require.Len(t, detail.Outputs, 3)
	assert.Equal(t, "summary", detail.Outputs[0].Format)

	used, err := db.UsageSince(monthStart(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, 3, used)
}

func TestRepurposeContentMergesDefaults(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)

	req := request(platform.TwitterThread)
	req.Config = &platform.Config{TweetCount: platform.Int(7)}
	_, err := b.RepurposeContent(context.Background(), req)
	require.NoError(t, err)

	n := p.count(func(r llm.Request) bool {
		return strings.Contains(r.System, "exactly 7 tweets") && strings.Contains(r.System, "put 3 relevant hashtags")
	})
	assert.Equal(t, 1, n)
}

func TestRepurposeContentValidation(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)

	_, err := b.RepurposeContent(context.Background(), request())
	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, p.count(func(llm.Request) bool { return true }))
}

func TestRepurposeContentAPIKeyMissing(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)
	b.opts.EnvAPIKey = ""

	_, err := b.RepurposeContent(context.Background(), request(platform.Summary))
	assert.ErrorIs(t, err, ErrAPIKeyMissing)

	require.NoError(t, b.SetAPIKey("sk-ant-stored-key-1234"))
	_, err = b.RepurposeContent(context.Background(), request(platform.Summary))
	assert.NoError(t, err)
}

func TestRepurposeContentUsageLimit(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)
	require.NoError(t, b.SetMonthlyLimit(2))

	_, err := b.RepurposeContent(context.Background(), request(platform.Summary, platform.LinkedIn))
	require.NoError(t, err)

	_, err = b.RepurposeContent(context.Background(), request(platform.Summary))
	var lerr *UsageLimitError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 2, lerr.Used)
	assert.Equal(t, 2, lerr.Limit)
}

func TestRepurposeContentUnknownVoice(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)

	req := request(platform.Summary)
	req.VoiceID = "missing"
	_, err := b.RepurposeContent(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepurposeContentAppliesDefaultVoice(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)
	ctx := context.Background()

	_, err := b.AnalyzeBrandVoice(ctx, content.AnalyzeVoiceRequest{Name: "House", Samples: []string{longText()}})
	require.NoError(t, err)

	resp, err := b.RepurposeContent(ctx, request(platform.Summary, platform.LinkedIn))
	require.NoError(t, err)
	assert.Equal(t, 2, p.count(isVoicePass))
	assert.Equal(t, "Adapted text (in voice)", resp.Outputs[0].OutputText)
}

func TestRepurposeContentNoVoiceSkipsDefault(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, _ := newTestBackend(t, p)
	ctx := context.Background()

	_, err := b.AnalyzeBrandVoice(ctx, content.AnalyzeVoiceRequest{Name: "House", Samples: []string{longText()}})
	require.NoError(t, err)

	req := request(platform.Summary, platform.LinkedIn)
	req.NoVoice = true
	resp, err := b.RepurposeContent(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, p.count(isVoicePass))
	assert.Equal(t, "Adapted text", resp.Outputs[0].OutputText)
}

func TestRepurposeContentBadKeyPoints(t *testing.T) {
	p := &mockProvider{respond: func(r llm.Request) (string, error) {
		if r.System == keyPointsPrompt {
			return "I could not find any key points.", nil
		}
		return "Adapted text", nil
	}}
	b, _ := newTestBackend(t, p)

	_, err := b.RepurposeContent(context.Background(), request(platform.Summary))
	require.Error(t, err)

	page, err := b.GetHistory(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestRepurposeContentAdaptFailureSavesNothing(t *testing.T) {
	p := &mockProvider{respond: func(r llm.Request) (string, error) {
		if strings.Contains(r.System, "LinkedIn") {
			return "", errors.New("upstream overloaded")
		}
		return defaultResponses(r)
	}}
	b, db := newTestBackend(t, p)

	_, err := b.RepurposeContent(context.Background(), request(platform.Summary, platform.LinkedIn))
	require.ErrorContains(t, err, "upstream overloaded")

	used, err := db.UsageSince(monthStart(fixedNow))
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestAnalyzeBrandVoiceValidation(t *testing.T) {
	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = longText()
	}
	tests := []struct {
		name string
		req  content.AnalyzeVoiceRequest
	}{
		{"blank name", content.AnalyzeVoiceRequest{Name: " ", Samples: []string{longText()}}},
		{"no samples", content.AnalyzeVoiceRequest{Name: "House"}},
		{"too many samples", content.AnalyzeVoiceRequest{Name: "House", Samples: tooMany}},
		{"empty sample", content.AnalyzeVoiceRequest{Name: "House", Samples: []string{longText(), "  "}}},
		{"short sample", content.AnalyzeVoiceRequest{Name: "House", Samples: []string{"Too short."}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
			_, err := b.AnalyzeBrandVoice(context.Background(), tt.req)
			var verr *content.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestBrandVoiceLifecycle(t *testing.T) {
	p := &mockProvider{respond: defaultResponses}
	b, db := newTestBackend(t, p)
	ctx := context.Background()

	first, err := b.AnalyzeBrandVoice(ctx, content.AnalyzeVoiceRequest{Name: "Zeta", Samples: []string{longText()}})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "warm", first.StyleAttributes.Tone)
	assert.Equal(t, []string{"synergy"}, first.StyleAttributes.AvoidPhrases)

	second, err := b.AnalyzeBrandVoice(ctx, content.AnalyzeVoiceRequest{Name: "Alpha", Samples: []string{longText(), longText()}})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	samples, err := db.GetVoiceSamples(second.ID)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	require.NoError(t, b.SetDefaultVoice(ctx, second.ID))
	voices, err := b.GetBrandVoices(ctx)
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, second.ID, voices[0].ID)
	assert.True(t, voices[0].IsDefault)
	assert.False(t, voices[1].IsDefault)

	assert.ErrorIs(t, b.SetDefaultVoice(ctx, "missing"), ErrNotFound)
	require.NoError(t, b.DeleteBrandVoice(ctx, first.ID))
	assert.ErrorIs(t, b.DeleteBrandVoice(ctx, first.ID), ErrNotFound)
}

func TestGetHistoryBounds(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
	ctx := context.Background()

	_, err := b.GetHistory(ctx, 0, 10)
	var verr *content.ValidationError
	assert.ErrorAs(t, err, &verr)

	page, err := b.GetHistory(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Empty(t, page.Items)

	page, err = b.GetHistory(ctx, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
}

func TestDeleteHistoryItem(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
	ctx := context.Background()

	resp, err := b.RepurposeContent(ctx, request(platform.Summary))
	require.NoError(t, err)

	require.NoError(t, b.DeleteHistoryItem(ctx, resp.ContentInputID))
	_, err = b.GetHistoryDetail(ctx, resp.ContentInputID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, b.DeleteHistoryItem(ctx, resp.ContentInputID), ErrNotFound)
}

func TestExportHistoryItem(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
	ctx := context.Background()

	resp, err := b.RepurposeContent(ctx, request(platform.TwitterThread, platform.Summary))
	require.NoError(t, err)

	path, err := b.ExportHistoryItem(ctx, resp.ContentInputID)
	require.NoError(t, err)
	assert.Equal(t, "export_id-0001_20260310_120000.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>Small teams</title>")
	assert.Contains(t, html, "Twitter/X Thread")
	assert.Contains(t, html, "Small teams win.")
	assert.Contains(t, html, "<strong>1/2</strong>")

	_, err = b.ExportHistoryItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUsage(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
	b.opts.Now = func() time.Time { return time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC) }

	info, err := b.GetUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, info.Used)
	assert.Equal(t, 50, info.Limit)
	assert.Equal(t, "2027-01-01T00:00:00.000Z", info.ResetsAt)

	assert.Error(t, b.SetMonthlyLimit(0))
}

func TestAPIKey(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})

	key, err := b.GetAPIKey()
	require.NoError(t, err)
	assert.Empty(t, key)

	var verr *content.ValidationError
	assert.ErrorAs(t, b.SetAPIKey("not-a-key"), &verr)

	require.NoError(t, b.SetAPIKey("  sk-ant-abcdefgh1234  "))
	key, err = b.GetAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-a...1234", key)

	require.NoError(t, b.SetAPIKey(""))
	key, err = b.GetAPIKey()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestSetAPIKeyFollowsConfiguredProvider(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var verr *content.ValidationError
	openai := New(db, nil, Options{Provider: "openai"}, nil)
	require.NoError(t, openai.SetAPIKey("sk-proj-abcdefgh5678"))
	key, err := openai.GetAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-p...5678", key)
	assert.ErrorAs(t, openai.SetAPIKey("AIzaSyExample"), &verr)

	gemini := New(db, nil, Options{Provider: "gemini"}, nil)
	require.NoError(t, gemini.SetAPIKey("AIzaSyExample1234"))
	key, err = gemini.GetAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "AIza...1234", key)
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"short":                "****",
		"12345678":             "****",
		"sk-ant-0123456789xyz": "sk-a...9xyz",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskKey(in), in)
	}
}

func TestFetchURLWithoutFetcher(t *testing.T) {
	b, _ := newTestBackend(t, &mockProvider{respond: defaultResponses})
	_, err := b.FetchURL(context.Background(), "https://example.com")
	assert.Error(t, err)
}
