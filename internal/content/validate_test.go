package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/repurposer/internal/platform"
)

func filler(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 4, WordCount("one two\nthree\tfour"))
	assert.Equal(t, 2, WordCount("  leading and\n\n"))
	assert.Equal(t, 3, WordCount("hello, world! again"))
}

func TestIsEligibleURLMode(t *testing.T) {
	assert.False(t, IsEligible(true, "", "", MinContentWords))
	assert.False(t, IsEligible(true, "   \t", filler(100), MinContentWords))
	assert.True(t, IsEligible(true, "https://example.com/post", "", MinContentWords))
}

func TestIsEligibleTextMode(t *testing.T) {
	assert.False(t, IsEligible(false, "", filler(49), MinContentWords))
	assert.True(t, IsEligible(false, "", filler(50), MinContentWords))
	assert.False(t, IsEligible(false, "https://example.com", "", MinContentWords))
	assert.True(t, IsEligible(false, "", "a b c", 3))
}

func validRequest() Request {
	return Request{
		Content: filler(60),
		Formats: []platform.Format{platform.TwitterThread, platform.Summary},
		Tone:    platform.Professional,
		Length:  platform.Medium,
	}
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"blank content", func(r *Request) { r.Content = "  \n" }},
		{"no formats", func(r *Request) { r.Formats = nil }},
		{"unknown format", func(r *Request) { r.Formats = []platform.Format{"tiktok"} }},
		{"duplicate format", func(r *Request) {
			r.Formats = []platform.Format{platform.LinkedIn, platform.LinkedIn}
		}},
		{"unknown tone", func(r *Request) { r.Tone = "sarcastic" }},
		{"unknown length", func(r *Request) { r.Length = "" }},
		{"tweet count out of range", func(r *Request) {
			r.Config = &platform.Config{TweetCount: platform.Int(40)}
		}},
		{"voice selected and disabled", func(r *Request) {
			r.VoiceID = "house"
			r.NoVoice = true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
}

func TestRequestValidateAllFormats(t *testing.T) {
	r := validRequest()
	r.Formats = append([]platform.Format(nil), platform.Formats...)
	assert.NoError(t, r.Validate())
}
