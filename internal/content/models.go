// Package content holds the submission and generation data model exchanged
// with the backend, plus the client-side eligibility rules.
package content

import (
	"github.com/TobiSchelling/repurposer/internal/platform"
)

// Submission is the transient content a generate action works from.
// Text is authoritative in text mode, SourceURL in URL mode.
type Submission struct {
	Text      string
	SourceURL string
	Title     string
	WordCount int
}

// Request is sent to the backend to generate derivative texts.
type Request struct {
	Content   string            `json:"content"`
	SourceURL string            `json:"source_url,omitempty"`
	Title     string            `json:"title,omitempty"`
	Formats   []platform.Format `json:"formats"`
	Tone      platform.Tone     `json:"tone"`
	Length    platform.Length   `json:"length"`
	VoiceID   string            `json:"voice_id,omitempty"`
	Config    *platform.Config  `json:"config,omitempty"`

	// NoVoice skips the brand-voice pass, including the default voice.
	NoVoice bool `json:"no_voice,omitempty"`
}

// Response is the backend's answer to a Request.
type Response struct {
	ContentInputID string   `json:"content_input_id"`
	Outputs        []Output `json:"outputs"`
}

// Output is one generated text as returned by the backend. Format is kept as
// the raw backend string: its membership in the known enum is checked when
// the output is decoded, not here.
type Output struct {
	ID             string `json:"id"`
	ContentInputID string `json:"content_input_id"`
	Format         string `json:"format"`
	OutputText     string `json:"output_text"`
	CreatedAt      string `json:"created_at"`
}

// Fetched is the text extracted from a source URL.
type Fetched struct {
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Input is a saved submission.
type Input struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	RawText   string `json:"raw_text"`
	WordCount int    `json:"word_count"`
	CreatedAt string `json:"created_at"`
}

// HistoryItem summarizes one saved submission.
type HistoryItem struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	WordCount   int    `json:"word_count"`
	FormatCount int    `json:"format_count"`
	CreatedAt   string `json:"created_at"`
}

// HistoryPage is one page of saved submissions, newest first.
type HistoryPage struct {
	Items    []HistoryItem `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// HistoryDetail is a saved submission with all of its outputs.
type HistoryDetail struct {
	Input   Input    `json:"input"`
	Outputs []Output `json:"outputs"`
}

// UsageInfo reports generation quota for the current month.
type UsageInfo struct {
	Used     int    `json:"used"`
	Limit    int    `json:"limit"`
	ResetsAt string `json:"resets_at"`
}
