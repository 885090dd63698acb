// Package platform defines the target output formats, generation presets and
// the static per-platform limits shared by request shaping and display.
package platform

import (
	"fmt"
	"strings"
)

// Format is one of the fixed target platforms a submission can be repurposed into.
type Format string

const (
	TwitterThread Format = "twitter_thread"
	LinkedIn      Format = "linkedin"
	Instagram     Format = "instagram"
	Newsletter    Format = "newsletter"
	EmailSequence Format = "email_sequence"
	Summary       Format = "summary"
)

// Formats lists every known format in display order.
var Formats = []Format{TwitterThread, LinkedIn, Instagram, Newsletter, EmailSequence, Summary}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case TwitterThread, LinkedIn, Instagram, Newsletter, EmailSequence, Summary:
		return true
	}
	return false
}

// Label returns the human-readable platform name.
func (f Format) Label() string {
	switch f {
	case TwitterThread:
		return "Twitter/X Thread"
	case LinkedIn:
		return "LinkedIn Post"
	case Instagram:
		return "Instagram Caption"
	case Newsletter:
		return "Newsletter"
	case EmailSequence:
		return "Email Sequence"
	case Summary:
		return "Summary"
	}
	return string(f)
}

// ParseFormat converts a string into a known Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown output format %q", s)
	}
	return f, nil
}

// Tone is the voice preset applied to every generated format.
type Tone string

const (
	Casual       Tone = "casual"
	Professional Tone = "professional"
	Storytelling Tone = "storytelling"
	Educational  Tone = "educational"
)

// Tones lists every known tone preset.
var Tones = []Tone{Casual, Professional, Storytelling, Educational}

func (t Tone) Valid() bool {
	switch t {
	case Casual, Professional, Storytelling, Educational:
		return true
	}
	return false
}

// ParseTone converts a string into a known Tone.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tone %q", s)
	}
	return t, nil
}

// Length is the size preset applied to every generated format.
type Length string

const (
	Short  Length = "short"
	Medium Length = "medium"
	Long   Length = "long"
)

func (l Length) Valid() bool {
	switch l {
	case Short, Medium, Long:
		return true
	}
	return false
}

// ParseLength converts a string into a known Length.
func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown length %q", s)
	}
	return l, nil
}

// Config carries optional per-request generation hints.
// Nil fields are left to the backend's defaults.
type Config struct {
	TweetCount    *int  `json:"tweet_count,omitempty"`
	HashtagCount  *int  `json:"hashtag_count,omitempty"`
	IncludeEmojis *bool `json:"include_emojis,omitempty"`
}

// IsEmpty reports whether no hint is set.
func (c Config) IsEmpty() bool {
	return c.TweetCount == nil && c.HashtagCount == nil && c.IncludeEmojis == nil
}

// Validate checks the hints against the constraint table.
func (c Config) Validate() error {
	if c.TweetCount != nil {
		tw := Limits().Twitter
		if *c.TweetCount < tw.MinTweets || *c.TweetCount > tw.MaxTweets {
			return fmt.Errorf("tweet_count must be between %d and %d, got %d", tw.MinTweets, tw.MaxTweets, *c.TweetCount)
		}
	}
	if c.HashtagCount != nil && *c.HashtagCount < 0 {
		return fmt.Errorf("hashtag_count must not be negative, got %d", *c.HashtagCount)
	}
	return nil
}

// Merge returns c with every nil hint filled from defaults.
func (c Config) Merge(defaults Config) Config {
	out := c
	if out.TweetCount == nil {
		out.TweetCount = defaults.TweetCount
	}
	if out.HashtagCount == nil {
		out.HashtagCount = defaults.HashtagCount
	}
	if out.IncludeEmojis == nil {
		out.IncludeEmojis = defaults.IncludeEmojis
	}
	return out
}

// Clone returns a copy of c that shares no pointers with it.
func (c Config) Clone() Config {
	var out Config
	if c.TweetCount != nil {
		out.TweetCount = Int(*c.TweetCount)
	}
	if c.HashtagCount != nil {
		out.HashtagCount = Int(*c.HashtagCount)
	}
	if c.IncludeEmojis != nil {
		out.IncludeEmojis = Bool(*c.IncludeEmojis)
	}
	return out
}

// Int returns a pointer to v, for building Config literals.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building Config literals.
func Bool(v bool) *bool { return &v }
