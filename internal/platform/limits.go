package platform

import (
	"unicode/utf8"
)

// ByLength holds one value per length preset.
type ByLength struct {
	Short  int
	Medium int
	Long   int
}

// For returns the value for l, falling back to Medium for unknown presets.
func (b ByLength) For(l Length) int {
	switch l {
	case Short:
		return b.Short
	case Long:
		return b.Long
	}
	return b.Medium
}

type TwitterLimits struct {
	CharsPerTweet int
	MinTweets     int
	MaxTweets     int
	DefaultTweets int
}

type LinkedInLimits struct {
	MaxChars      int
	FoldAt        int
	OptimalLength int
	MaxHashtags   int
}

type InstagramLimits struct {
	MaxChars     int
	PreviewChars int
	MaxHashtags  int
}

type NewsletterLimits struct {
	SubjectMaxChars int
	PreviewMaxChars int
	BodyWords       ByLength
}

type EmailSequenceLimits struct {
	EmailCount int
	// Words holds the per-email word targets, indexed by email position.
	Words [3]ByLength
}

type SummaryLimits struct {
	Sentences ByLength
}

// LimitTable is the full per-format constraint table.
type LimitTable struct {
	Twitter       TwitterLimits
	LinkedIn      LinkedInLimits
	Instagram     InstagramLimits
	Newsletter    NewsletterLimits
	EmailSequence EmailSequenceLimits
	Summary       SummaryLimits
}

var limits = LimitTable{
	Twitter:   TwitterLimits{CharsPerTweet: 280, MinTweets: 3, MaxTweets: 15, DefaultTweets: 10},
	LinkedIn:  LinkedInLimits{MaxChars: 3000, FoldAt: 140, OptimalLength: 1300, MaxHashtags: 5},
	Instagram: InstagramLimits{MaxChars: 2200, PreviewChars: 125, MaxHashtags: 5},
	Newsletter: NewsletterLimits{
		SubjectMaxChars: 50,
		PreviewMaxChars: 80,
		BodyWords:       ByLength{Short: 100, Medium: 200, Long: 400},
	},
	EmailSequence: EmailSequenceLimits{
		EmailCount: 3,
		Words: [3]ByLength{
			{Short: 50, Medium: 75, Long: 100},
			{Short: 100, Medium: 150, Long: 200},
			{Short: 75, Medium: 100, Long: 150},
		},
	},
	Summary: SummaryLimits{Sentences: ByLength{Short: 1, Medium: 2, Long: 3}},
}

// Limits returns a copy of the constraint table. The table holds no
// reference types, so callers cannot mutate the shared values.
func Limits() LimitTable {
	return limits
}

// EmailWords returns the word target for the email at zero-based index i.
// It returns 0 for indexes outside the sequence.
func (t LimitTable) EmailWords(i int, l Length) int {
	if i < 0 || i >= len(t.EmailSequence.Words) {
		return 0
	}
	return t.EmailSequence.Words[i].For(l)
}

// TweetCountInRange reports whether a thread of n tweets is within bounds.
func (t LimitTable) TweetCountInRange(n int) bool {
	return n >= t.Twitter.MinTweets && n <= t.Twitter.MaxTweets
}

// Measure pairs an observed value with its limit for display validation.
type Measure struct {
	Value int
	Limit int
}

// Over reports whether the value exceeds the limit.
func (m Measure) Over() bool { return m.Value > m.Limit }

// CharCount counts characters as Unicode code points.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

func TweetLength(tweet string) Measure {
	return Measure{Value: CharCount(tweet), Limit: limits.Twitter.CharsPerTweet}
}

func LinkedInLength(text string) Measure {
	return Measure{Value: CharCount(text), Limit: limits.LinkedIn.MaxChars}
}

func InstagramLength(text string) Measure {
	return Measure{Value: CharCount(text), Limit: limits.Instagram.MaxChars}
}

func NewsletterSubjectLength(subject string) Measure {
	return Measure{Value: CharCount(subject), Limit: limits.Newsletter.SubjectMaxChars}
}

func NewsletterPreviewLength(preview string) Measure {
	return Measure{Value: CharCount(preview), Limit: limits.Newsletter.PreviewMaxChars}
}

// HashtagMeasure measures a hashtag count against the platform's cap.
// Formats without a hashtag cap report a zero limit.
func HashtagMeasure(f Format, count int) Measure {
	switch f {
	case LinkedIn:
		return Measure{Value: count, Limit: limits.LinkedIn.MaxHashtags}
	case Instagram:
		return Measure{Value: count, Limit: limits.Instagram.MaxHashtags}
	}
	return Measure{Value: count}
}
