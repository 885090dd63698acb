package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFormat("  LinkedIn ")
	require.NoError(t, err)
	assert.Equal(t, LinkedIn, got)

	_, err = ParseFormat("tiktok")
	assert.Error(t, err)
}

func TestParseToneAndLength(t *testing.T) {
	tone, err := ParseTone("storytelling")
	require.NoError(t, err)
	assert.Equal(t, Storytelling, tone)

	_, err = ParseTone("angry")
	assert.Error(t, err)

	l, err := ParseLength("LONG")
	require.NoError(t, err)
	assert.Equal(t, Long, l)

	_, err = ParseLength("huge")
	assert.Error(t, err)
}

func TestConfigIsEmpty(t *testing.T) {
	assert.True(t, Config{}.IsEmpty())
	assert.False(t, Config{IncludeEmojis: Bool(false)}.IsEmpty())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{TweetCount: Int(3)}.Validate())
	assert.NoError(t, Config{TweetCount: Int(15)}.Validate())
	assert.Error(t, Config{TweetCount: Int(2)}.Validate())
	assert.Error(t, Config{TweetCount: Int(16)}.Validate())
	assert.Error(t, Config{HashtagCount: Int(-1)}.Validate())
}

func TestConfigMerge(t *testing.T) {
	defaults := Config{TweetCount: Int(5), HashtagCount: Int(3), IncludeEmojis: Bool(true)}
	merged := Config{TweetCount: Int(8)}.Merge(defaults)

	assert.Equal(t, 8, *merged.TweetCount)
	assert.Equal(t, 3, *merged.HashtagCount)
	assert.True(t, *merged.IncludeEmojis)
}

func TestConfigClone(t *testing.T) {
	c := Config{TweetCount: Int(5), IncludeEmojis: Bool(true)}
	cp := c.Clone()
	*cp.TweetCount = 9

	assert.Equal(t, 5, *c.TweetCount)
	assert.Nil(t, cp.HashtagCount)
	assert.True(t, *cp.IncludeEmojis)
}

func TestLimitsTable(t *testing.T) {
	lt := Limits()
	assert.Equal(t, 280, lt.Twitter.CharsPerTweet)
	assert.Equal(t, 10, lt.Twitter.DefaultTweets)
	assert.Equal(t, 140, lt.LinkedIn.FoldAt)
	assert.Equal(t, 125, lt.Instagram.PreviewChars)
	assert.Equal(t, 400, lt.Newsletter.BodyWords.For(Long))
	assert.Equal(t, 3, lt.EmailSequence.EmailCount)
	assert.Equal(t, 75, lt.EmailWords(0, Medium))
	assert.Equal(t, 200, lt.EmailWords(1, Long))
	assert.Equal(t, 75, lt.EmailWords(2, Short))
	assert.Equal(t, 0, lt.EmailWords(3, Short))
	assert.Equal(t, 1, lt.Summary.Sentences.For(Short))
}

func TestLimitsReturnsCopy(t *testing.T) {
	lt := Limits()
	lt.Twitter.CharsPerTweet = 1
	lt.EmailSequence.Words[0].Short = 1

	fresh := Limits()
	assert.Equal(t, 280, fresh.Twitter.CharsPerTweet)
	assert.Equal(t, 50, fresh.EmailSequence.Words[0].Short)
}

func TestTweetCountInRange(t *testing.T) {
	lt := Limits()
	assert.False(t, lt.TweetCountInRange(2))
	assert.True(t, lt.TweetCountInRange(3))
	assert.True(t, lt.TweetCountInRange(15))
	assert.False(t, lt.TweetCountInRange(16))
}

func TestMeasures(t *testing.T) {
	long := make([]rune, 281)
	for i := range long {
		long[i] = 'é'
	}
	m := TweetLength(string(long))
	assert.Equal(t, 281, m.Value)
	assert.True(t, m.Over())

	assert.False(t, NewsletterSubjectLength("Short subject").Over())
	assert.Equal(t, 5, HashtagMeasure(Instagram, 7).Limit)
	assert.True(t, HashtagMeasure(LinkedIn, 6).Over())
	assert.Equal(t, 0, HashtagMeasure(Summary, 2).Limit)
}
