package backend

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

const keyPointsPrompt = `You analyze written content and extract its key points as structured JSON.

Respond with ONLY this JSON, no markdown and no commentary:
{
    "main_thesis": "The central argument of the content",
    "key_arguments": ["Argument one", "Argument two"],
    "supporting_data": ["A statistic, example or quote that backs an argument"],
    "target_audience": "Who the content is written for",
    "emotional_tone": "The emotional register, e.g. urgent, hopeful, matter-of-fact",
    "call_to_action": "What the reader is asked to do, or null"
}

List between 3 and 7 key arguments. Keep every entry short and specific.`

// keyPoints is the stage-one extraction result every format is adapted from.
type keyPoints struct {
	MainThesis     string   `json:"main_thesis"`
	KeyArguments   []string `json:"key_arguments"`
	SupportingData []string `json:"supporting_data"`
	TargetAudience string   `json:"target_audience"`
	EmotionalTone  string   `json:"emotional_tone"`
	CallToAction   *string  `json:"call_to_action"`
}

func emojiRule(cfg platform.Config, on, off string) string {
	if cfg.IncludeEmojis != nil && *cfg.IncludeEmojis {
		return on
	}
	return off
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// formatPrompt returns the system prompt for adapting key points to f.
// Structured formats ask for JSON in the shape the decoders read.
func formatPrompt(f platform.Format, tone platform.Tone, length platform.Length, cfg platform.Config) string {
	lim := platform.Limits()
	switch f {
	case platform.TwitterThread:
		tweets := intOr(cfg.TweetCount, lim.Twitter.DefaultTweets)
		return fmt.Sprintf(`You write Twitter/X threads. Turn the key points you are given into a thread of exactly %d tweets.

Tone: %s
Length: %s
Hashtags: put %d relevant hashtags in the last tweet only
Emojis: %s

The first tweet hooks the reader with a bold claim, a surprising number or a question.
Every middle tweet makes one point and reads well on its own.
The last tweet lands the takeaway and may invite a reply.
Each tweet stays under %d characters. Do not number the tweets.

Respond with ONLY a JSON array of strings, one string per tweet, in order.`,
			tweets, tone, length, intOr(cfg.HashtagCount, 3),
			emojiRule(cfg, "use a few relevant emojis", "do not use emojis"),
			lim.Twitter.CharsPerTweet)

	case platform.LinkedIn:
		return fmt.Sprintf(`You write LinkedIn posts. Turn the key points you are given into one post.

Tone: %s
Length: %s (aim for about %d characters, never more than %d)
Emojis: %s

The first %d characters show before "see more", so the opening line must earn the click.
Use short paragraphs of one or two sentences with blank lines between them.
Write in the first person and avoid corporate filler.
Close with a question or a call to action, then 3 to %d hashtags on the last line.

Respond with ONLY the post text.`,
			tone, length, lim.LinkedIn.OptimalLength, lim.LinkedIn.MaxChars,
			emojiRule(cfg, "emojis may mark bullets or section breaks", "do not use emojis, use dashes for bullets"),
			lim.LinkedIn.FoldAt, lim.LinkedIn.MaxHashtags)

	case platform.Instagram:
		return fmt.Sprintf(`You write Instagram captions. Turn the key points you are given into one caption.

Tone: %s
Length: %s (never more than %d characters including hashtags)
Hashtags: exactly %d, all together at the very end after a blank line
Emojis: %s

The first %d characters appear in the feed, so open with a line that stops the scroll.
Keep it conversational and end the body with a call to action such as save, share or comment.

Respond with ONLY the caption text followed by the hashtag block.`,
			tone, length, lim.Instagram.MaxChars, intOr(cfg.HashtagCount, 3),
			emojiRule(cfg, "use emojis freely", "do not use emojis"),
			lim.Instagram.PreviewChars)

	case platform.Newsletter:
		return fmt.Sprintf(`You write email newsletters that read like a note to a smart friend. Turn the key points you are given into one edition.

Tone: %s
Length: about %d words of body
Emojis: %s

The subject line is curiosity-driven and at most %d characters.
The preview text is at most %d characters and complements the subject.
The body opens with a hook, covers the material in two or three headed sections using markdown, lists the key takeaways as bullets and closes with a personal sign-off.

Respond with ONLY this JSON:
{"subject_line": "...", "preview_text": "...", "body": "..."}`,
			tone, lim.Newsletter.BodyWords.For(length),
			emojiRule(cfg, "a few emojis in headings are fine", "do not use emojis"),
			lim.Newsletter.SubjectMaxChars, lim.Newsletter.PreviewMaxChars)

	case platform.EmailSequence:
		n := lim.EmailSequence.EmailCount
		return fmt.Sprintf(`You write email nurture sequences. Turn the key points you are given into a sequence of %d emails.

Tone: %s
Emojis: %s

Email 1 is the hook: lead with the strongest insight, about %d words.
Email 2 is the deep dive: examples and data with a soft call to action, about %d words.
Email 3 is the close: restate the value and make a clear call to action, about %d words.
Subject lines stay under 50 characters. Each email stands alone while building on the previous one.

Respond with ONLY this JSON:
{"emails": [{"email_number": 1, "label": "The Hook", "subject_line": "...", "preview_text": "...", "body": "...", "cta_text": "..."}]}`,
			n, tone,
			emojiRule(cfg, "an emoji in a subject line is fine", "do not use emojis"),
			lim.EmailWords(0, length), lim.EmailWords(1, length), lim.EmailWords(2, length))

	case platform.Summary:
		return fmt.Sprintf(`You write executive summaries. Turn the key points you are given into a summary of %s words.

Tone: %s

State the main thesis first, then the most important supporting points. No headings, no bullet points.

Respond with ONLY the summary text.`,
			summaryWords(length), tone)
	}
	panic(fmt.Sprintf("backend: no prompt for format %q", f))
}

func summaryWords(l platform.Length) string {
	switch l {
	case platform.Short:
		return "50-100"
	case platform.Long:
		return "200-400"
	}
	return "100-200"
}

// voicePrompt returns the system prompt that rewrites a draft in a brand voice.
func voicePrompt(f platform.Format, style content.StyleAttributes) string {
	var b strings.Builder
	b.WriteString("You edit drafts so they match a brand voice.\n\n")
	fmt.Fprintf(&b, "Tone: %s\n", style.Tone)
	fmt.Fprintf(&b, "Vocabulary: %s\n", style.VocabularyLevel)
	fmt.Fprintf(&b, "Sentences: %s\n", style.SentenceStyle)
	fmt.Fprintf(&b, "Personality: %s\n", strings.Join(style.PersonalityTraits, ", "))
	fmt.Fprintf(&b, "Signature phrases: %s\n", strings.Join(style.SignaturePhrases, ", "))
	fmt.Fprintf(&b, "Never use: %s\n\n", strings.Join(style.AvoidPhrases, ", "))
	fmt.Fprintf(&b, "The draft is a %s.\n", f.Label())
	b.WriteString(`Keep its structure exactly. If it is JSON, return JSON with the same shape and keys.
Adjust word choice, rhythm and tone to the voice.
Work signature phrases in only where they fit.
Replace anything on the never-use list.
Keep every key point.

Respond with ONLY the revised draft.`)
	return b.String()
}

const voiceAnalysisPrompt = `You analyze writing samples and describe the author's voice.

Respond with ONLY this JSON, no markdown and no commentary:
{
    "tone": "e.g. warm and direct",
    "vocabulary_level": "e.g. plain, technical, academic",
    "sentence_style": "e.g. short and punchy, long and flowing",
    "personality_traits": ["trait"],
    "signature_phrases": ["a phrase the author repeats"],
    "avoid_phrases": ["a phrase that would sound wrong in this voice"]
}`

func voiceSamplesMessage(samples []string) string {
	var b strings.Builder
	for i, s := range samples {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Sample %d ---\n%s", i+1, s)
	}
	return b.String()
}
