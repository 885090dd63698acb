// Package decode turns generated output text into per-format view models.
//
// Decoding never fails for a known format: structured formats that cannot be
// parsed fall back to the raw text. Only a format outside the known set is
// reported as an error.
package decode

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/TobiSchelling/repurposer/internal/platform"
)

// View is a decoded output. The set of implementations is closed.
type View interface {
	Format() platform.Format
	isView()
}

// Thread is a decoded twitter_thread output.
type Thread struct {
	Tweets []string
}

// Email is one message of an email sequence.
type Email struct {
	Number  int
	Label   string
	Subject string
	Preview string
	Body    string
	CTA     string
}

// EmailSequence is a decoded email_sequence output.
type EmailSequence struct {
	Emails []Email
}

// Newsletter is a decoded newsletter output.
type Newsletter struct {
	Subject string
	Preview string
	Body    string
}

// Passthrough carries raw text for a structured format whose payload could
// not be parsed. It is a normal decode outcome.
type Passthrough struct {
	Of   platform.Format
	Text string
}

// LinkedInPost is a decoded linkedin output.
type LinkedInPost struct {
	Text         string
	Fold         bool
	Lead         string
	Continuation string
}

// InstagramCaption is a decoded instagram output with its trailing hashtag
// run split from the body.
type InstagramCaption struct {
	Text     string
	Body     string
	Hashtags string
}

// Summary is a decoded summary output.
type Summary struct {
	Text string
}

func (Thread) Format() platform.Format           { return platform.TwitterThread }
func (EmailSequence) Format() platform.Format    { return platform.EmailSequence }
func (Newsletter) Format() platform.Format       { return platform.Newsletter }
func (p Passthrough) Format() platform.Format    { return p.Of }
func (LinkedInPost) Format() platform.Format     { return platform.LinkedIn }
func (InstagramCaption) Format() platform.Format { return platform.Instagram }
func (Summary) Format() platform.Format          { return platform.Summary }

func (Thread) isView()           {}
func (EmailSequence) isView()    {}
func (Newsletter) isView()       {}
func (Passthrough) isView()      {}
func (LinkedInPost) isView()     {}
func (InstagramCaption) isView() {}
func (Summary) isView()          {}

// Chars returns the character count of the post.
func (p LinkedInPost) Chars() int { return platform.CharCount(p.Text) }

// Chars returns the character count of the whole caption.
func (c InstagramCaption) Chars() int { return platform.CharCount(c.Text) }

// HashtagCount returns the number of tags in the hashtag line.
func (c InstagramCaption) HashtagCount() int {
	return len(hashtagRe.FindAllString(c.Hashtags, -1))
}

// Chars returns the character count of the summary.
func (s Summary) Chars() int { return platform.CharCount(s.Text) }

// UnknownFormatError reports an output whose format is outside the known set.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q", e.Format)
}

// Decode decodes outputText according to format. It returns an
// *UnknownFormatError, and a nil View, when format is not a known format.
func Decode(format, outputText string) (View, error) {
	f := platform.Format(format)
	if !f.Valid() {
		return nil, &UnknownFormatError{Format: format}
	}
	return DecodeFormat(f, outputText), nil
}

// DecodeFormat decodes outputText for a known format. It panics on a format
// outside platform.Formats, which Decode guards against.
func DecodeFormat(f platform.Format, outputText string) View {
	switch f {
	case platform.TwitterThread:
		return decodeThread(outputText)
	case platform.EmailSequence:
		return decodeEmails(outputText)
	case platform.Newsletter:
		return decodeNewsletter(outputText)
	case platform.LinkedIn:
		return decodeLinkedIn(outputText)
	case platform.Instagram:
		return decodeInstagram(outputText)
	case platform.Summary:
		return Summary{Text: outputText}
	}
	panic(fmt.Sprintf("decode: no decoder for format %q", f))
}

// StripCodeFence removes a surrounding markdown code fence, if any, and
// trims whitespace.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	endIdx := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

// parse returns the JSON document in text, tolerating a markdown fence.
func parse(text string) (gjson.Result, bool) {
	body := StripCodeFence(text)
	if !gjson.Valid(body) {
		return gjson.Result{}, false
	}
	return gjson.Parse(body), true
}

func decodeThread(text string) View {
	doc, ok := parse(text)
	if !ok || !doc.IsArray() {
		return Thread{Tweets: []string{text}}
	}
	tweets := []string{}
	doc.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			tweets = append(tweets, v.Str)
		}
		return true
	})
	return Thread{Tweets: tweets}
}

// first returns the first present string field among keys.
func first(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func decodeEmails(text string) View {
	doc, ok := parse(text)
	emails := doc.Get("emails")
	if !ok || !doc.IsObject() || !emails.IsArray() {
		return Passthrough{Of: platform.EmailSequence, Text: text}
	}

	var out []Email
	for i, e := range emails.Array() {
		if !e.IsObject() {
			continue
		}
		n := int(e.Get("email_number").Int())
		if n == 0 {
			n = i + 1
		}
		label := first(e, "label")
		if label == "" {
			label = fmt.Sprintf("Email %d", n)
		}
		out = append(out, Email{
			Number:  n,
			Label:   label,
			Subject: first(e, "subject_line", "subject"),
			Preview: first(e, "preview_text", "preview"),
			Body:    first(e, "body"),
			CTA:     first(e, "cta_text", "cta"),
		})
	}
	if len(out) == 0 {
		return Passthrough{Of: platform.EmailSequence, Text: text}
	}
	return EmailSequence{Emails: out}
}

func decodeNewsletter(text string) View {
	doc, ok := parse(text)
	if !ok || !doc.IsObject() {
		return Passthrough{Of: platform.Newsletter, Text: text}
	}
	n := Newsletter{
		Subject: first(doc, "subject", "subject_line"),
		Preview: first(doc, "preview", "preview_text"),
		Body:    first(doc, "body"),
	}
	if n == (Newsletter{}) {
		return Passthrough{Of: platform.Newsletter, Text: text}
	}
	return n
}

func decodeLinkedIn(text string) View {
	post := LinkedInPost{Text: text, Lead: text}
	fold := platform.Limits().LinkedIn.FoldAt
	runes := []rune(text)
	if len(runes) > fold {
		post.Fold = true
		post.Lead = string(runes[:fold])
		post.Continuation = string(runes[fold:])
	}
	return post
}

var (
	trailingHashtagsRe = regexp.MustCompile(`((?:\s*#\w+)+)\s*$`)
	hashtagRe          = regexp.MustCompile(`#\w+`)
)

func decodeInstagram(text string) View {
	c := InstagramCaption{Text: text, Body: text}
	m := trailingHashtagsRe.FindStringSubmatchIndex(text)
	if m == nil {
		return c
	}
	c.Body = text[:m[0]]
	c.Hashtags = strings.TrimSpace(text[m[2]:m[3]])
	return c
}
