package decode

import (
	"fmt"
	"strings"
)

// Markdown renders a view as a markdown fragment. It never shortens the
// generated text.
func Markdown(v View) string {
	var b strings.Builder
	switch v := v.(type) {
	case Thread:
		for i, t := range v.Tweets {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "**%d/%d**\n\n%s", i+1, len(v.Tweets), t)
		}
	case EmailSequence:
		for i, e := range v.Emails {
			if i > 0 {
				b.WriteString("\n\n---\n\n")
			}
			fmt.Fprintf(&b, "### %s\n\n", e.Label)
			if e.Subject != "" {
				fmt.Fprintf(&b, "**Subject:** %s\n\n", e.Subject)
			}
			if e.Preview != "" {
				fmt.Fprintf(&b, "**Preview:** %s\n\n", e.Preview)
			}
			b.WriteString(e.Body)
			if e.CTA != "" {
				fmt.Fprintf(&b, "\n\n**%s**", e.CTA)
			}
		}
	case Newsletter:
		if v.Subject != "" {
			fmt.Fprintf(&b, "**Subject:** %s\n\n", v.Subject)
		}
		if v.Preview != "" {
			fmt.Fprintf(&b, "**Preview:** %s\n\n", v.Preview)
		}
		b.WriteString(v.Body)
	case Passthrough:
		b.WriteString(v.Text)
	case LinkedInPost:
		b.WriteString(v.Text)
	case InstagramCaption:
		b.WriteString(v.Body)
		if v.Hashtags != "" {
			b.WriteString("\n\n")
			b.WriteString(v.Hashtags)
		}
	case Summary:
		b.WriteString(v.Text)
	}
	return b.String()
}
