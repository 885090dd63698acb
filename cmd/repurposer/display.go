package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/platform"
	"github.com/TobiSchelling/repurposer/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// measure renders "value/limit" red when over the limit and green otherwise.
func measure(m platform.Measure, unit string) string {
	s := fmt.Sprintf("%d/%d %s", m.Value, m.Limit, unit)
	if m.Over() {
		return overStyle.Render(s)
	}
	return okStyle.Render(s)
}

func printResults(results []store.Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		if r.Err != nil {
			fmt.Println(headerStyle.Render(fmt.Sprintf("[%d] %s", i+1, r.Output.Format)))
			fmt.Println(overStyle.Render("  " + r.Err.Error()))
			fmt.Println(r.Output.OutputText)
			continue
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("[%d] %s", i+1, r.View.Format().Label())))
		printView(r.View)
	}
}

func printView(v decode.View) {
	lim := platform.Limits()
	switch v := v.(type) {
	case decode.Thread:
		n := len(v.Tweets)
		count := platform.Measure{Value: n, Limit: lim.Twitter.MaxTweets}
		if !lim.TweetCountInRange(n) {
			fmt.Println(overStyle.Render(fmt.Sprintf("  %d tweets, expected %d-%d", n, lim.Twitter.MinTweets, lim.Twitter.MaxTweets)))
		} else {
			fmt.Println("  " + measure(count, "tweets"))
		}
		for i, t := range v.Tweets {
			fmt.Printf("\n%s %s\n%s\n", labelStyle.Render(fmt.Sprintf("%d/%d", i+1, n)), measure(platform.TweetLength(t), "chars"), t)
		}
	case decode.LinkedInPost:
		fmt.Println("  " + measure(platform.LinkedInLength(v.Text), "chars"))
		fmt.Println()
		if v.Fold {
			fmt.Println(v.Lead + dimStyle.Render(" ...see more"))
			fmt.Println(v.Continuation)
		} else {
			fmt.Println(v.Text)
		}
	case decode.InstagramCaption:
		fmt.Printf("  %s  %s\n\n", measure(platform.InstagramLength(v.Text), "chars"),
			measure(platform.HashtagMeasure(platform.Instagram, v.HashtagCount()), "hashtags"))
		fmt.Println(v.Body)
		if v.Hashtags != "" {
			fmt.Println()
			fmt.Println(dimStyle.Render(v.Hashtags))
		}
	case decode.Newsletter:
		fmt.Printf("%s %s  %s\n", labelStyle.Render("Subject:"), v.Subject, measure(platform.NewsletterSubjectLength(v.Subject), "chars"))
		fmt.Printf("%s %s  %s\n\n", labelStyle.Render("Preview:"), v.Preview, measure(platform.NewsletterPreviewLength(v.Preview), "chars"))
		fmt.Println(v.Body)
	case decode.EmailSequence:
		for i, e := range v.Emails {
			if i > 0 {
				fmt.Println(dimStyle.Render(strings.Repeat("-", 40)))
			}
			fmt.Println(labelStyle.Render(fmt.Sprintf("Email %d: %s", e.Number, e.Label)))
			if e.Subject != "" {
				fmt.Printf("%s %s\n", labelStyle.Render("Subject:"), e.Subject)
			}
			if e.Preview != "" {
				fmt.Printf("%s %s\n", labelStyle.Render("Preview:"), e.Preview)
			}
			fmt.Println()
			fmt.Println(e.Body)
			if e.CTA != "" {
				fmt.Println()
				fmt.Println(labelStyle.Render("CTA: ") + e.CTA)
			}
		}
	case decode.Summary:
		fmt.Println(dimStyle.Render(fmt.Sprintf("  %d chars", v.Chars())))
		fmt.Println()
		fmt.Println(v.Text)
	case decode.Passthrough:
		fmt.Println(dimStyle.Render("  (unstructured output)"))
		fmt.Println()
		fmt.Println(v.Text)
	}
}

func usageLine(u *content.UsageInfo) string {
	m := platform.Measure{Value: u.Used, Limit: u.Limit}
	s := measure(m, "formats this month")
	if t, err := time.Parse(time.RFC3339, u.ResetsAt); err == nil {
		s += dimStyle.Render(", resets " + humanize.Time(t))
	}
	return s
}

// when renders a stored timestamp relative to now.
func when(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return humanize.Time(t)
}
