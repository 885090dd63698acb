// Package collect lists recent entries of RSS/Atom feeds so one can be
// picked as a source URL.
package collect

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultLimit caps the number of entries returned per feed.
const DefaultLimit = 20

// Entry is one parsed feed item.
type Entry struct {
	URL       string
	Title     string
	Published *time.Time
	Summary   string
	Source    string
}

// ListEntries fetches feedURL and returns up to limit entries, newest first.
// Items without a link or title are skipped. Undated items sort last.
func ListEntries(ctx context.Context, feedURL string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	feed, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = extractSourceName(feedURL)
	}

	var entries []Entry
	for _, item := range feed.Items {
		if e := parseItem(item, source); e != nil {
			entries = append(entries, *e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Published, entries[j].Published
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseItem(item *gofeed.Item, source string) *Entry {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if !strings.HasPrefix(itemURL, "http://") && !strings.HasPrefix(itemURL, "https://") {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	return &Entry{
		URL:       itemURL,
		Title:     title,
		Published: published,
		Summary:   stripHTML(summary),
		Source:    source,
	}
}

func stripHTML(text string) string {
	// Simple HTML tag removal
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(result.String())

	return strings.Join(strings.Fields(s), " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
