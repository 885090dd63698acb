package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/repurposer/internal/app"
	"github.com/TobiSchelling/repurposer/internal/collect"
	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

var (
	genText       string
	genFile       string
	genURL        string
	genFeed       string
	genFeedItem   int
	genTitle      string
	genFormats    []string
	genTone       string
	genLength     string
	genVoice      string
	genTweetCount int
	genHashtags   int
	genEmojis     bool
	genCopy       int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Repurpose text or a URL into the selected formats",
	Example: `  repurposer generate --file post.md --format twitter_thread --format linkedin
  repurposer generate --url https://example.com/article --tone casual
  cat post.md | repurposer generate --file - --format summary --copy 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		a := app.New(svc, app.Options{PageSize: cfg.History.PageSize}, logger)
		if err := a.Start(ctx); err != nil {
			return err
		}
		if err := applyGenerateFlags(cmd, a); err != nil {
			return err
		}

		snap := a.Store.Snapshot()
		if !content.IsEligible(snap.UseURL, snap.SourceURL, snap.RawContent, content.MinContentWords) {
			if snap.UseURL {
				return errors.New("a source URL is required")
			}
			return fmt.Errorf("content needs at least %d words, got %d", content.MinContentWords, content.WordCount(snap.RawContent))
		}

		if snap.UseURL {
			fmt.Printf("Fetching %s...\n", snap.SourceURL)
		}
		fmt.Printf("Generating %d format(s)...\n\n", len(snap.SelectedFormats))

		res, err := a.Generate(ctx)
		if err != nil {
			return err
		}
		for _, step := range res.Steps {
			if step.Err == nil {
				fmt.Println(dimStyle.Render("  " + step.Name + ": " + step.Summary))
			}
		}
		fmt.Println()

		final := a.Store.Snapshot()
		printResults(final.Results)
		fmt.Printf("\nSaved as %s\n", final.ContentInputID)
		if final.Usage != nil {
			fmt.Println(usageLine(final.Usage))
		}

		if genCopy > 0 {
			if genCopy > len(final.Results) {
				return fmt.Errorf("--copy %d: only %d outputs", genCopy, len(final.Results))
			}
			f := platform.Format(final.Results[genCopy-1].Output.Format)
			if a.CopyOutput(f) {
				fmt.Printf("Copied %s to clipboard\n", f.Label())
			} else {
				fmt.Println("Could not copy to clipboard")
			}
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genText, "text", "", "Content to repurpose")
	f.StringVarP(&genFile, "file", "f", "", "Read content from a file (- for stdin)")
	f.StringVarP(&genURL, "url", "u", "", "Fetch content from a URL instead")
	f.StringVar(&genFeed, "feed", "", "Pick the source URL from an RSS/Atom feed")
	f.IntVar(&genFeedItem, "item", 1, "Feed entry to use with --feed (1 = newest)")
	f.StringVar(&genTitle, "title", "", "Title for the saved submission")
	f.StringArrayVar(&genFormats, "format", nil, "Output format, repeatable (twitter_thread, linkedin, instagram, newsletter, email_sequence, summary)")
	f.StringVar(&genTone, "tone", "", "Tone: casual, professional, storytelling, educational")
	f.StringVar(&genLength, "length", "", "Length: short, medium, long")
	f.StringVar(&genVoice, "voice", "", `Brand voice ID, or "none" to skip the default voice`)
	f.IntVar(&genTweetCount, "tweet-count", 0, "Tweets in a thread")
	f.IntVar(&genHashtags, "hashtags", 0, "Hashtags per post")
	f.BoolVar(&genEmojis, "emojis", true, "Allow emojis")
	f.IntVar(&genCopy, "copy", 0, "Copy output N to the clipboard")
	generateCmd.MarkFlagsMutuallyExclusive("text", "file", "url", "feed")
}

// applyGenerateFlags moves config defaults and flags into the store.
func applyGenerateFlags(cmd *cobra.Command, a *app.App) error {
	s := a.Store

	formats := genFormats
	if len(formats) == 0 {
		formats = cfg.Defaults.Formats
	}
	var selected []platform.Format
	for _, raw := range formats {
		f, err := platform.ParseFormat(raw)
		if err != nil {
			return err
		}
		selected = append(selected, f)
	}
	if len(selected) > 0 {
		s.SetFormats(selected)
	}

	tone := genTone
	if tone == "" {
		tone = cfg.Defaults.Tone
	}
	if tone != "" {
		t, err := platform.ParseTone(tone)
		if err != nil {
			return err
		}
		s.SetTone(t)
	}
	length := genLength
	if length == "" {
		length = cfg.Defaults.Length
	}
	if length != "" {
		l, err := platform.ParseLength(length)
		if err != nil {
			return err
		}
		s.SetLength(l)
	}

	var pc platform.Config
	if cmd.Flags().Changed("tweet-count") {
		pc.TweetCount = platform.Int(genTweetCount)
	}
	if cmd.Flags().Changed("hashtags") {
		pc.HashtagCount = platform.Int(genHashtags)
	}
	if cmd.Flags().Changed("emojis") {
		pc.IncludeEmojis = platform.Bool(genEmojis)
	}
	s.SetPlatformConfig(pc)

	switch genVoice {
	case "":
	case "none":
		s.SelectVoice("")
	default:
		s.SelectVoice(genVoice)
	}

	if genTitle != "" {
		s.SetTitle(genTitle)
	}

	switch {
	case genURL != "":
		s.SetUseURL(true)
		s.SetSourceURL(genURL)
	case genFeed != "":
		entries, err := collect.ListEntries(cmd.Context(), genFeed, max(genFeedItem, collect.DefaultLimit))
		if err != nil {
			return err
		}
		if genFeedItem < 1 || genFeedItem > len(entries) {
			return fmt.Errorf("--item %d: feed has %d entries", genFeedItem, len(entries))
		}
		e := entries[genFeedItem-1]
		s.SetUseURL(true)
		s.SetSourceURL(e.URL)
		if genTitle == "" {
			s.SetTitle(e.Title)
		}
	default:
		text, err := readContent()
		if err != nil {
			return err
		}
		s.SetUseURL(false)
		s.SetRawContent(text)
	}
	return nil
}

func readContent() (string, error) {
	switch genFile {
	case "":
		if strings.TrimSpace(genText) == "" {
			return "", errors.New("provide content with --text, --file, --url or --feed")
		}
		return genText, nil
	case "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(genFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", genFile, err)
	}
	return string(b), nil
}
