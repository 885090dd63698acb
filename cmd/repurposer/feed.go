package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/repurposer/internal/collect"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed [url]",
	Short: "List recent entries of an RSS/Atom feed (configured feeds when no URL is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if len(urls) == 0 {
			for _, f := range cfg.Feeds {
				urls = append(urls, f.URL)
			}
		}
		if len(urls) == 0 {
			return fmt.Errorf("no feed URL given and none configured")
		}

		for i, u := range urls {
			if i > 0 {
				fmt.Println()
			}
			entries, err := collect.ListEntries(cmd.Context(), u, feedLimit)
			if err != nil {
				return err
			}
			fmt.Println(headerStyle.Render(u))
			for n, e := range entries {
				date := ""
				if e.Published != nil {
					date = dimStyle.Render(" " + e.Published.Format("2006-01-02"))
				}
				fmt.Printf("  %2d. %s%s\n      %s\n", n+1, e.Title, date, e.URL)
			}
			fmt.Println(dimStyle.Render(fmt.Sprintf("\nUse: repurposer generate --feed %s --item N", u)))
		}
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", collect.DefaultLimit, "Entries to list")
}
