package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/history"
	"github.com/TobiSchelling/repurposer/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved submissions",
}

var historyPage int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		m := history.NewManager(svc, cfg.History.PageSize)
		hp, err := m.FetchPage(cmd.Context(), historyPage)
		if err != nil {
			return err
		}
		if hp.Total == 0 {
			fmt.Println("No saved submissions yet. Create one with: repurposer generate")
			return nil
		}

		for _, it := range hp.Items {
			title := it.Title
			if title == "" {
				title = dimStyle.Render("(untitled)")
			}
			fmt.Printf("  %s  %s\n", labelStyle.Render(it.ID), title)
			fmt.Printf("        %d words, %d outputs, %s\n", it.WordCount, it.FormatCount, when(it.CreatedAt))
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", hp.Page, m.PageCount(), hp.Total)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved submission with its outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		d, err := history.NewManager(svc, cfg.History.PageSize).Detail(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		title := d.Input.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Println(headerStyle.Render(title))
		if d.Input.SourceURL != "" {
			fmt.Println(d.Input.SourceURL)
		}
		fmt.Printf("%d words, %s\n\n", d.Input.WordCount, when(d.Input.CreatedAt))

		results := make([]store.Result, 0, len(d.Outputs))
		for _, o := range d.Outputs {
			v, err := decode.Decode(o.Format, o.OutputText)
			results = append(results, store.Result{Output: o, View: v, Err: err})
		}
		printResults(results)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved submission and its outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		if err := history.NewManager(svc, cfg.History.PageSize).Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a saved submission to an HTML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		path, err := svc.ExportHistoryItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyPage, "page", "p", 1, "Page to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyExportCmd)
}
