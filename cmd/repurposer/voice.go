package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/repurposer/internal/app"
	"github.com/TobiSchelling/repurposer/internal/brandvoice"
	"github.com/TobiSchelling/repurposer/internal/content"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Manage brand voice profiles",
}

// voiceManager opens the backend and returns an app whose voice list is
// already loaded.
func voiceManager(cmd *cobra.Command) (*app.App, func(), error) {
	svc, done, err := openBackend()
	if err != nil {
		return nil, nil, err
	}
	a := app.New(svc, app.Options{}, logger)
	if _, err := a.Voices.Load(cmd.Context()); err != nil {
		done()
		return nil, nil, err
	}
	return a, done, nil
}

var voiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List brand voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := voiceManager(cmd)
		if err != nil {
			return err
		}
		defer done()

		voices := a.Store.Snapshot().Voices
		if len(voices) == 0 {
			fmt.Println("No brand voices yet. Create one with: repurposer voice analyze")
			return nil
		}
		for _, v := range voices {
			mark := " "
			if v.IsDefault {
				mark = "*"
			}
			fmt.Printf("  %s %s  %s\n", mark, labelStyle.Render(v.ID), v.Name)
			st := v.StyleAttributes
			fmt.Printf("      %s\n", dimStyle.Render(fmt.Sprintf("%s; %s vocabulary; %s", st.Tone, st.VocabularyLevel, st.SentenceStyle)))
			if len(st.SignaturePhrases) > 0 {
				fmt.Printf("      says: %s\n", strings.Join(st.SignaturePhrases, ", "))
			}
			if len(st.AvoidPhrases) > 0 {
				fmt.Printf("      avoids: %s\n", strings.Join(st.AvoidPhrases, ", "))
			}
		}
		return nil
	},
}

var (
	voiceName        string
	voiceDescription string
	voiceSamples     []string
)

var voiceAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Create a brand voice from writing samples",
	Example: `  repurposer voice analyze --name "House style" \
    --sample-file post1.md --sample-file post2.md --sample-file post3.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := content.AnalyzeVoiceRequest{Name: voiceName, Description: voiceDescription}
		for _, path := range voiceSamples {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading sample: %w", err)
			}
			req.Samples = append(req.Samples, string(b))
		}
		if err := brandvoice.ValidateRequest(&req); err != nil {
			return err
		}

		a, done, err := voiceManager(cmd)
		if err != nil {
			return err
		}
		defer done()

		fmt.Printf("Analyzing %d samples...\n", len(req.Samples))
		p, err := a.Voices.Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Created brand voice %s (%s)\n", p.Name, p.ID)
		if p.IsDefault {
			fmt.Println("It is now your default voice.")
		}
		return nil
	},
}

var voiceDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a brand voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := voiceManager(cmd)
		if err != nil {
			return err
		}
		defer done()

		if err := a.Voices.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted brand voice %s\n", args[0])
		return nil
	},
}

var voiceDefaultCmd = &cobra.Command{
	Use:   "default [id]",
	Short: "Make a brand voice the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := voiceManager(cmd)
		if err != nil {
			return err
		}
		defer done()

		if err := a.Voices.SetDefault(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Default brand voice: %s\n", args[0])
		return nil
	},
}

func init() {
	voiceAnalyzeCmd.Flags().StringVar(&voiceName, "name", "", "Profile name")
	voiceAnalyzeCmd.Flags().StringVar(&voiceDescription, "description", "", "Optional description")
	voiceAnalyzeCmd.Flags().StringArrayVar(&voiceSamples, "sample-file", nil,
		fmt.Sprintf("Writing sample file, repeat %d-%d times", brandvoice.MinSamples, brandvoice.MaxSamples))
	_ = voiceAnalyzeCmd.MarkFlagRequired("name")

	voiceCmd.AddCommand(voiceListCmd)
	voiceCmd.AddCommand(voiceAnalyzeCmd)
	voiceCmd.AddCommand(voiceDeleteCmd)
	voiceCmd.AddCommand(voiceDefaultCmd)
}
