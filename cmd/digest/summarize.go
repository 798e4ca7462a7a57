package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweetpotato0/digest/extract"
	"github.com/sweetpotato0/digest/prompt"
	"github.com/sweetpotato0/digest/summarize"
)

var (
	styleFlag        string
	instructionsFlag string
	wordsFlag        int
	streamFlag       bool
	outputFlag       string
	statsFlag        bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a file or stdin",
	Long: `Summarize reads text from the given file (or stdin when no file is
given), extracts plain text from HTML, Markdown, and PDF inputs, and prints
the summary. With --stream the summary is printed incrementally as the
model produces it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&styleFlag, "style", "s", "general", "summary style (general, bullet_points, executive, academic, timeline, questions)")
	summarizeCmd.Flags().StringVar(&instructionsFlag, "instructions", "", "extra guidance appended to the prompt")
	summarizeCmd.Flags().IntVarP(&wordsFlag, "words", "w", 0, "approximate word limit for the summary")
	summarizeCmd.Flags().BoolVar(&streamFlag, "stream", false, "print the summary incrementally")
	summarizeCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write a markdown report to this file")
	summarizeCmd.Flags().BoolVar(&statsFlag, "stats", false, "print compression statistics")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	style := prompt.Style(styleFlag)
	if !style.Valid() {
		return fmt.Errorf("unknown style %q; valid styles: %v", styleFlag, prompt.Styles())
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	req := &summarize.Request{
		Text:         text,
		Model:        modelFlag,
		Style:        style,
		Instructions: instructionsFlag,
		WordLimit:    wordsFlag,
		Stream:       streamFlag,
	}
	if streamFlag {
		printed := 0
		req.Observer = func(accumulated string) error {
			fmt.Print(accumulated[printed:])
			printed = len(accumulated)
			return nil
		}
	}

	sum, err := svc.Summarize(cmd.Context(), req)
	if err != nil {
		return err
	}

	if streamFlag {
		fmt.Println()
	} else {
		fmt.Println(sum.Text)
	}

	if statsFlag {
		fmt.Fprintf(os.Stderr, "\n%d words -> %d words (%.1f%% compression) in %s\n",
			sum.Stats.OriginalWords, sum.Stats.SummaryWords, sum.Stats.Compression, sum.Stats.Duration.Round(time.Millisecond))
	}

	if outputFlag != "" {
		report := summarize.ExportMarkdown(text, sum, time.Now())
		if err := os.WriteFile(outputFlag, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", outputFlag)
	}
	return nil
}

// readInput loads the source text from the named file or stdin. File inputs
// go through format detection and extraction; stdin is taken as plain text.
func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	text, err := extract.ExtractFile(args[0], data)
	if err != nil {
		if text == "" {
			return "", err
		}
		// Extraction fell back to cleaned raw text; warn and continue.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return text, nil
}
