package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/observability"
	"github.com/jonathan/resume-forge/internal/rewriting"
)

var (
	tailorResumeFile string
	tailorJobFile    string
	tailorJobURL     string
	tailorOutputFile string
	tailorVerbose    bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a resume to a job description",
	Long: `Rewrite a resume JSON file against a job description read from a file or fetched from a
URL. Contact details are kept verbatim and no education or experience entry is invented.`,
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVarP(&tailorResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	tailorCmd.Flags().StringVarP(&tailorJobFile, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL to fetch job description from (mutually exclusive with --job)")
	tailorCmd.Flags().StringVarP(&tailorOutputFile, "out", "o", "", "Path to output resume JSON (default stdout)")
	tailorCmd.Flags().BoolVarP(&tailorVerbose, "verbose", "v", false, "Print a summary of the tailored resume")

	_ = tailorCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	if tailorJobFile == "" && tailorJobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided")
	}
	if tailorJobFile != "" && tailorJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	resume, err := readResume(tailorResumeFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := requireLLM(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	text := ""
	if tailorJobFile != "" {
		raw, err := os.ReadFile(tailorJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		text = string(raw)
	}
	posting, err := newIngester(client).JobDescription(ctx, text, tailorJobURL)
	if err != nil {
		return err
	}

	tailored, err := rewriting.TailorResume(ctx, client, resume, posting.Text)
	if err != nil {
		return err
	}

	if tailorVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResume(tailored)
	}
	return writeJSON(cmd.OutOrStdout(), tailorOutputFile, tailored)
}
