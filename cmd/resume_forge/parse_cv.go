package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/ingestion"
	"github.com/jonathan/resume-forge/internal/observability"
	"github.com/jonathan/resume-forge/internal/rewriting"
)

var (
	parseCVInputFile  string
	parseCVJobFile    string
	parseCVOutputFile string
	parseCVVerbose    bool
)

var parseCVCmd = &cobra.Command{
	Use:   "parse-cv",
	Short: "Extract a structured resume from a CV document",
	Long:  fmt.Sprintf("Read a CV (%s) and extract a resume JSON file with the language model.", strings.Join(ingestion.SupportedExtensions(), ", ")),
	RunE:  runParseCV,
}

func init() {
	parseCVCmd.Flags().StringVarP(&parseCVInputFile, "in", "i", "", "Path to CV document (required)")
	parseCVCmd.Flags().StringVarP(&parseCVJobFile, "job", "j", "", "Optional job description text file to guide extraction")
	parseCVCmd.Flags().StringVarP(&parseCVOutputFile, "out", "o", "", "Path to output resume JSON (default stdout)")
	parseCVCmd.Flags().BoolVarP(&parseCVVerbose, "verbose", "v", false, "Print a summary of the extracted resume")

	_ = parseCVCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseCVCmd)
}

func runParseCV(cmd *cobra.Command, _ []string) error {
	text, err := ingestion.ReadFile(parseCVInputFile)
	if err != nil {
		return err
	}

	jobDescription := ""
	if parseCVJobFile != "" {
		raw, err := os.ReadFile(parseCVJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		jobDescription = ingestion.CleanText(string(raw))
	}

	ctx := context.Background()
	client, err := requireLLM(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	resume, err := rewriting.ParseResume(ctx, client, text, jobDescription)
	if err != nil {
		return err
	}

	if parseCVVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResume(resume)
	}
	return writeJSON(cmd.OutOrStdout(), parseCVOutputFile, resume)
}
