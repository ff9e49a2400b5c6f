package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/observability"
	"github.com/jonathan/resume-forge/internal/pipeline"
)

var (
	generateTemplateFiles []string
	generateResumeFile    string
	generateOutput        string
	generateJobFile       string
	generateJobURL        string
	generateTailor        bool
	generateLocal         bool
	generateKeepTeX       bool
	generateVerbose       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate PDF resumes from a resume and one or more templates",
	Long: `Run the full generation: optional tailoring to a job description, document generation and
compilation. With one template --out is the PDF path; with several it is a directory that
receives <template>.pdf per template.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVarP(&generateTemplateFiles, "template", "t", nil, "Template file; repeat for several (required)")
	generateCmd.Flags().StringVarP(&generateResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Output PDF path, or directory for several templates (required)")
	generateCmd.Flags().StringVarP(&generateJobFile, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	generateCmd.Flags().StringVar(&generateJobURL, "job-url", "", "URL to fetch job description from (mutually exclusive with --job)")
	generateCmd.Flags().BoolVar(&generateTailor, "tailor", false, "Tailor the resume to the job description (requires GEMINI_API_KEY)")
	generateCmd.Flags().BoolVar(&generateLocal, "local", false, "Compile with the LaTeX engine installed on this machine")
	generateCmd.Flags().BoolVar(&generateKeepTeX, "tex", false, "Also write the generated .tex next to each PDF")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print the resume and generation summaries")

	_ = generateCmd.MarkFlagRequired("template")
	_ = generateCmd.MarkFlagRequired("resume")
	_ = generateCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generateJobFile != "" && generateJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}
	if generateTailor && generateJobFile == "" && generateJobURL == "" {
		return fmt.Errorf("--tailor requires --job or --job-url")
	}

	ctx := context.Background()
	printer := observability.NewPrinter(cmd.ErrOrStderr())

	resume, err := readResume(generateResumeFile)
	if err != nil {
		return err
	}
	if generateVerbose {
		printer.PrintResume(resume)
	}

	templates := make([]pipeline.TemplateRef, len(generateTemplateFiles))
	for i, path := range generateTemplateFiles {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		templates[i] = pipeline.TemplateRef{Name: templateName(path), Source: string(source)}
	}

	compiler, cleanup, err := newCompiler(generateLocal)
	if err != nil {
		return err
	}
	defer cleanup()

	generator := &pipeline.Generator{
		Compiler:     compiler,
		EscapeValues: cfg.EscapeValues,
		Logger:       logger,
		OnProgress: func(event pipeline.ProgressEvent) {
			logger.WithFields(logrus.Fields{"stage": event.Stage, "template": event.Template}).Info(event.Message)
		},
	}

	req := pipeline.Request{Resume: resume}
	if generateJobFile != "" || generateJobURL != "" {
		client, err := newLLM(ctx)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		if client != nil {
			defer client.Close()
		}
		if generateTailor {
			if client == nil {
				return fmt.Errorf("--tailor requires GEMINI_API_KEY")
			}
			generator.Tailor = pipeline.LLMTailor{Client: client}
		}

		text := ""
		if generateJobFile != "" {
			raw, err := os.ReadFile(generateJobFile)
			if err != nil {
				return fmt.Errorf("failed to read job description: %w", err)
			}
			text = string(raw)
		}
		posting, err := newIngester(client).JobDescription(ctx, text, generateJobURL)
		if err != nil {
			return err
		}
		req.JobDescription = posting.Text
	}

	results, batchErr := generator.RunBatch(ctx, req, templates)
	single := len(templates) == 1

	for _, res := range results {
		if res.Err != nil {
			reportCompilationError(cmd.ErrOrStderr(), res.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", res.Template, res.Err)
			continue
		}

		pdfPath := generateOutput
		if !single {
			pdfPath = filepath.Join(generateOutput, res.Template+".pdf")
		}
		if err := writeOutput(cmd.OutOrStdout(), pdfPath, res.Result.PDF); err != nil {
			return err
		}
		if generateKeepTeX {
			texPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".tex"
			if err := writeOutput(cmd.OutOrStdout(), texPath, []byte(res.Result.Generation.Document+"\n")); err != nil {
				return err
			}
		}
		if generateVerbose {
			printer.PrintGeneration(res.Result.Generation)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s → %s\n", res.Template, pdfPath)
	}

	return batchErr
}

func templateName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
