package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/rendering"
)

var (
	renderTemplateFile string
	renderResumeFile   string
	renderOutputFile   string
	renderEscape       bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Generate a LaTeX document from a template and a resume",
	Long:  "Fill a template (YAML or JSON) with a resume JSON file and write the document text. Nothing is compiled.",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderTemplateFile, "template", "t", "", "Path to template file (required)")
	renderCmd.Flags().StringVarP(&renderResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output .tex file (default stdout)")
	renderCmd.Flags().BoolVar(&renderEscape, "escape", false, "LaTeX-escape resume values (overrides escape_values)")

	_ = renderCmd.MarkFlagRequired("template")
	_ = renderCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	tmpl, err := rendering.LoadTemplateFile(renderTemplateFile)
	if err != nil {
		return err
	}
	resume, err := readResume(renderResumeFile)
	if err != nil {
		return err
	}

	if renderEscape || cfg.EscapeValues {
		resume = rendering.EscapeResume(resume)
	}

	document, err := rendering.Generate(tmpl, resume)
	if err != nil {
		return fmt.Errorf("failed to generate document: %w", err)
	}

	if err := writeOutput(cmd.OutOrStdout(), renderOutputFile, []byte(document+"\n")); err != nil {
		return err
	}
	if renderOutputFile != "" && renderOutputFile != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Document written to %s\n", renderOutputFile)
	}
	return nil
}
