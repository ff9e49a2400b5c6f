package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/compile"
	"github.com/jonathan/resume-forge/internal/observability"
)

var (
	compileInputFile  string
	compileOutputFile string
	compileLocal      bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a LaTeX document to PDF",
	Long:  "Compile a .tex file with the remote build service, or with a local LaTeX installation when --local is set.",
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileInputFile, "in", "i", "", "Path to .tex file (required)")
	compileCmd.Flags().StringVarP(&compileOutputFile, "out", "o", "", "Path to output PDF (required)")
	compileCmd.Flags().BoolVar(&compileLocal, "local", false, "Use the LaTeX engine installed on this machine")

	_ = compileCmd.MarkFlagRequired("in")
	_ = compileCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	document, err := os.ReadFile(compileInputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("LaTeX file not found: %s", compileInputFile)
		}
		return fmt.Errorf("failed to read LaTeX file: %w", err)
	}

	compiler, cleanup, err := newCompiler(compileLocal)
	if err != nil {
		return err
	}
	defer cleanup()

	pdf, err := compiler.Compile(context.Background(), string(document))
	if err != nil {
		reportCompilationError(cmd.ErrOrStderr(), err)
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), compileOutputFile, pdf); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "PDF written to %s (%d bytes)\n", compileOutputFile, len(pdf))
	return nil
}

// reportCompilationError prints the compiler log of a failed compilation.
func reportCompilationError(w io.Writer, err error) {
	var compErr *compile.CompilationError
	if errors.As(err, &compErr) && compErr.LogOutput != "" {
		observability.NewPrinter(w).PrintCompilationError(compErr)
	}
}
