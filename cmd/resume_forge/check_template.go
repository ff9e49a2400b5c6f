package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-forge/internal/observability"
	"github.com/jonathan/resume-forge/internal/rendering"
)

var checkTemplateQuiet bool

var checkTemplateCmd = &cobra.Command{
	Use:   "check-template <file>...",
	Short: "Validate template files",
	Long:  "Parse each template file and print its sections and placeholders. Exits non-zero when any file is invalid.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckTemplate,
}

func init() {
	checkTemplateCmd.Flags().BoolVarP(&checkTemplateQuiet, "quiet", "q", false, "Only report invalid templates")
	rootCmd.AddCommand(checkTemplateCmd)
}

func runCheckTemplate(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	var failed []string
	for _, path := range args {
		tmpl, err := rendering.LoadTemplateFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
			failed = append(failed, path)
			continue
		}
		if checkTemplateQuiet {
			continue
		}
		printer.PrintTemplate(templateName(path), tmpl)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d templates invalid", len(failed), len(args))
	}
	return nil
}
