// Package observability provides logger construction and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-forge/internal/compile"
	"github.com/jonathan/resume-forge/internal/rendering"
	"github.com/jonathan/resume-forge/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxLogLines is the number of trailing compiler log lines shown
	maxLogLines = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResume outputs a summary of a resume: identity fields and per-section counts.
func (p *Printer) PrintResume(resume *types.Resume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:   %s\n", resume.Name))
	if resume.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:  %s\n", resume.Title))
	}
	if resume.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:  %s\n", resume.Email))
	}
	sb.WriteString("\n")

	for _, kind := range []string{"experience", "education", "projects", "courses"} {
		entries := resume.Entries(kind)
		if len(entries) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", strings.ToUpper(kind[:1])+kind[1:], len(entries)))
		count := min(len(entries), maxItemsToShow)
		for i := 0; i < count; i++ {
			entry := entries[i]
			sb.WriteString(fmt.Sprintf("  • %s", entry.Title))
			if entry.Organization != "" {
				sb.WriteString(fmt.Sprintf(" @ %s", entry.Organization))
			}
			sb.WriteString("\n")
		}
		if len(entries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-maxItemsToShow))
		}
	}

	if len(resume.Skills) > 0 {
		skills := strings.Join(resume.Skills, ", ")
		if len(skills) > 40 {
			skills = skills[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Skills: %s\n", skills))
	}
	if len(resume.Languages) > 0 {
		sb.WriteString(fmt.Sprintf("Languages: %d\n", len(resume.Languages)))
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplate outputs the sections of a parsed template in render order with the placeholders
// each one binds.
func (p *Printer) PrintTemplate(name string, tmpl *rendering.Template) {
	if tmpl == nil {
		return
	}

	sections := make([]rendering.Section, len(tmpl.Sections))
	copy(sections, tmpl.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order() < sections[j].Order() })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sections: %d\n\n", len(sections)))
	for _, section := range sections {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", section.Order(), section.Type()))
		switch s := section.(type) {
		case *rendering.InformationSection:
			fields := make([]string, len(s.Fields))
			for i, f := range s.Fields {
				fields[i] = f.Field
			}
			sb.WriteString(fmt.Sprintf("    Fields: %s\n", strings.Join(fields, ", ")))
		case *rendering.EntrySection:
			sb.WriteString(fmt.Sprintf("    Binds: %s\n", strings.Join(s.Loop.Loop.Args(), ", ")))
			if s.Bullets != nil {
				sb.WriteString("    Bullets: yes\n")
			}
		case *rendering.SkillsSection:
			sb.WriteString(fmt.Sprintf("    Binds: %s\n", strings.Join(s.Loop.Loop.Args(), ", ")))
		case *rendering.LanguagesSection:
			sb.WriteString(fmt.Sprintf("    Binds: %s\n", strings.Join(s.Loop.Loop.Args(), ", ")))
		}
	}

	title := "TEMPLATE"
	if name != "" {
		title = fmt.Sprintf("TEMPLATE %s", name)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGeneration outputs the outcome of a generation.
func (p *Printer) PrintGeneration(gen *types.Generation) {
	if gen == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", gen.ID))
	sb.WriteString(fmt.Sprintf("Template:  %s\n", gen.TemplateName))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", gen.Status))
	if gen.Document != "" {
		sb.WriteString(fmt.Sprintf("Document:  %d lines\n", strings.Count(gen.Document, "\n")+1))
	}
	if gen.PDFKey != "" {
		sb.WriteString(fmt.Sprintf("PDF:       %s\n", gen.PDFKey))
	}
	if gen.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:     %s\n", gen.Error))
	}

	p.printBox("GENERATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompilationError outputs the compiler message and the tail of its log.
func (p *Printer) PrintCompilationError(err *compile.CompilationError) {
	if err == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(err.Message)
	if err.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(" (HTTP %d)", err.StatusCode))
	}
	sb.WriteString("\n")

	if log := strings.TrimSpace(err.LogOutput); log != "" {
		lines := strings.Split(log, "\n")
		if len(lines) > maxLogLines {
			sb.WriteString(fmt.Sprintf("... %d earlier log lines\n", len(lines)-maxLogLines))
			lines = lines[len(lines)-maxLogLines:]
		}
		sb.WriteString("\n")
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("COMPILATION FAILED", strings.TrimSuffix(sb.String(), "\n"))
}
