package rendering

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-forge/internal/types"
)

// fragmentSeparator joins emitted fragments.
const fragmentSeparator = "\n"

// Generate renders resume under tmpl and returns the complete document text.
//
// Sections are visited in ascending order (equal orders keep their input position). A section
// whose backing resume data is empty contributes nothing. Structural fragments (document start
// and end, headers, footers, separators) may reference the resume's scalar fields. Neither
// input is modified.
func Generate(tmpl *Template, resume *types.Resume) (string, error) {
	if tmpl == nil {
		return "", ErrMissingTemplate
	}
	if resume == nil {
		return "", ErrMissingResume
	}

	g := &generator{scalars: resume.ScalarFields()}

	g.emit(tmpl.Start.Render(g.scalars))
	for _, section := range sortedSections(tmpl.Sections) {
		g.section(section, resume)
	}
	g.emit(tmpl.End.Render(g.scalars))

	return strings.Join(g.out, fragmentSeparator), nil
}

type generator struct {
	scalars map[string]string
	out     []string
}

// emit appends a fragment. Empty fragments are dropped so they leave no blank line behind.
func (g *generator) emit(fragment string) {
	if fragment == "" {
		return
	}
	g.out = append(g.out, fragment)
}

func (g *generator) section(section Section, resume *types.Resume) {
	switch s := section.(type) {
	case *InformationSection:
		g.information(s)
	case *EntrySection:
		g.entries(s, resume.Entries(string(s.kind)))
	case *SkillsSection:
		values := make([]map[string]string, len(resume.Skills))
		for i, skill := range resume.Skills {
			values[i] = map[string]string{"skill": skill}
		}
		g.loop(s.Loop, values)
	case *LanguagesSection:
		values := make([]map[string]string, len(resume.Languages))
		for i, lang := range resume.Languages {
			values[i] = map[string]string{"name": lang.Name, "level": lang.Level}
		}
		g.loop(s.Loop, values)
	}
}

func (g *generator) information(s *InformationSection) {
	fields := make([]InformationField, len(s.Fields))
	copy(fields, s.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	for _, field := range fields {
		value := g.scalars[field.Field]
		if strings.TrimSpace(value) == "" {
			continue
		}
		g.emit(field.Item.Render(map[string]string{field.Field: value}))
	}
}

func (g *generator) entries(s *EntrySection, entries []types.Section) {
	values := make([]map[string]string, len(entries))
	for i, entry := range entries {
		values[i] = map[string]string{
			"title":        entry.Title,
			"organization": entry.Organization,
			"location":     entry.Location,
			"start_date":   entry.StartDate,
			"end_date":     entry.EndDate,
			"content":      renderContent(entry.Content, s.Bullets, g.scalars),
		}
	}
	g.loop(s.Loop, values)
}

// loop emits header, one rendered body per item with the separator between items, then footer.
// Nothing is emitted for an empty item list.
func (g *generator) loop(loop LoopItem, items []map[string]string) {
	if len(items) == 0 {
		return
	}
	g.out = appendLoop(g.out, loop, items, g.scalars)
}

func appendLoop(out []string, loop LoopItem, items []map[string]string, scalars map[string]string) []string {
	add := func(fragment string) {
		if fragment != "" {
			out = append(out, fragment)
		}
	}

	add(loop.Header.Render(scalars))
	for i, item := range items {
		if i > 0 {
			add(loop.AfterEach.Render(scalars))
		}
		add(loop.Loop.Render(item))
	}
	add(loop.Footer.Render(scalars))
	return out
}

// renderContent resolves an entry's content placeholder. List content renders through the
// bullet block when the section defines one and is newline-joined otherwise.
func renderContent(content types.Content, bullets *LoopItem, scalars map[string]string) string {
	if !content.IsList() {
		return content.Text()
	}

	items := content.Bullets()
	if bullets == nil {
		return strings.Join(items, fragmentSeparator)
	}
	if len(items) == 0 {
		return ""
	}

	values := make([]map[string]string, len(items))
	for i, b := range items {
		values[i] = map[string]string{"bullet": b}
	}
	return strings.Join(appendLoop(nil, *bullets, values, scalars), fragmentSeparator)
}

func sortedSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}
