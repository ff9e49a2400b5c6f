package rendering

import (
	"strings"

	"github.com/jonathan/resume-forge/internal/types"
)

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2) // Pre-allocate space for potential escaping

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeResume returns a copy of resume with every text value passed through EscapeLaTeX.
// Use it before Generate when the template does not escape user content itself.
func EscapeResume(resume *types.Resume) *types.Resume {
	if resume == nil {
		return nil
	}
	out := resume.Clone()

	out.Name = EscapeLaTeX(out.Name)
	out.Title = EscapeLaTeX(out.Title)
	out.About = EscapeLaTeX(out.About)
	out.Email = EscapeLaTeX(out.Email)
	out.Phone = EscapeLaTeX(out.Phone)
	out.Portfolio = EscapeLaTeX(out.Portfolio)
	out.LinkedIn = EscapeLaTeX(out.LinkedIn)
	out.GitHub = EscapeLaTeX(out.GitHub)
	out.Address = EscapeLaTeX(out.Address)

	for _, list := range [][]types.Section{out.Education, out.Experience, out.Projects, out.Courses} {
		for i := range list {
			e := &list[i]
			e.Title = EscapeLaTeX(e.Title)
			e.Organization = EscapeLaTeX(e.Organization)
			e.Location = EscapeLaTeX(e.Location)
			e.StartDate = EscapeLaTeX(e.StartDate)
			e.EndDate = EscapeLaTeX(e.EndDate)
			e.Content = e.Content.Map(EscapeLaTeX)
		}
	}
	for i := range out.Languages {
		out.Languages[i].Name = EscapeLaTeX(out.Languages[i].Name)
		out.Languages[i].Level = EscapeLaTeX(out.Languages[i].Level)
	}
	for i := range out.Skills {
		out.Skills[i] = EscapeLaTeX(out.Skills[i])
	}
	return out
}
