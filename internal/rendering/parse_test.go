package rendering

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
document:
  start: |-
    \documentclass{article}
    \begin{document}
  end: \end{document}
sections:
  - order: 1
    type: information
    contents:
      - order: 2
        type: email
        content: \href{mailto:__EMAIL__}{__EMAIL__}
      - order: 1
        type: name
        content: \section*{__NAME__}
  - order: 2
    type: experience
    header: \section{Experience}
    loop: \textbf{__TITLE__} at __ORGANIZATION__ \\ __CONTENT__
    footer: ""
    after-each: \vspace{2pt}
    bulletPoints:
      header: \begin{itemize}
      loop: \item __BULLET__
      footer: \end{itemize}
  - order: 3
    type: skills
    header: \section{Skills}
    loop: __SKILL__
    footer: ""
    after-each: ", "
  - order: 4
    type: languages
    header: \section{Languages}
    loop: __NAME__ (__LEVEL__)
    footer: ""
`

func TestParseYAML_BuildsSectionVariants(t *testing.T) {
	tmpl, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "\\documentclass{article}\n\\begin{document}", tmpl.Start.Template())
	assert.Equal(t, `\end{document}`, tmpl.End.Template())
	require.Len(t, tmpl.Sections, 4)

	info, ok := tmpl.Sections[0].(*InformationSection)
	require.True(t, ok)
	assert.Equal(t, 1, info.Order())
	require.Len(t, info.Fields, 2)
	assert.Equal(t, "email", info.Fields[0].Field)
	assert.Equal(t, 2, info.Fields[0].Order)
	assert.Equal(t, []string{"email"}, info.Fields[0].Item.Args())

	exp, ok := tmpl.Sections[1].(*EntrySection)
	require.True(t, ok)
	assert.Equal(t, SectionExperience, exp.Type())
	assert.Equal(t, []string{"title", "organization", "content"}, exp.Loop.Loop.Args())
	assert.Equal(t, `\vspace{2pt}`, exp.Loop.AfterEach.Template())
	require.NotNil(t, exp.Bullets)
	assert.Equal(t, []string{"bullet"}, exp.Bullets.Loop.Args())

	skills, ok := tmpl.Sections[2].(*SkillsSection)
	require.True(t, ok)
	assert.Equal(t, ", ", skills.Loop.AfterEach.Template())

	langs, ok := tmpl.Sections[3].(*LanguagesSection)
	require.True(t, ok)
	assert.True(t, langs.Loop.AfterEach.IsZero())
	assert.Equal(t, []string{"name", "level"}, langs.Loop.Loop.Args())
}

func TestParseJSON_FloatOrders(t *testing.T) {
	src := `{
		"document": {"start": "S", "end": "E"},
		"sections": [
			{"order": 2, "type": "education", "header": "EDU", "loop": "__TITLE__", "footer": "END"},
			{"order": 1, "type": "courses", "header": "C", "loop": "__TITLE__", "footer": "", "afterEach": "SEP"}
		]
	}`

	tmpl, err := ParseJSON([]byte(src))
	require.NoError(t, err)
	require.Len(t, tmpl.Sections, 2)
	assert.Equal(t, 2, tmpl.Sections[0].Order())
	assert.Equal(t, SectionCourses, tmpl.Sections[1].Type())

	courses := tmpl.Sections[1].(*EntrySection)
	assert.Equal(t, "SEP", courses.Loop.AfterEach.Template())
	assert.Nil(t, courses.Bullets)
}

func TestParse_UnsupportedSectionType(t *testing.T) {
	raw := map[string]any{
		"document": map[string]any{"start": "", "end": ""},
		"sections": []any{
			map[string]any{"order": 1, "type": "skills", "loop": "__SKILL__"},
			map[string]any{"order": 2, "type": "hobbies", "loop": "__HOBBY__"},
		},
	}

	_, err := Parse(raw)
	require.Error(t, err)

	var unsupported *UnsupportedSectionTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "hobbies", unsupported.Type)
	assert.Equal(t, 1, unsupported.Index)
	assert.Contains(t, err.Error(), "hobbies")
}

func TestParse_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "nil record", raw: nil},
		{name: "document not a mapping", raw: map[string]any{"document": "x"}},
		{name: "sections not a sequence", raw: map[string]any{"sections": "x"}},
		{name: "section not a mapping", raw: map[string]any{"sections": []any{"x"}}},
		{name: "order not an integer", raw: map[string]any{"sections": []any{
			map[string]any{"order": "first", "type": "skills"},
		}}},
		{name: "fractional order", raw: map[string]any{"sections": []any{
			map[string]any{"order": 1.5, "type": "skills"},
		}}},
		{name: "loop not a string", raw: map[string]any{"sections": []any{
			map[string]any{"order": 1, "type": "skills", "loop": 3},
		}}},
		{name: "information field without type", raw: map[string]any{"sections": []any{
			map[string]any{"order": 1, "type": "information", "contents": []any{
				map[string]any{"order": 1, "content": "__NAME__"},
			}},
		}}},
		{name: "bulletPoints not a mapping", raw: map[string]any{"sections": []any{
			map[string]any{"order": 1, "type": "projects", "bulletPoints": "x"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			var templateErr *TemplateError
			assert.ErrorAs(t, err, &templateErr)
		})
	}
}

func TestParse_MissingSectionsIsEmptyTemplate(t *testing.T) {
	tmpl, err := Parse(map[string]any{"document": map[string]any{"start": "S"}})
	require.NoError(t, err)
	assert.Empty(t, tmpl.Sections)
	assert.Equal(t, "S", tmpl.Start.Template())
	assert.True(t, tmpl.End.IsZero())
}

func TestParseYAML_InvalidYAML(t *testing.T) {
	_, err := ParseYAML([]byte("document: [unclosed"))
	require.Error(t, err)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
}

func TestParseSource_DetectsJSON(t *testing.T) {
	tmpl, err := ParseSource(`  {"document": {"start": "J", "end": "K"}}`)
	require.NoError(t, err)
	assert.Equal(t, "J", tmpl.Start.Template())

	tmpl, err = ParseSource("document:\n  start: Y\n")
	require.NoError(t, err)
	assert.Equal(t, "Y", tmpl.Start.Template())
}

func TestLoadTemplateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	tmpl, err := LoadTemplateFile(path)
	require.NoError(t, err)
	assert.Len(t, tmpl.Sections, 4)
}

func TestLoadTemplateFile_NotFound(t *testing.T) {
	_, err := LoadTemplateFile("/nonexistent/template.yaml")
	require.Error(t, err)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")
}
