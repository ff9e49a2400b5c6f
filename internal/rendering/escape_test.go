package rendering

import (
	"testing"

	"github.com/jonathan/resume-forge/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX_EmptyString(t *testing.T) {
	result := EscapeLaTeX("")
	assert.Equal(t, "", result)
}

func TestEscapeLaTeX_NoSpecialCharacters(t *testing.T) {
	text := "This is normal text with no special characters"
	result := EscapeLaTeX(text)
	assert.Equal(t, text, result)
}

func TestEscapeLaTeX_Backslash(t *testing.T) {
	result := EscapeLaTeX("test\\backslash")
	assert.Equal(t, "test\\textbackslash{}backslash", result)
}

func TestEscapeLaTeX_CurlyBraces(t *testing.T) {
	result := EscapeLaTeX("text{with}braces")
	assert.Equal(t, "text\\{with\\}braces", result)
}

func TestEscapeLaTeX_DollarSign(t *testing.T) {
	result := EscapeLaTeX("cost $100")
	assert.Equal(t, "cost \\$100", result)
}

func TestEscapeLaTeX_Ampersand(t *testing.T) {
	result := EscapeLaTeX("A & B")
	assert.Equal(t, "A \\& B", result)
}

func TestEscapeLaTeX_Percent(t *testing.T) {
	result := EscapeLaTeX("100% complete")
	assert.Equal(t, "100\\% complete", result)
}

func TestEscapeLaTeX_Hash(t *testing.T) {
	result := EscapeLaTeX("issue #123")
	assert.Equal(t, "issue \\#123", result)
}

func TestEscapeLaTeX_Caret(t *testing.T) {
	result := EscapeLaTeX("x^2")
	assert.Equal(t, "x\\textasciicircum{}2", result)
}

func TestEscapeLaTeX_Underscore(t *testing.T) {
	result := EscapeLaTeX("variable_name")
	assert.Equal(t, "variable\\_name", result)
}

func TestEscapeLaTeX_Tilde(t *testing.T) {
	result := EscapeLaTeX("~approx")
	assert.Equal(t, "\\textasciitilde{}approx", result)
}

func TestEscapeLaTeX_MultipleSpecialCharacters(t *testing.T) {
	result := EscapeLaTeX("test${}~&%#^_\\")
	expected := "test\\$\\{\\}\\textasciitilde{}\\&\\%\\#\\textasciicircum{}\\_\\textbackslash{}"
	assert.Equal(t, expected, result)
}

func TestEscapeLaTeX_UnicodeCharacters(t *testing.T) {
	text := "résumé with unicode: α β γ"
	result := EscapeLaTeX(text)
	// Unicode should pass through unchanged
	assert.Equal(t, text, result)
}

func TestEscapeLaTeX_MixedContent(t *testing.T) {
	text := "Built system handling $1M+ requests/day with 99.9% uptime"
	result := EscapeLaTeX(text)
	assert.Contains(t, result, "\\$1M")
	assert.Contains(t, result, "99.9\\%")
	assert.Contains(t, result, "requests/day")
}

func TestEscapeResume_EscapesEveryTextValue(t *testing.T) {
	resume := &types.Resume{
		Name:       "R&D Jane",
		Education:  []types.Section{{Title: "BSc 100%", Content: types.TextContent("GPA #1")}},
		Experience: []types.Section{{Organization: "A_B", Content: types.BulletContent("cut $5k", "50% faster")}},
		Languages:  []types.LanguageLevel{{Name: "C#", Level: "~fluent"}},
		Skills:     []string{"C++ & Go"},
	}

	escaped := EscapeResume(resume)

	assert.Equal(t, `R\&D Jane`, escaped.Name)
	assert.Equal(t, `BSc 100\%`, escaped.Education[0].Title)
	assert.Equal(t, `GPA \#1`, escaped.Education[0].Content.Text())
	assert.Equal(t, `A\_B`, escaped.Experience[0].Organization)
	assert.Equal(t, []string{`cut \$5k`, `50\% faster`}, escaped.Experience[0].Content.Bullets())
	assert.Equal(t, `C\#`, escaped.Languages[0].Name)
	assert.Equal(t, `\textasciitilde{}fluent`, escaped.Languages[0].Level)
	assert.Equal(t, `C++ \& Go`, escaped.Skills[0])

	// the input is untouched
	assert.Equal(t, "R&D Jane", resume.Name)
	assert.Equal(t, []string{"cut $5k", "50% faster"}, resume.Experience[0].Content.Bullets())
}

func TestEscapeResume_Nil(t *testing.T) {
	assert.Nil(t, EscapeResume(nil))
}
