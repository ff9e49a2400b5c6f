package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(ResumeFile, KeyParseResume)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Schema}}")
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	_, err = Get(ResumeFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotEmpty(t, MustGet(ResumeFile, KeyTailorResume))
}

func TestList_ContainsEveryKey(t *testing.T) {
	keys, err := List(ResumeFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCleanJobPosting, KeyParseJobContext, KeyParseResume, KeyTailorResume}, keys)
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"Schema", "Text"}, Fields("{{.Schema}} then {{.Text}} and {{.Schema}} again"))
	assert.Empty(t, Fields("no fields {{ .Spaced }} {{.}}"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!",
		Format("Hello {{.Name}}, welcome to {{.Company}}!", map[string]string{"Name": "Alice", "Company": "Acme Corp"}))
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	out := Format("CV: {{.Text}} JD: {{.JobDescription}}", map[string]string{
		"Text":           "I wrote {{.JobDescription}} templates",
		"JobDescription": "Go engineer",
	})
	assert.Equal(t, "CV: I wrote {{.JobDescription}} templates JD: Go engineer", out)
}

func TestRender_FillsPlaceholders(t *testing.T) {
	prompt, err := Render(ResumeFile, KeyTailorResume, map[string]string{
		"Schema":         `{"type":"object"}`,
		"JobDescription": "Senior Go engineer",
		"Resume":         `{"name":"Jane"}`,
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Senior Go engineer")
	assert.Contains(t, prompt, `{"name":"Jane"}`)
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_MissingField(t *testing.T) {
	_, err := Render(ResumeFile, KeyTailorResume, map[string]string{"Schema": "{}"})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"JobDescription", "Resume"}, missing.Fields)
}

func TestRender_EmptyValueAllowed(t *testing.T) {
	prompt, err := Render(ResumeFile, KeyParseResume, map[string]string{"Schema": "{}", "JobContext": "", "Text": "Jane Doe"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Jane Doe")
}

func TestRender_MissingKey(t *testing.T) {
	_, err := Render(ResumeFile, "nope", nil)
	assert.Error(t, err)
}

