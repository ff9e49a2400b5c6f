package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractArgItem_DistinctLowercasedNames(t *testing.T) {
	item := ExtractArgItem(`\textbf{__TITLE__} at __ORGANIZATION__ (__START_DATE__--__END_DATE__) __TITLE__`)

	assert.Equal(t, []string{"title", "organization", "start_date", "end_date"}, item.Args())
	assert.True(t, item.HasArgs())
	assert.True(t, item.Has("TITLE"))
	assert.False(t, item.Has("content"))
}

func TestExtractArgItem_IgnoresNonMatchingTokens(t *testing.T) {
	item := ExtractArgItem(`__lower__ _SINGLE_ __ __123__ plain`)

	assert.False(t, item.HasArgs())
	assert.Empty(t, item.Args())
}

func TestArgItem_RenderReplacesEveryOccurrence(t *testing.T) {
	item := ExtractArgItem("__NAME__ / __NAME__")
	assert.Equal(t, "Jane / Jane", item.Render(map[string]string{"name": "Jane"}))
}

func TestArgItem_RenderBlanksUnboundPlaceholders(t *testing.T) {
	item := ExtractArgItem(`\section{__TITLE__}__SUBTITLE__!`)

	got := item.Render(map[string]string{"title": "Work"})

	assert.Equal(t, `\section{Work}!`, got)
	assert.NotContains(t, got, "__")
}

func TestArgItem_RenderDoesNotRescanValues(t *testing.T) {
	item := ExtractArgItem("__A__ __B__")
	got := item.Render(map[string]string{"a": "__B__", "b": "x"})
	assert.Equal(t, "__B__ x", got)
}

func TestArgItem_RenderIsPure(t *testing.T) {
	item := ExtractArgItem("Hello __NAME__")

	first := item.Render(map[string]string{"name": "Jane"})
	second := item.Render(nil)

	assert.Equal(t, "Hello Jane", first)
	assert.Equal(t, "Hello ", second)
	assert.Equal(t, "Hello __NAME__", item.Template())
}

func TestArgItem_RenderWithoutPlaceholdersReturnsLiteral(t *testing.T) {
	item := ExtractArgItem(`\begin{itemize}`)
	assert.Equal(t, `\begin{itemize}`, item.Render(map[string]string{"name": "ignored"}))
}

func TestArgItem_Unknown(t *testing.T) {
	item := ExtractArgItem("__SKILL__")

	assert.Equal(t, []string{"level", "name"}, item.Unknown(map[string]string{"skill": "Go", "name": "x", "level": "y"}))
	assert.Empty(t, item.Unknown(map[string]string{"skill": "Go"}))
}

func TestArgItem_ArgsReturnsCopy(t *testing.T) {
	item := ExtractArgItem("__A__")
	args := item.Args()
	args[0] = "changed"
	assert.Equal(t, []string{"a"}, item.Args())
}
