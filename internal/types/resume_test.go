//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UnmarshalString(t *testing.T) {
	var s Section
	err := json.Unmarshal([]byte(`{"title":"Intern","content":"Graduated with honors."}`), &s)
	require.NoError(t, err)

	assert.False(t, s.Content.IsList())
	assert.Equal(t, "Graduated with honors.", s.Content.Text())
	assert.Nil(t, s.Content.Bullets())
}

func TestContent_UnmarshalList(t *testing.T) {
	var s Section
	err := json.Unmarshal([]byte(`{"content":["did X","did Y"]}`), &s)
	require.NoError(t, err)

	assert.True(t, s.Content.IsList())
	assert.Equal(t, []string{"did X", "did Y"}, s.Content.Bullets())
	assert.Empty(t, s.Content.Text())
}

func TestContent_UnmarshalRejectsOtherShapes(t *testing.T) {
	var c Content
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"b"}`), &c))
}

func TestContent_NullIsEmptyParagraph(t *testing.T) {
	var s Section
	require.NoError(t, json.Unmarshal([]byte(`{"content":null}`), &s))
	assert.False(t, s.Content.IsList())
	assert.True(t, s.Content.IsEmpty())
}

func TestContent_MarshalKeepsShape(t *testing.T) {
	list, err := json.Marshal(BulletContent("a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(list))

	text, err := json.Marshal(TextContent("plain"))
	require.NoError(t, err)
	assert.JSONEq(t, `"plain"`, string(text))

	empty, err := json.Marshal(BulletContent())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(empty))
}

func TestContent_BulletsReturnsCopy(t *testing.T) {
	c := BulletContent("one", "two")
	b := c.Bullets()
	b[0] = "changed"
	assert.Equal(t, []string{"one", "two"}, c.Bullets())
}

func TestContent_IsEmpty(t *testing.T) {
	assert.True(t, TextContent("  ").IsEmpty())
	assert.True(t, BulletContent("", " ").IsEmpty())
	assert.False(t, BulletContent("", "x").IsEmpty())
	assert.False(t, TextContent("x").IsEmpty())
}

func TestResume_ScalarFields(t *testing.T) {
	r := Resume{Name: "Jane Doe", Email: "jane@example.com", GitHub: "github.com/jane"}
	fields := r.ScalarFields()

	assert.Equal(t, "Jane Doe", fields["name"])
	assert.Equal(t, "jane@example.com", fields["email"])
	assert.Equal(t, "github.com/jane", fields["github"])
	assert.Equal(t, "", fields["portfolio"])
	assert.Len(t, fields, 9)
}

func TestResume_Entries(t *testing.T) {
	r := Resume{
		Education:  []Section{{Title: "BSc"}},
		Experience: []Section{{Title: "Dev"}},
	}
	assert.Len(t, r.Entries("education"), 1)
	assert.Len(t, r.Entries("experience"), 1)
	assert.Nil(t, r.Entries("projects"))
	assert.Nil(t, r.Entries("skills"))
}

func TestResume_CloneIsDeep(t *testing.T) {
	orig := &Resume{
		Name:      "Jane",
		Education: []Section{{Title: "BSc", Content: BulletContent("a")}},
		Skills:    []string{"Go"},
		Languages: []LanguageLevel{{Name: "English", Level: "Native"}},
	}
	cp := orig.Clone()
	cp.Education[0].Title = "MSc"
	cp.Skills[0] = "Rust"
	cp.Languages[0].Level = "Basic"

	assert.Equal(t, "BSc", orig.Education[0].Title)
	assert.Equal(t, "Go", orig.Skills[0])
	assert.Equal(t, "Native", orig.Languages[0].Level)
	assert.Nil(t, (*Resume)(nil).Clone())
}

func TestResume_NormalizeFillsRequiredSequences(t *testing.T) {
	var r Resume
	r.Normalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{}, raw["education"])
	assert.Equal(t, []any{}, raw["experience"])
	assert.NotContains(t, raw, "projects")
}

func TestProfile_NewerThan(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	stored := &Profile{UpdatedAt: base}

	assert.True(t, (&Profile{UpdatedAt: base.Add(time.Second)}).NewerThan(stored))
	assert.False(t, (&Profile{UpdatedAt: base}).NewerThan(stored))
	assert.False(t, (&Profile{UpdatedAt: base.Add(-time.Minute)}).NewerThan(stored))
	assert.True(t, (&Profile{UpdatedAt: base}).NewerThan(nil))
}
