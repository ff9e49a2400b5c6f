package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"name": "Jane"}`, `{"name": "Jane"}`},
		{"json fence", "```json\n{\"name\": \"Jane\"}\n```", `{"name": "Jane"}`},
		{"bare fence", "```\n{\"name\": \"Jane\"}\n```", `{"name": "Jane"}`},
		{"fence with surrounding whitespace", "\n\n```json\n{\"skills\": [\"Go\"]}\n```\n", `{"skills": ["Go"]}`},
		{"preamble", "Here is the tailored resume:\n{\"name\": \"Jane\"}", `{"name": "Jane"}`},
		{"trailing prose", "{\"name\": \"Jane\"}\n\nLet me know if you need changes.", `{"name": "Jane"}`},
		{"array", "Skills found: [\"Go\", \"SQL\"] in total", `["Go", "SQL"]`},
		{
			"nested entries",
			`Result: {"experience": [{"title": "Engineer", "content": ["Built {things}"]}]} done`,
			`{"experience": [{"title": "Engineer", "content": ["Built {things}"]}]}`,
		},
		{"escaped quotes", `Out: {"about": "Said \"hi}\""} end`, `{"about": "Said \"hi}\""}`},
		{"no json", "  no structured output  ", "no structured output"},
		{"unterminated", `{"name": "Jane"`, `{"name": "Jane"`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestStripFence_KeepsUntaggedFirstLine(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripFence("```{\"a\": 1}```"))
}
