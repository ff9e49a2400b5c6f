//go:build integration
// +build integration

package rewriting

import (
	"context"
	"os"
	"testing"

	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResume_RealAPI(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), apiKey)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	cv := `Jane Doe - Backend Engineer - jane@example.com
Experience: Acme Corp, Software Engineer, 2019-2024. Built payment APIs in Go. Cut latency by 40%.
Education: BSc Computer Science, TU Berlin, 2015-2019.
Skills: Go, PostgreSQL, Kubernetes. Languages: English (fluent), German (native).`

	resume, err := ParseResume(context.Background(), client, cv, "")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resume.Name)
	assert.NotEmpty(t, resume.Experience)

	tailored, err := TailorResume(context.Background(), client, resume, "Senior Go engineer for payments infrastructure")
	require.NoError(t, err)
	assert.Equal(t, resume.Name, tailored.Name)
}
