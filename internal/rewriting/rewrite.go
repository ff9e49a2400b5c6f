// Package rewriting turns CV text into a structured resume and tailors resumes to job descriptions
// using a language model. Every model response is validated against the resume schema.
package rewriting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/prompts"
	"github.com/jonathan/resume-forge/internal/schemas"
	"github.com/jonathan/resume-forge/internal/types"
)

// ParseResume extracts a structured resume from raw CV text. jobDescription is optional; when
// given, entries are ordered by relevance to it.
func ParseResume(ctx context.Context, client llm.Client, rawText, jobDescription string) (*types.Resume, error) {
	if client == nil {
		return nil, &APICallError{Message: "LLM client is required"}
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, &ParseError{Message: "CV text is empty"}
	}

	jobContext := ""
	if strings.TrimSpace(jobDescription) != "" {
		var err error
		jobContext, err = prompts.Render(prompts.ResumeFile, prompts.KeyParseJobContext, map[string]string{
			"JobDescription": jobDescription,
		})
		if err != nil {
			return nil, err
		}
	}

	prompt, err := prompts.Render(prompts.ResumeFile, prompts.KeyParseResume, map[string]string{
		"Schema":     schemas.ResumeSchema(),
		"JobContext": jobContext,
		"Text":       rawText,
	})
	if err != nil {
		return nil, err
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to parse CV", Cause: err}
	}

	return decodeResume(responseText)
}

// TailorResume rewrites resume against jobDescription. The input is not modified. Contact fields
// are always carried over from the input, and a response that adds entries the input does not
// contain is rejected with *InventedEntryError.
func TailorResume(ctx context.Context, client llm.Client, resume *types.Resume, jobDescription string) (*types.Resume, error) {
	if client == nil {
		return nil, &APICallError{Message: "LLM client is required"}
	}
	if resume == nil {
		return nil, &ParseError{Message: "resume is required"}
	}
	if strings.TrimSpace(jobDescription) == "" {
		return resume.Clone(), nil
	}

	input := resume.Clone()
	input.Normalize()
	resumeJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, &ParseError{Message: "failed to encode resume", Cause: err}
	}

	prompt, err := prompts.Render(prompts.ResumeFile, prompts.KeyTailorResume, map[string]string{
		"Schema":         schemas.ResumeSchema(),
		"JobDescription": jobDescription,
		"Resume":         string(resumeJSON),
	})
	if err != nil {
		return nil, err
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to tailor resume", Cause: err}
	}

	tailored, err := decodeResume(responseText)
	if err != nil {
		return nil, err
	}

	if err := checkInventedEntries(resume, tailored); err != nil {
		return nil, err
	}
	restoreContact(resume, tailored)
	return tailored, nil
}

// decodeResume validates a model response against the resume schema and decodes it.
func decodeResume(responseText string) (*types.Resume, error) {
	text := llm.CleanJSONBlock(responseText)
	if text == "" {
		return nil, &ParseError{Message: "empty model response"}
	}

	if err := schemas.ValidateResumeJSON([]byte(text)); err != nil {
		return nil, &ParseError{Message: "model response does not match the resume schema", Response: text, Cause: err}
	}

	var resume types.Resume
	if err := json.Unmarshal([]byte(text), &resume); err != nil {
		return nil, &ParseError{Message: "failed to decode resume JSON", Response: text, Cause: err}
	}
	resume.Normalize()
	return &resume, nil
}
