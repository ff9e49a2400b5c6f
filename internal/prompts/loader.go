// Package prompts holds the LLM prompts used to parse and tailor resumes and to clean job
// postings. Prompt files are JSON objects of key to text, embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sort"
	"sync"
)

// ResumeFile is the prompt file for resume work.
const ResumeFile = "resume.json"

// Prompt keys in ResumeFile.
const (
	KeyParseResume     = "parse-resume"
	KeyParseJobContext = "parse-job-context"
	KeyTailorResume    = "tailor-resume"
	KeyCleanJobPosting = "clean-job-posting"
)

//go:embed *.json
var promptFiles embed.FS

// fieldPattern matches {{.Name}} fields.
var fieldPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

var (
	loadOnce sync.Once
	loaded   map[string]map[string]string
	loadErr  error
)

// MissingFieldError is returned by Render when a prompt field has no value.
type MissingFieldError struct {
	File   string
	Key    string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("prompt %s/%s: no value for %v", e.File, e.Key, e.Fields)
}

// load parses every embedded prompt file once.
func load() (map[string]map[string]string, error) {
	loadOnce.Do(func() {
		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to list prompt files: %w", err)
			return
		}
		loaded = make(map[string]map[string]string, len(entries))
		for _, entry := range entries {
			data, err := promptFiles.ReadFile(entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
				return
			}
			var file map[string]string
			if err := json.Unmarshal(data, &file); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
				return
			}
			loaded[entry.Name()] = file
		}
	})
	return loaded, loadErr
}

func file(filename string) (map[string]string, error) {
	files, err := load()
	if err != nil {
		return nil, err
	}
	prompts, ok := files[path.Base(filename)]
	if !ok {
		return nil, fmt.Errorf("failed to read prompt file %s: not embedded", filename)
	}
	return prompts, nil
}

// Get returns the raw prompt stored under key in filename.
func Get(filename, key string) (string, error) {
	prompts, err := file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts that must exist; it panics otherwise.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// List returns the sorted prompt keys in filename.
func List(filename string) ([]string, error) {
	prompts, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Fields returns the distinct field names a prompt references, in order of appearance.
func Fields(prompt string) []string {
	var fields []string
	seen := make(map[string]bool)
	for _, m := range fieldPattern.FindAllStringSubmatch(prompt, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	return fields
}

// Render fills every field of the prompt from data. A field without a value is an error;
// an empty value is allowed.
func Render(filename, key string, data map[string]string) (string, error) {
	prompt, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, field := range Fields(prompt) {
		if _, ok := data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", &MissingFieldError{File: filename, Key: key, Fields: missing}
	}
	return Format(prompt, data), nil
}

// Format replaces {{.Name}} fields with values from data in one pass, so values that contain
// field syntax are inserted literally. Fields without a value are left in place.
func Format(template string, data map[string]string) string {
	return fieldPattern.ReplaceAllStringFunc(template, func(field string) string {
		if value, ok := data[field[3:len(field)-2]]; ok {
			return value
		}
		return field
	})
}
