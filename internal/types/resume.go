// Package types provides type definitions for structured data used throughout the resume-forge system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Resume is the canonical structured representation of a CV.
// Education and Experience are always present (possibly empty); Projects and Courses may be nil.
type Resume struct {
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	About      string          `json:"about"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Portfolio  string          `json:"portfolio,omitempty"`
	LinkedIn   string          `json:"linkedin,omitempty"`
	GitHub     string          `json:"github,omitempty"`
	Address    string          `json:"address,omitempty"`
	Education  []Section       `json:"education"`
	Experience []Section       `json:"experience"`
	Projects   []Section       `json:"projects,omitempty"`
	Courses    []Section       `json:"courses,omitempty"`
	Languages  []LanguageLevel `json:"languages"`
	Skills     []string        `json:"skills"`
}

// Section is one dated entry: a job, degree, project or course.
type Section struct {
	Title        string  `json:"title"`
	Organization string  `json:"organization"`
	Location     string  `json:"location"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Content      Content `json:"content"`
}

// LanguageLevel pairs a spoken language with a proficiency level.
type LanguageLevel struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Content is either a single paragraph or an ordered list of bullet points.
// The zero value is an empty paragraph.
type Content struct {
	text    string
	bullets []string
	isList  bool
}

// TextContent returns paragraph content.
func TextContent(text string) Content {
	return Content{text: text}
}

// BulletContent returns list content. The slice is copied.
func BulletContent(bullets ...string) Content {
	cp := make([]string, len(bullets))
	copy(cp, bullets)
	return Content{bullets: cp, isList: true}
}

// IsList reports whether the content is a bullet list.
func (c Content) IsList() bool {
	return c.isList
}

// Text returns the paragraph text. It is empty for list content.
func (c Content) Text() string {
	return c.text
}

// Bullets returns a copy of the bullet points. It is nil for paragraph content.
func (c Content) Bullets() []string {
	if !c.isList {
		return nil
	}
	cp := make([]string, len(c.bullets))
	copy(cp, c.bullets)
	return cp
}

// IsEmpty reports whether the content carries no non-blank text.
func (c Content) IsEmpty() bool {
	if !c.isList {
		return strings.TrimSpace(c.text) == ""
	}
	for _, b := range c.bullets {
		if strings.TrimSpace(b) != "" {
			return false
		}
	}
	return true
}

// Map returns a new Content with fn applied to the paragraph or to every bullet.
func (c Content) Map(fn func(string) string) Content {
	if !c.isList {
		return Content{text: fn(c.text)}
	}
	out := make([]string, len(c.bullets))
	for i, b := range c.bullets {
		out[i] = fn(b)
	}
	return Content{bullets: out, isList: true}
}

// MarshalJSON encodes list content as a JSON array and paragraph content as a string.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.isList {
		if c.bullets == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.bullets)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = Content{text: s}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("content list must contain only strings: %w", err)
		}
		if list == nil {
			list = []string{}
		}
		*c = Content{bullets: list, isList: true}
		return nil
	default:
		return fmt.Errorf("content must be a string or an array of strings, got %s", string(trimmed))
	}
}

// ScalarFields returns the resume's single-valued fields keyed by their lowercase template name.
func (r *Resume) ScalarFields() map[string]string {
	return map[string]string{
		"name":      r.Name,
		"title":     r.Title,
		"about":     r.About,
		"email":     r.Email,
		"phone":     r.Phone,
		"portfolio": r.Portfolio,
		"linkedin":  r.LinkedIn,
		"github":    r.GitHub,
		"address":   r.Address,
	}
}

// Entries returns the dated entries backing an entry section type.
// Unknown kinds and absent optional sections yield nil.
func (r *Resume) Entries(kind string) []Section {
	switch kind {
	case "education":
		return r.Education
	case "experience":
		return r.Experience
	case "projects":
		return r.Projects
	case "courses":
		return r.Courses
	default:
		return nil
	}
}

// Clone returns a deep copy of the resume.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.Education = cloneSections(r.Education)
	out.Experience = cloneSections(r.Experience)
	out.Projects = cloneSections(r.Projects)
	out.Courses = cloneSections(r.Courses)
	if r.Languages != nil {
		out.Languages = make([]LanguageLevel, len(r.Languages))
		copy(out.Languages, r.Languages)
	}
	if r.Skills != nil {
		out.Skills = make([]string, len(r.Skills))
		copy(out.Skills, r.Skills)
	}
	return &out
}

// Normalize replaces nil required sequences with empty ones so the JSON form always carries them.
func (r *Resume) Normalize() {
	if r.Education == nil {
		r.Education = []Section{}
	}
	if r.Experience == nil {
		r.Experience = []Section{}
	}
	if r.Languages == nil {
		r.Languages = []LanguageLevel{}
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
}

func cloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Content = s.Content.Map(func(v string) string { return v })
	}
	return out
}
