// Package rendering turns a resume and a declarative template into LaTeX source.
package rendering

import (
	"regexp"
	"sort"
	"strings"
)

// SectionType names the kind of resume data a template section renders.
type SectionType string

// Recognized section types.
const (
	SectionInformation SectionType = "information"
	SectionEducation   SectionType = "education"
	SectionExperience  SectionType = "experience"
	SectionProjects    SectionType = "projects"
	SectionCourses     SectionType = "courses"
	SectionSkills      SectionType = "skills"
	SectionLanguages   SectionType = "languages"
)

// placeholderPattern matches __NAME__ tokens where NAME is [A-Z_]+.
var placeholderPattern = regexp.MustCompile(`__([A-Z_]+)__`)

// ArgItem is a literal fragment plus the placeholder names it declares.
// It is immutable: rendering never changes it.
type ArgItem struct {
	template string
	args     []string
}

// ExtractArgItem scans fragment for placeholder tokens and records each distinct
// name, lowercased, in order of first appearance.
func ExtractArgItem(fragment string) ArgItem {
	item := ArgItem{template: fragment}
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(fragment, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			item.args = append(item.args, name)
		}
	}
	return item
}

// Template returns the literal fragment.
func (a ArgItem) Template() string {
	return a.template
}

// Args returns the declared placeholder names.
func (a ArgItem) Args() []string {
	out := make([]string, len(a.args))
	copy(out, a.args)
	return out
}

// HasArgs reports whether the fragment declares any placeholder.
func (a ArgItem) HasArgs() bool {
	return len(a.args) > 0
}

// Has reports whether name (case-insensitive) is a declared placeholder.
func (a ArgItem) Has(name string) bool {
	name = strings.ToLower(name)
	for _, arg := range a.args {
		if arg == name {
			return true
		}
	}
	return false
}

// IsZero reports whether the fragment is empty.
func (a ArgItem) IsZero() bool {
	return a.template == ""
}

// Unknown returns the sorted keys of values that the fragment does not declare.
// Binding such names has no effect on Render.
func (a ArgItem) Unknown(values map[string]string) []string {
	var unknown []string
	for key := range values {
		if !a.Has(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Render substitutes every placeholder token with its bound value.
// Tokens whose name has no value in values are removed.
func (a ArgItem) Render(values map[string]string) string {
	if len(a.args) == 0 {
		return a.template
	}
	return placeholderPattern.ReplaceAllStringFunc(a.template, func(token string) string {
		name := strings.ToLower(token[2 : len(token)-2])
		return values[name]
	})
}

// LoopItem renders a repeated list: Header, one Loop per item with AfterEach between items, Footer.
type LoopItem struct {
	Header    ArgItem
	Loop      ArgItem
	Footer    ArgItem
	AfterEach ArgItem
}

// Section is one template section. The set of implementations is closed:
// *InformationSection, *EntrySection, *SkillsSection and *LanguagesSection.
type Section interface {
	Order() int
	Type() SectionType
	section()
}

// InformationField binds one scalar resume field to a fragment.
type InformationField struct {
	Order int
	Field string
	Item  ArgItem
}

// InformationSection renders scalar resume fields such as name, email or about.
type InformationSection struct {
	order  int
	Fields []InformationField
}

// EntrySection renders education, experience, projects or courses. Bullets, when set, renders
// list content inside each entry.
type EntrySection struct {
	order   int
	kind    SectionType
	Loop    LoopItem
	Bullets *LoopItem
}

// SkillsSection renders the flat skills list, binding each skill to the `skill` placeholder.
type SkillsSection struct {
	order int
	Loop  LoopItem
}

// LanguagesSection renders language/level pairs.
type LanguagesSection struct {
	order int
	Loop  LoopItem
}

// Order returns the section's render position.
func (s *InformationSection) Order() int { return s.order }

// Type returns SectionInformation.
func (s *InformationSection) Type() SectionType { return SectionInformation }

func (s *InformationSection) section() {}

// Order returns the section's render position.
func (s *EntrySection) Order() int { return s.order }

// Type returns the entry kind.
func (s *EntrySection) Type() SectionType { return s.kind }

func (s *EntrySection) section() {}

// Order returns the section's render position.
func (s *SkillsSection) Order() int { return s.order }

// Type returns SectionSkills.
func (s *SkillsSection) Type() SectionType { return SectionSkills }

func (s *SkillsSection) section() {}

// Order returns the section's render position.
func (s *LanguagesSection) Order() int { return s.order }

// Type returns SectionLanguages.
func (s *LanguagesSection) Type() SectionType { return SectionLanguages }

func (s *LanguagesSection) section() {}

// Template is a parsed template description. It is read-only after parsing and safe to share
// between concurrent Generate calls.
type Template struct {
	Start    ArgItem
	End      ArgItem
	Sections []Section
}

// isEntryType reports whether t is rendered by an EntrySection.
func isEntryType(t SectionType) bool {
	switch t {
	case SectionEducation, SectionExperience, SectionProjects, SectionCourses:
		return true
	}
	return false
}
