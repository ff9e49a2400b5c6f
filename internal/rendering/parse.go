package rendering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse converts a raw template record, as decoded from YAML or JSON, into a Template.
// It is a pure transformation: placeholders are extracted syntactically and never checked
// against resume fields.
func Parse(raw map[string]any) (*Template, error) {
	if raw == nil {
		return nil, &TemplateError{Message: "template record is empty"}
	}

	tmpl := &Template{}

	if docRaw, ok := raw["document"]; ok && docRaw != nil {
		doc, ok := asMap(docRaw)
		if !ok {
			return nil, &TemplateError{Message: "document must be a mapping"}
		}
		start, err := stringField(doc, "start", "document")
		if err != nil {
			return nil, err
		}
		end, err := stringField(doc, "end", "document")
		if err != nil {
			return nil, err
		}
		tmpl.Start = ExtractArgItem(start)
		tmpl.End = ExtractArgItem(end)
	}

	sectionsRaw, ok := raw["sections"]
	if !ok || sectionsRaw == nil {
		return tmpl, nil
	}
	list, ok := sectionsRaw.([]any)
	if !ok {
		return nil, &TemplateError{Message: "sections must be a sequence"}
	}

	for i, item := range list {
		rec, ok := asMap(item)
		if !ok {
			return nil, &TemplateError{Message: fmt.Sprintf("sections[%d] must be a mapping", i)}
		}
		section, err := parseSection(rec, i)
		if err != nil {
			return nil, err
		}
		tmpl.Sections = append(tmpl.Sections, section)
	}

	return tmpl, nil
}

// ParseYAML decodes a YAML template definition and parses it. JSON input is accepted too.
func ParseYAML(data []byte) (*Template, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &TemplateError{Message: "failed to decode template YAML", Cause: err}
	}
	return Parse(raw)
}

// ParseJSON decodes a JSON template definition and parses it.
func ParseJSON(data []byte) (*Template, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &TemplateError{Message: "failed to decode template JSON", Cause: err}
	}
	return Parse(raw)
}

// ParseSource parses a stored template definition, choosing JSON when the text is a JSON object.
func ParseSource(source string) (*Template, error) {
	data := bytes.TrimSpace([]byte(source))
	if len(data) > 0 && data[0] == '{' {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// LoadTemplateFile reads and parses a template file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func LoadTemplateFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", path), Cause: err}
		}
		return nil, &TemplateError{Message: fmt.Sprintf("failed to read template file: %s", path), Cause: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func parseSection(rec map[string]any, index int) (Section, error) {
	where := fmt.Sprintf("sections[%d]", index)

	order, err := intField(rec, "order", where)
	if err != nil {
		return nil, err
	}

	typeName, err := stringField(rec, "type", where)
	if err != nil {
		return nil, err
	}
	kind := SectionType(typeName)

	switch {
	case kind == SectionInformation:
		fields, err := parseInformationFields(rec, where)
		if err != nil {
			return nil, err
		}
		return &InformationSection{order: order, Fields: fields}, nil

	case isEntryType(kind):
		loop, err := parseLoopItem(rec, where)
		if err != nil {
			return nil, err
		}
		section := &EntrySection{order: order, kind: kind, Loop: loop}
		if bulletsRaw, ok := rec["bulletPoints"]; ok && bulletsRaw != nil {
			bulletsRec, ok := asMap(bulletsRaw)
			if !ok {
				return nil, &TemplateError{Message: where + ".bulletPoints must be a mapping"}
			}
			bullets, err := parseLoopItem(bulletsRec, where+".bulletPoints")
			if err != nil {
				return nil, err
			}
			section.Bullets = &bullets
		}
		return section, nil

	case kind == SectionSkills:
		loop, err := parseLoopItem(rec, where)
		if err != nil {
			return nil, err
		}
		return &SkillsSection{order: order, Loop: loop}, nil

	case kind == SectionLanguages:
		loop, err := parseLoopItem(rec, where)
		if err != nil {
			return nil, err
		}
		return &LanguagesSection{order: order, Loop: loop}, nil

	default:
		return nil, &UnsupportedSectionTypeError{Type: typeName, Index: index}
	}
}

func parseInformationFields(rec map[string]any, where string) ([]InformationField, error) {
	contentsRaw, ok := rec["contents"]
	if !ok || contentsRaw == nil {
		return nil, nil
	}
	list, ok := contentsRaw.([]any)
	if !ok {
		return nil, &TemplateError{Message: where + ".contents must be a sequence"}
	}

	fields := make([]InformationField, 0, len(list))
	for i, item := range list {
		at := fmt.Sprintf("%s.contents[%d]", where, i)
		entry, ok := asMap(item)
		if !ok {
			return nil, &TemplateError{Message: at + " must be a mapping"}
		}
		order, err := intField(entry, "order", at)
		if err != nil {
			return nil, err
		}
		field, err := stringField(entry, "type", at)
		if err != nil {
			return nil, err
		}
		if field == "" {
			return nil, &TemplateError{Message: at + ".type is required"}
		}
		content, err := stringField(entry, "content", at)
		if err != nil {
			return nil, err
		}
		fields = append(fields, InformationField{
			Order: order,
			Field: strings.ToLower(field),
			Item:  ExtractArgItem(content),
		})
	}
	return fields, nil
}

func parseLoopItem(rec map[string]any, where string) (LoopItem, error) {
	var loop LoopItem
	header, err := stringField(rec, "header", where)
	if err != nil {
		return loop, err
	}
	body, err := stringField(rec, "loop", where)
	if err != nil {
		return loop, err
	}
	footer, err := stringField(rec, "footer", where)
	if err != nil {
		return loop, err
	}
	afterKey := "after-each"
	if _, ok := rec[afterKey]; !ok {
		afterKey = "afterEach"
	}
	afterEach, err := stringField(rec, afterKey, where)
	if err != nil {
		return loop, err
	}

	loop.Header = ExtractArgItem(header)
	loop.Loop = ExtractArgItem(body)
	loop.Footer = ExtractArgItem(footer)
	loop.AfterEach = ExtractArgItem(afterEach)
	return loop, nil
}

// stringField returns rec[key] as a string. Absent and null values are empty.
func stringField(rec map[string]any, key, where string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &TemplateError{Message: fmt.Sprintf("%s.%s must be a string, got %T", where, key, v)}
	}
	return s, nil
}

// intField returns rec[key] as an int. YAML yields int values and JSON yields float64.
func intField(rec map[string]any, key, where string) (int, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, &TemplateError{Message: fmt.Sprintf("%s.%s must be an integer, got %v", where, key, n)}
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &TemplateError{Message: fmt.Sprintf("%s.%s must be an integer", where, key), Cause: err}
		}
		return int(i), nil
	default:
		return 0, &TemplateError{Message: fmt.Sprintf("%s.%s must be an integer, got %T", where, key, v)}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
