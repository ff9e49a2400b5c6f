package ingestion

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	innerSpace      = regexp.MustCompile(`\s+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
	symbolBullet    = regexp.MustCompile(`^[•·▪●◦‣]\s*`)
)

// CleanText normalizes line endings and whitespace while keeping headings, bullets and paragraph
// breaks. Symbol bullets common in PDF output become "- ".
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := excessiveBlanks.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := strings.Repeat(" ", len(line)-len(trimmed))
	if symbolBullet.MatchString(trimmed) {
		trimmed = "- " + symbolBullet.ReplaceAllString(trimmed, "")
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return indent + trimmed[:2] + innerSpace.ReplaceAllString(strings.TrimSpace(trimmed[2:]), " ")
	}
	return indent + innerSpace.ReplaceAllString(trimmed, " ")
}

// ReadFile reads a CV from disk and extracts its text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(err, "file not found")
		}
		return "", errors.Wrap(err, "failed to read file")
	}
	return ExtractText(path, data)
}
