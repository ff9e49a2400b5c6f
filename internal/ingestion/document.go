// Package ingestion turns uploaded CVs and job postings into clean text.
package ingestion

import (
	"archive/zip"
	"bytes"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// MaxDocumentBytes bounds the size of an uploaded CV.
const MaxDocumentBytes = 10 << 20

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrEmptyDocument is returned when a document yields no text.
var ErrEmptyDocument = errors.New("document contains no text")

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// SupportedExtensions lists the file extensions ExtractText accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md"}
}

// ExtractText returns the cleaned text of a CV file. The format is chosen by the extension of
// filename.
func ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if len(data) > MaxDocumentBytes {
		return "", errors.Errorf("document is %d bytes, limit is %d", len(data), MaxDocumentBytes)
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", errors.Errorf("%s is not valid UTF-8", filename)
		}
		text = string(data)
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to extract text from %s", filename)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", ErrEmptyDocument
	}
	return cleaned, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open pdf")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "failed to read pdf text")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", errors.Wrap(err, "failed to read pdf text")
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open docx archive")
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", errors.Wrap(err, "failed to open word/document.xml")
		}
		defer func() { _ = rc.Close() }()

		raw, err := io.ReadAll(io.LimitReader(rc, MaxDocumentBytes))
		if err != nil {
			return "", errors.Wrap(err, "failed to read word/document.xml")
		}
		body := docxParagraphEnd.ReplaceAllString(string(raw), "\n")
		body = xmlTag.ReplaceAllString(body, "")
		return html.UnescapeString(body), nil
	}
	return "", errors.New("word/document.xml not found in docx archive")
}
