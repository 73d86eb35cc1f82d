// Package extract turns uploaded resume files into plain text for
// prompt building. PDF, DOCX and plain text uploads are supported.
package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"qaforge/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/encoding/charmap"
)

// MinResumeChars is the minimum amount of extracted text required for a
// resume to be usable for question generation.
const MinResumeChars = 50

// SupportedExtensions lists the upload formats the extractor accepts
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

// IsSupportedFilename reports whether the upload's extension is supported
func IsSupportedFilename(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// ExtractText extracts plain text from an uploaded resume file, dispatching
// on the filename extension. The returned text is whitespace-normalized and
// guaranteed to hold at least MinResumeChars characters.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDocx(data)
	case ".txt":
		text, err = extractPlainText(data)
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("Unsupported file format %q, expected one of: %s",
				ext, strings.Join(SupportedExtensions, ", ")), nil)
	}
	if err != nil {
		return "", err
	}

	text = normalizeWhitespace(text)
	if len(text) < MinResumeChars {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyResume,
			fmt.Sprintf("Could not extract sufficient text from %s, need at least %d characters",
				filename, MinResumeChars), nil)
	}

	return text, nil
}

// extractPDF extracts text from all non-null pages of a PDF document
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Failed to read PDF document", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole document
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteByte('\n')
	}

	return textBuilder.String(), nil
}

// extractDocx extracts text from a DOCX document. GetContent returns the
// raw document XML, so markup is stripped afterwards.
func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Failed to read DOCX document", err)
	}
	defer func() { _ = doc.Close() }()

	content := doc.Editable().GetContent()
	return stripXML(content), nil
}

// stripXML reduces WordprocessingML to its text content, inserting line
// breaks at paragraph boundaries
func stripXML(content string) string {
	// Paragraph ends become newlines before the markup is dropped
	content = strings.ReplaceAll(content, "</w:p>", "</w:p>\n")

	decoder := xml.NewDecoder(strings.NewReader(content))
	var textBuilder strings.Builder
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed markup past this point, keep what was collected
			break
		}
		if chardata, ok := token.(xml.CharData); ok {
			textBuilder.Write(chardata)
		}
	}
	return textBuilder.String()
}

// extractPlainText decodes a text upload. UTF-8 passes through; legacy
// single-byte encodings common in exported resumes are decoded via
// Windows-1252 first and Latin-1 as the final fallback, which accepts any
// byte sequence.
func extractPlainText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(decoded), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Failed to decode text file", err)
	}
	return string(decoded), nil
}

// normalizeWhitespace trims lines, collapses runs of spaces and tabs, and
// drops blank lines so the prompt's character allowance goes to content
func normalizeWhitespace(s string) string {
	var lines []string
	for line := range strings.Lines(s) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, collapseSpaces(line))
	}
	return strings.Join(lines, "\n")
}

// collapseSpaces reduces consecutive intra-line whitespace to single spaces
func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				sb.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
