package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"qaforge/internal/errors"
)

func TestIsSupportedFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"resume.pdf", true},
		{"resume.PDF", true},
		{"resume.docx", true},
		{"resume.txt", true},
		{"resume.doc", false},
		{"resume.odt", false},
		{"resume", false},
		{"archive.tar.gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsSupportedFilename(tt.filename); got != tt.want {
				t.Errorf("IsSupportedFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	_, err := ExtractText("resume.odt", []byte("whatever"))
	if err == nil {
		t.Fatal("Expected an error for an unsupported extension")
	}
	if !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Errorf("Expected a validation error, got: %v", err)
	}
}

func TestExtractTextPlain(t *testing.T) {
	content := "Senior Go developer with eight years of experience building distributed systems and HTTP services."

	text, err := ExtractText("resume.txt", []byte(content))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != content {
		t.Errorf("Expected content to pass through unchanged, got: %q", text)
	}
}

func TestExtractTextPlainLegacyEncoding(t *testing.T) {
	// "Ingénieur" in Windows-1252: é is 0xE9, invalid as UTF-8
	raw := append([]byte("Ing"), 0xE9)
	raw = append(raw, []byte("nieur logiciel avec dix ans d'experience en developpement de services backend Go.")...)

	text, err := ExtractText("resume.txt", raw)
	if err != nil {
		t.Fatalf("ExtractText failed for legacy encoding: %v", err)
	}
	if !strings.Contains(text, "Ingénieur") {
		t.Errorf("Expected decoded accented text, got: %q", text)
	}
}

func TestExtractTextTooShort(t *testing.T) {
	_, err := ExtractText("resume.txt", []byte("too short"))
	if err == nil {
		t.Fatal("Expected an error for insufficient text")
	}
	if !errors.IsType(err, errors.ErrorTypeExtraction) {
		t.Errorf("Expected an extraction error, got: %v", err)
	}
}

func TestExtractTextWhitespaceNormalization(t *testing.T) {
	content := "Senior   Go\tdeveloper\n\n\n  with years of experience  \nbuilding distributed systems and services.\n"

	text, err := ExtractText("resume.txt", []byte(content))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	want := "Senior Go developer\nwith years of experience\nbuilding distributed systems and services."
	if text != want {
		t.Errorf("Normalization mismatch:\ngot:  %q\nwant: %q", text, want)
	}
}

func TestExtractTextCorruptPDF(t *testing.T) {
	_, err := ExtractText("resume.pdf", []byte("this is not a pdf"))
	if err == nil {
		t.Fatal("Expected an error for a corrupt PDF")
	}
	if !errors.IsType(err, errors.ErrorTypeExtraction) {
		t.Errorf("Expected an extraction error, got: %v", err)
	}
}

func TestExtractTextCorruptDocx(t *testing.T) {
	_, err := ExtractText("resume.docx", []byte("this is not a zip archive"))
	if err == nil {
		t.Fatal("Expected an error for a corrupt DOCX")
	}
	if !errors.IsType(err, errors.ErrorTypeExtraction) {
		t.Errorf("Expected an extraction error, got: %v", err)
	}
}

func TestExtractTextDocx(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Senior Go developer with eight years of experience.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Built HTTP services and worked with PostgreSQL and Redis.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	data := buildDocx(t, document)

	text, err := ExtractText("resume.docx", data)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if !strings.Contains(text, "Senior Go developer") {
		t.Errorf("Expected paragraph text, got: %q", text)
	}
	if strings.Contains(text, "<w:") {
		t.Errorf("Markup should have been stripped, got: %q", text)
	}
	// Paragraphs stay on separate lines
	if !strings.Contains(text, "experience.\nBuilt HTTP services") {
		t.Errorf("Expected a line break between paragraphs, got: %q", text)
	}
}

// buildDocx assembles a minimal DOCX archive around the given document XML
func buildDocx(t *testing.T, document string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"word/document.xml": document,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}

	for name, content := range files {
		f, err := writer.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s in archive: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to finalize archive: %v", err)
	}
	return buf.Bytes()
}

func TestStripXML(t *testing.T) {
	in := `<w:document><w:body><w:p><w:r><w:t>Hello &amp; welcome</w:t></w:r></w:p><w:p><w:r><w:t>Second line</w:t></w:r></w:p></w:body></w:document>`
	got := stripXML(in)

	if !strings.Contains(got, "Hello & welcome") {
		t.Errorf("Entities should be decoded, got: %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Errorf("Paragraph boundaries should become newlines, got: %q", got)
	}
}
