package services

import (
	"bytes"
	"strings"
	"testing"
)

func TestSupportedFileType(t *testing.T) {
	cases := []struct {
		filename string
		fileType string
		ok       bool
	}{
		{"report.pdf", FileTypePDF, true},
		{"Report.PDF", FileTypePDF, true},
		{"notes.docx", FileTypeDOCX, true},
		{"readme.txt", FileTypeTXT, true},
		{"archive.zip", "", false},
		{"report.doc", "", false},
		{"noextension", "", false},
	}
	for _, tc := range cases {
		got, ok := SupportedFileType(tc.filename)
		if got != tc.fileType || ok != tc.ok {
			t.Errorf("SupportedFileType(%q) = (%q, %v), want (%q, %v)", tc.filename, got, ok, tc.fileType, tc.ok)
		}
	}
}

func TestSanitizePDFRemovesTrailingGarbage(t *testing.T) {
	pdf := []byte("%PDF-1.4\nsome content\n%%EOF\n")
	garbage := bytes.Repeat([]byte("<html>junk</html>"), 3)

	out := sanitizePDF(append(append([]byte{}, pdf...), garbage...))
	if !bytes.Equal(out, pdf) {
		t.Fatalf("expected garbage after %%%%EOF to be removed, got %d bytes", len(out))
	}
}

func TestSanitizePDFKeepsSmallTrailer(t *testing.T) {
	// a handful of stray bytes is tolerated
	pdf := []byte("%PDF-1.4\ncontent\n%%EOF\nabc")
	out := sanitizePDF(pdf)
	if !bytes.Equal(out, pdf) {
		t.Fatalf("small trailer should be left alone")
	}
}

func TestSanitizePDFIgnoresNonPDF(t *testing.T) {
	data := []byte("not a pdf %%EOF trailing")
	if out := sanitizePDF(data); !bytes.Equal(out, data) {
		t.Fatalf("non-PDF content should pass through unchanged")
	}
}

func TestSanitizePDFNoEOFMarker(t *testing.T) {
	data := []byte("%PDF-1.4\ntruncated file without marker")
	if out := sanitizePDF(data); !bytes.Equal(out, data) {
		t.Fatalf("content without %%%%EOF should pass through unchanged")
	}
}

func TestExtractTXT(t *testing.T) {
	e := NewTextExtractor()

	text, err := e.Extract([]byte("  hello finance world  \n"), FileTypeTXT)
	if err != nil {
		t.Fatalf("valid text rejected: %v", err)
	}
	if text != "hello finance world" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestExtractTXTRejectsInvalidUTF8(t *testing.T) {
	e := NewTextExtractor()

	if _, err := e.Extract([]byte{0xff, 0xfe, 0x00}, FileTypeTXT); err == nil {
		t.Fatalf("expected invalid UTF-8 to be rejected")
	}
}

func TestExtractTXTRejectsEmpty(t *testing.T) {
	e := NewTextExtractor()

	if _, err := e.Extract([]byte("   \n\t "), FileTypeTXT); err == nil {
		t.Fatalf("expected whitespace-only file to be rejected")
	}
}

func TestExtractUnknownType(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract([]byte("data"), "csv")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestExtractPDFRejectsEmptyAndMalformed(t *testing.T) {
	e := NewTextExtractor()

	if _, err := e.Extract(nil, FileTypePDF); err == nil {
		t.Fatalf("expected empty PDF to be rejected")
	}
	if _, err := e.Extract([]byte("%PDF-1.4 not really a pdf"), FileTypePDF); err == nil {
		t.Fatalf("expected malformed PDF to be rejected")
	}
}
