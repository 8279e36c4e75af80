package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// Supported upload types
const (
	FileTypePDF  = "pdf"
	FileTypeDOCX = "docx"
	FileTypeTXT  = "txt"
)

// SupportedFileType maps a lowercase filename extension to a file type
func SupportedFileType(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return FileTypePDF, true
	case strings.HasSuffix(lower, ".docx"):
		return FileTypeDOCX, true
	case strings.HasSuffix(lower, ".txt"):
		return FileTypeTXT, true
	default:
		return "", false
	}
}

// TextExtractor pulls plain text out of uploaded documents
type TextExtractor struct{}

// NewTextExtractor creates a new text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the plain text of a document by file type
func (e *TextExtractor) Extract(content []byte, fileType string) (string, error) {
	switch fileType {
	case FileTypePDF:
		return e.extractPDF(content)
	case FileTypeDOCX:
		return e.extractDOCX(content)
	case FileTypeTXT:
		return e.extractTXT(content)
	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// sanitizePDF truncates trailing garbage after the last %%EOF marker. PDFs
// downloaded from the web often carry appended HTML or tracking bytes that
// break strict parsers.
func sanitizePDF(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if pdfEnd < len(content) {
		extraBytes := len(content) - pdfEnd
		if extraBytes > 10 {
			log.Printf("PDF sanitizer: removing %d bytes of trailing garbage after %%EOF", extraBytes)
			return content[:pdfEnd]
		}
	}

	return content
}

func (e *TextExtractor) extractPDF(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	content = sanitizePDF(content)

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Fallback to plain text if row extraction fails
			text, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				log.Printf("PDF extractor: page %d extraction failed: %v", i, plainErr)
				continue
			}
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n")
			continue
		}

		for _, row := range rows {
			var rowText strings.Builder
			for _, word := range row.Content {
				rowText.WriteString(word.S)
			}
			line := strings.TrimSpace(rowText.String())
			if line != "" {
				textBuilder.WriteString(line)
				textBuilder.WriteString("\n")
			}
		}
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no text extracted from PDF, file may be scanned or image-based")
	}

	return extracted, nil
}

func (e *TextExtractor) extractDOCX(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty DOCX content")
	}

	text, _, err := docconv.ConvertDocx(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text extracted from DOCX")
	}
	return text, nil
}

func (e *TextExtractor) extractTXT(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}
	return text, nil
}
