package docproc

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of one PDF page.
type PageText struct {
	Page int
	Text string
}

// Extractor pulls plain text out of PDF files.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages returns the text of each non-empty page in order.
func (e *Extractor) ExtractPages(filePath string) ([]PageText, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole
			// document. Skip it and keep going.
			continue
		}
		text = normalizeWhitespace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in PDF")
	}
	return pages, nil
}

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
