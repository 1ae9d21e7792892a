// Package pdftext walks an OCR'd PDF and produces ordered, page-tagged text.
// Page numbers are the 1-based physical page numbers reported by the PDF, and
// every physical page emits a marker even when it has no recognizable text,
// so the model's page attribution stays aligned with the document.
package pdftext

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
)

// ReadError reports that a PDF could not be opened or parsed.
// Fatal for the request.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read pdf %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Page is one page's recognized text.
type Page struct {
	Number int // 1-based physical page number
	Text   string
}

// Document is the ordered page text of one PDF.
type Document struct {
	Pages []Page
}

// MarkerFor returns the page marker for a physical page number. The format
// is stable so the model can reliably echo back the page it extracted from.
func MarkerFor(pageNum int) string {
	return fmt.Sprintf("--- Page %d ---", pageNum)
}

// Tagged concatenates every page in physical order, each prefixed with its
// page marker.
func (d *Document) Tagged() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, MarkerFor(p.Number)+"\n"+p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Extract reads every page of the PDF at path in physical order. The page
// count reported by the reader is cross-checked against an independent count
// of the page tree; a disagreement means a damaged document, not a readable
// one with fewer pages.
func Extract(path string) (*Document, error) {
	count, err := PageCount(path)
	if err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("document has no pages")}
	}
	if numPages != count {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("page count mismatch: reader sees %d pages, page tree holds %d", numPages, count)}
	}

	fonts := make(map[string]*pdf.Font)
	doc := &Document{Pages: make([]Page, 0, numPages)}

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)

		text := ""
		if !p.V.IsNull() {
			for _, name := range p.Fonts() {
				if _, ok := fonts[name]; !ok {
					f2 := p.Font(name)
					fonts[name] = &f2
				}
			}

			text, err = p.GetPlainText(fonts)
			if err != nil {
				return nil, &ReadError{Path: path, Err: fmt.Errorf("page %d: %w", i, err)}
			}
			text = strings.TrimSpace(text)
		}

		// Empty pages still get an entry so markers stay aligned with
		// physical page numbers.
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}

	return doc, nil
}

// PageCount returns the number of physical pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	count, err := pdfcpu.PageCount(f, nil)
	if err != nil {
		return 0, &ReadError{Path: path, Err: err}
	}
	return count, nil
}
