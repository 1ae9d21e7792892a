package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFixturePDF assembles a valid single-xref PDF on disk with one page per
// entry in texts. An empty entry produces a page with an empty content stream.
func writeFixturePDF(t *testing.T, texts []string) string {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Catalog is 1, pages node 2, font 3, then page/content pairs.
	kids := make([]string, len(texts))
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	addObj("<< /Type /Catalog /Pages 2 0 R >>")
	addObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(texts)))
	addObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range texts {
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		addObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		addObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMarkerFor(t *testing.T) {
	if got := MarkerFor(1); got != "--- Page 1 ---" {
		t.Errorf("unexpected marker: %q", got)
	}
	if got := MarkerFor(42); got != "--- Page 42 ---" {
		t.Errorf("unexpected marker: %q", got)
	}
}

func TestTagged(t *testing.T) {
	t.Run("one marker per page in order", func(t *testing.T) {
		doc := &Document{Pages: []Page{
			{Number: 1, Text: "first"},
			{Number: 2, Text: ""},
			{Number: 3, Text: "third"},
		}}

		tagged := doc.Tagged()
		for _, p := range doc.Pages {
			if strings.Count(tagged, MarkerFor(p.Number)) != 1 {
				t.Errorf("expected exactly one marker for page %d", p.Number)
			}
		}

		// Markers must appear in increasing page order.
		if strings.Index(tagged, MarkerFor(1)) > strings.Index(tagged, MarkerFor(2)) ||
			strings.Index(tagged, MarkerFor(2)) > strings.Index(tagged, MarkerFor(3)) {
			t.Error("markers out of order")
		}
	})

	t.Run("empty page keeps its marker", func(t *testing.T) {
		doc := &Document{Pages: []Page{{Number: 1, Text: ""}}}
		if !strings.Contains(doc.Tagged(), MarkerFor(1)) {
			t.Error("expected marker for empty page")
		}
	})

	t.Run("page text follows its marker", func(t *testing.T) {
		doc := &Document{Pages: []Page{{Number: 1, Text: "replace filter"}}}
		tagged := doc.Tagged()
		if !strings.Contains(tagged, MarkerFor(1)+"\nreplace filter") {
			t.Errorf("expected text after marker, got %q", tagged)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Run("one page entry per physical page in order", func(t *testing.T) {
		path := writeFixturePDF(t, []string{"Pump will not start", "", "Replace the inlet filter"})

		doc, err := Extract(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Pages) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(doc.Pages))
		}
		for i, p := range doc.Pages {
			if p.Number != i+1 {
				t.Errorf("page %d numbered %d", i, p.Number)
			}
		}
		if !strings.Contains(doc.Pages[0].Text, "Pump will not start") {
			t.Errorf("missing page 1 text, got %q", doc.Pages[0].Text)
		}
		if !strings.Contains(doc.Pages[2].Text, "Replace the inlet filter") {
			t.Errorf("missing page 3 text, got %q", doc.Pages[2].Text)
		}

		tagged := doc.Tagged()
		for n := 1; n <= 3; n++ {
			if strings.Count(tagged, MarkerFor(n)) != 1 {
				t.Errorf("expected exactly one marker for page %d", n)
			}
		}
		if strings.Index(tagged, MarkerFor(1)) > strings.Index(tagged, MarkerFor(2)) ||
			strings.Index(tagged, MarkerFor(2)) > strings.Index(tagged, MarkerFor(3)) {
			t.Error("markers out of order")
		}
	})

	t.Run("blank page keeps its marker with no text", func(t *testing.T) {
		path := writeFixturePDF(t, []string{"before", "", "after"})

		doc, err := Extract(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Pages[1].Text != "" {
			t.Errorf("expected empty text for blank page, got %q", doc.Pages[1].Text)
		}
		if !strings.Contains(doc.Tagged(), MarkerFor(2)) {
			t.Error("expected marker for blank page")
		}
	})
}

func TestExtractErrors(t *testing.T) {
	t.Run("missing file is a ReadError naming the path", func(t *testing.T) {
		_, err := Extract("/nonexistent/file.pdf")
		var re *ReadError
		if !errors.As(err, &re) {
			t.Fatalf("expected ReadError, got %T", err)
		}
		if re.Path != "/nonexistent/file.pdf" {
			t.Errorf("expected error to name the path, got %s", re.Path)
		}
	})

	t.Run("garbage file is a ReadError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
		if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Extract(path)
		var re *ReadError
		if !errors.As(err, &re) {
			t.Fatalf("expected ReadError, got %T (%v)", err, err)
		}
	})
}

func TestPageCount(t *testing.T) {
	t.Run("counts the page tree", func(t *testing.T) {
		path := writeFixturePDF(t, []string{"one", "two"})
		count, err := PageCount(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 pages, got %d", count)
		}
	})

	t.Run("missing file is a ReadError", func(t *testing.T) {
		_, err := PageCount("/nonexistent/file.pdf")
		var re *ReadError
		if !errors.As(err, &re) {
			t.Fatalf("expected ReadError, got %T", err)
		}
	})
}
