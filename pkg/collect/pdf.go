package collect

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// identityHArtifact is a known ledongthuc/pdf decoder artifact: pages using
// an Identity-H CID font occasionally leak this literal marker into the
// extracted text. It is stripped from every page before the page is emitted.
const identityHArtifact = "?Identity-H Unimplemented?"

// PDFCollector extracts per-page text from PDF documents.
type PDFCollector struct {
	BaseCollector
}

// NewPDF returns a PDFCollector that accepts the "pdf" extension.
func NewPDF() *PDFCollector {
	return &PDFCollector{BaseCollector{Extensions: []string{"pdf"}}}
}

// Name returns "pdf".
func (c *PDFCollector) Name() string { return "pdf" }

// Collect opens path, extracts text page by page in document order, and
// strips the identityHArtifact marker from each page's text. Pages with no
// text content are omitted. Position is "p" + 1-based page number.
func (c *PDFCollector) Collect(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", path, err)
	}

	var lines []Line

	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from %s page %d: %w", path, pageNum, err)
		}

		text = strings.ReplaceAll(text, identityHArtifact, "")
		if strings.TrimSpace(text) == "" {
			continue
		}

		lines = append(lines, Line{Position: "p" + strconv.Itoa(pageNum), Line: text})
	}

	return lines, nil
}
