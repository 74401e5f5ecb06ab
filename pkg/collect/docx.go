package collect

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxCollector extracts per-paragraph text from Word documents. Tables and
// other non-paragraph body content are dropped; this mirrors the original
// collector's documented non-goal (TODO: support tables, never implemented
// upstream either).
type DocxCollector struct {
	BaseCollector
}

// NewDocx returns a DocxCollector that accepts "docx" and "doc" extensions.
func NewDocx() *DocxCollector {
	return &DocxCollector{BaseCollector{Extensions: []string{"docx", "doc"}}}
}

// Name returns "docx".
func (c *DocxCollector) Name() string { return "docx" }

// Collect parses path's document body and yields one Line per paragraph, in
// document order, with position "p" + 0-based paragraph index and the
// paragraph's text plus a trailing newline.
func (c *DocxCollector) Collect(path string) ([]Line, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", path, err)
	}
	defer r.Close()

	body := r.Editable().GetContent()

	paragraphs, err := splitParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("parse docx body %s: %w", path, err)
	}

	lines := make([]Line, 0, len(paragraphs))

	for i, p := range paragraphs {
		lines = append(lines, Line{Position: "p" + strconv.Itoa(i), Line: p + "\n"})
	}

	return lines, nil
}

// splitParagraphs walks the document.xml body XML and returns the
// concatenated <w:t> run text of each <w:p> paragraph, in document order.
// Paragraphs inside a <w:tbl> table are skipped.
// nguyenthenguyen/docx exposes only the raw XML body (GetContent); paragraph
// segmentation is this spec's own addition on top of that.
func splitParagraphs(body string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))

	var (
		paragraphs []string
		inPara     bool
		inText     bool
		tblDepth   int
		current    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				tblDepth++
			case "p":
				if tblDepth > 0 {
					continue
				}

				inPara = true

				current.Reset()
			case "t":
				if inPara {
					inText = true
				}
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "tbl":
				tblDepth--
			case "p":
				if !inPara {
					continue
				}

				inPara = false

				paragraphs = append(paragraphs, current.String())
			}
		}
	}

	return paragraphs, nil
}
