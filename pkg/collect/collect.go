// Package collect extracts positioned text lines from heterogeneous document
// formats (plain text, PDF, DOCX, spreadsheets) behind a single Collector
// contract, dispatched by a Registry keyed on collector name.
package collect

import (
	"path/filepath"
	"strings"
)

// Line is a positioned text fragment: a human-readable locator paired with
// the text found there. Position examples: "42" for text line 42, "p3" for
// PDF page 3, "Sheet1(3,0)" for a spreadsheet cell.
type Line struct {
	Position string
	Line     string
}

// Document is the result of running one Collector over one path: the
// collector's stable name plus the ordered lines it produced. Order only
// matters for snippet layout; the indexer does not rely on it.
type Document struct {
	Collector string
	Lines     []Line
}

// Collector extracts positioned lines from a single file format.
//
// Implementations are polymorphic over name/AcceptExtension/ShouldCollect/
// Collect; dispatch is by iterating a Registry's collectors, not by type
// assertion.
type Collector interface {
	// Name returns a stable identifier, unique within a Registry.
	Name() string

	// ShouldCollect reports whether this collector claims path. The default
	// behavior (see BaseCollector) filters by lowercased extension; some
	// collectors override this to sniff file content instead.
	ShouldCollect(path string) (bool, error)

	// Collect extracts positioned lines from path. Returns a Decode error on
	// malformed content, an I/O error on read failure.
	Collect(path string) ([]Line, error)
}

// BaseCollector implements the default ShouldCollect behavior (extension
// filtering) and AcceptExtension, so concrete collectors only need to supply
// Extensions, Name, and Collect. Embed it in a collector that doesn't need to
// sniff file content.
type BaseCollector struct {
	// Extensions lists the lowercased, dot-free extensions this collector
	// accepts. A nil/empty set accepts every extension.
	Extensions []string
}

// AcceptExtension reports whether ext (lowercased, no leading dot, possibly
// empty) is accepted by this collector. With no configured extension set,
// everything is accepted.
func (b BaseCollector) AcceptExtension(ext string) bool {
	if len(b.Extensions) == 0 {
		return true
	}

	for _, e := range b.Extensions {
		if e == ext {
			return true
		}
	}

	return false
}

// ShouldCollect filters by the path's lowercased extension via AcceptExtension.
func (b BaseCollector) ShouldCollect(path string) (bool, error) {
	return b.AcceptExtension(extensionOf(path)), nil
}

// extensionOf returns the lowercased, dot-free extension of path, or "" if
// path has none.
func extensionOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
