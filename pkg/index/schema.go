// Package index owns the persistent inverted-index store: its schema, its
// open-or-create lifecycle, and the content-hash-deduplicated incremental
// indexer built on top of it.
package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	sgrepanalysis "github.com/Hexilee/sgrep/pkg/analysis"
)

// Field names, matching the IndexedDocument layout in spec.md §3.
const (
	fieldPath      = "path"
	fieldCollector = "collector"
	fieldHash      = "hash"
	fieldPosition  = "position"
	fieldLine      = "line"
)

// Document is the persistent record of one indexed path. Position and Line
// are paired: the i-th Position entry describes where the i-th Line entry
// was found.
type Document struct {
	Path      string   `json:"path"`
	Collector string   `json:"collector"`
	Hash      string   `json:"hash"`
	Position  []string `json:"position"`
	Line      []string `json:"line"`
}

// buildMapping constructs the sgrep index schema: path/collector/hash/
// position as raw (unanalyzed) stored keyword fields, line analyzed with the
// jieba-with-filters chain and stored with term frequencies and positions
// (needed for phrase queries and snippet generation).
func buildMapping() (*mapping.IndexMappingImpl, error) {
	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = true

	line := bleve.NewTextFieldMapping()
	line.Store = true
	line.IncludeTermVectors = true
	line.Analyzer = sgrepanalysis.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldPath, keyword)
	doc.AddFieldMappingsAt(fieldCollector, keyword)
	doc.AddFieldMappingsAt(fieldHash, keyword)
	doc.AddFieldMappingsAt(fieldPosition, keyword)
	doc.AddFieldMappingsAt(fieldLine, line)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc

	if err := sgrepanalysis.Register(m); err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}

	return m, nil
}
