// Package analysis registers the mixed CJK/Latin analyzer chain sgrep's
// index and queries share: a Unicode word tokenizer (preserving Latin/ASCII
// runs as single tokens, CJK runs re-split into bigrams), lowercasing,
// English stopword removal, and an English snowball stemmer.
//
// The original implementation tokenizes with an HMM-disabled Jieba segmenter
// in "search" mode (github.com/fulmicoton/tantivy's cang-jie bridge over
// jieba-rs). No Jieba binding exists anywhere in this module's dependency
// graph; Bleve's own CJK bigram filter is the nearest byte-offset-preserving
// equivalent available, and is wired onto the same Unicode-tokenizer token
// stream Jieba would have consumed. See DESIGN.md.
package analysis

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Name is the analyzer name registered on the index mapping and referenced
// by the "line" field mapping; index-time and query-time analysis both
// resolve through this one registered name.
const Name = "jieba-with-filters"

// Register adds the sgrep analyzer to m under Name. Call once, before m is
// used to open or create an index.
func Register(m *mapping.IndexMappingImpl) error {
	err := m.AddCustomAnalyzer(Name, map[string]interface{}{
		"type":      "custom",
		"tokenizer": unicode.Name,
		"token_filters": []string{
			cjk.BigramName,
			lowercase.Name,
			en.StopName,
			en.StemmerName,
		},
	})
	if err != nil {
		return fmt.Errorf("register %s analyzer: %w", Name, err)
	}

	return nil
}
