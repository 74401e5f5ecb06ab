package searcher

import (
	"fmt"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/dlclark/regexp2"

	"github.com/Hexilee/sgrep/pkg/collect"
)

// GrepHit is one indexed document with at least one matching line.
type GrepHit struct {
	Path      string
	Collector string
	Lines     []GrepLine
}

// GrepLine is one (position, line) pair with every regex match range located
// within Line.
type GrepLine struct {
	Position string
	Line     string
	Ranges   []HighlightRange
}

// Grep compiles pattern as a regex (prefixed with "(?i)" when ignoreCase is
// set) and matches it against the stored content of every document whose
// path is in the set expanded from pathPatterns. Documents with no matching
// line are omitted from the result.
func (s *Searcher) Grep(pattern string, ignoreCase bool, pathPatterns []string) ([]GrepHit, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	scope, err := collect.Enumerate(pathPatterns)
	if err != nil {
		return nil, fmt.Errorf("expand grep scope: %w", err)
	}

	hits := make([]GrepHit, 0, len(scope))

	for _, path := range scope {
		hit, found, err := s.grepOne(re, path)
		if err != nil {
			return nil, err
		}

		if found {
			hits = append(hits, hit)
		}
	}

	return hits, nil
}

func (s *Searcher) grepOne(re *regexp2.Regexp, path string) (GrepHit, bool, error) {
	q := bleve.NewTermQuery(path)
	q.SetField(fieldPath)

	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{fieldCollector, fieldPosition, fieldLine}

	result, err := s.store.Index().Search(req)
	if err != nil {
		return GrepHit{}, false, fmt.Errorf("lookup %s: %w", path, err)
	}

	if len(result.Hits) == 0 {
		return GrepHit{}, false, nil
	}

	doc := result.Hits[0]

	collector, _ := doc.Fields[fieldCollector].(string)
	positions := stringSliceField(doc.Fields[fieldPosition])
	lines := stringSliceField(doc.Fields[fieldLine])

	hit := GrepHit{Path: path, Collector: collector}

	for i, line := range lines {
		ranges, err := matchRanges(re, line)
		if err != nil {
			return GrepHit{}, false, fmt.Errorf("match %s: %w", path, err)
		}

		if len(ranges) == 0 {
			continue
		}

		position := ""
		if i < len(positions) {
			position = positions[i]
		}

		hit.Lines = append(hit.Lines, GrepLine{Position: position, Line: line, Ranges: ranges})
	}

	if len(hit.Lines) == 0 {
		return GrepHit{}, false, nil
	}

	return hit, true, nil
}

// matchRanges finds every match of re in line, converting regexp2's rune
// offsets to byte offsets so ranges compose with the keyword-search
// highlighter's byte-range contract.
func matchRanges(re *regexp2.Regexp, line string) ([]HighlightRange, error) {
	runeOffsets := runeByteOffsets(line)

	var ranges []HighlightRange

	m, err := re.FindStringMatch(line)
	if err != nil {
		return nil, fmt.Errorf("regex match: %w", err)
	}

	for m != nil {
		start := runeOffsets[m.Index]

		end := len(line)
		if m.Index+m.Length < len(runeOffsets) {
			end = runeOffsets[m.Index+m.Length]
		}

		ranges = append(ranges, HighlightRange{Start: start, End: end})

		m, err = re.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("regex match: %w", err)
		}
	}

	return ranges, nil
}

// runeByteOffsets returns, for each rune index in s (plus one sentinel entry
// for len(s) itself), the byte offset of that rune's first byte.
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)

	for i := range s {
		offsets = append(offsets, i)
	}

	offsets = append(offsets, len(s))

	return offsets
}
