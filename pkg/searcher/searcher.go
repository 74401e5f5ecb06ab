// Package searcher executes ranked keyword search and regex grep against a
// sgrep index store, and turns hits into byte-range-highlighted snippets.
package searcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Hexilee/sgrep/pkg/collect"
	"github.com/Hexilee/sgrep/pkg/index"
)

const (
	fieldPath      = "path"
	fieldCollector = "collector"
	fieldPosition  = "position"
	fieldLine      = "line"
)

// Searcher runs queries against a Store.
type Searcher struct {
	store *index.Store
}

// New builds a Searcher over store.
func New(store *index.Store) *Searcher {
	return &Searcher{store: store}
}

// Hit is one scope-filtered, ranked search result.
type Hit struct {
	Path      string
	Collector string
	Score     float64
	Lines     []SnippetLine
}

// SnippetLine is one (position, line) pair from a Hit, with the query's
// matched byte ranges located back in Line for highlighting. A Line with no
// resolved fragment is omitted from a Hit's Lines, per spec.
type SnippetLine struct {
	Position string
	Line     string
	Ranges   []HighlightRange
}

// HighlightRange is a byte range within a SnippetLine.Line or GrepLine.Line
// to render bold.
type HighlightRange struct {
	Start int
	End   int
}

const defaultLimit = 5

// Search runs a keyword search, scoped to the paths expanded from
// pathPatterns, returning up to limit ranked hits. limit <= 0 uses the
// default of 5.
func (s *Searcher) Search(ctx context.Context, queryText string, limit int, pathPatterns []string) ([]Hit, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	scope, err := collect.Enumerate(pathPatterns)
	if err != nil {
		return nil, fmt.Errorf("expand search scope: %w", err)
	}

	if len(scope) == 0 {
		return nil, nil
	}

	scopeSet := make(map[string]struct{}, len(scope))
	for _, p := range scope {
		scopeSet[p] = struct{}{}
	}

	userQuery := buildSearchQuery(queryText)
	combined := bleve.NewConjunctionQuery(userQuery, buildScopeQuery(scope))

	req := bleve.NewSearchRequestOptions(combined, limit, 0, false)
	req.Fields = []string{fieldPath, fieldCollector, fieldPosition, fieldLine}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{fieldLine}

	result, err := s.store.Index().SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))

	for _, dh := range result.Hits {
		path, _ := dh.Fields[fieldPath].(string)

		// Defense in depth: the scope conjunction already restricts candidates,
		// but a stored path that somehow falls outside the expanded set is
		// dropped here too rather than trusted.
		if _, ok := scopeSet[path]; !ok {
			continue
		}

		collector, _ := dh.Fields[fieldCollector].(string)

		positions := stringSliceField(dh.Fields[fieldPosition])
		lines := stringSliceField(dh.Fields[fieldLine])
		rawFragments := dh.Fragments[fieldLine]

		hits = append(hits, Hit{
			Path:      path,
			Collector: collector,
			Score:     dh.Score,
			Lines:     resolveSnippetLines(positions, lines, rawFragments),
		})
	}

	return hits, nil
}

// resolveSnippetLines pairs positions/lines and, for each line, tries every
// raw highlight fragment against it until one resolves to a byte range
// (bleve does not report which stored array index a fragment came from, so
// each fragment is matched against every line in turn). Lines with no
// resolved fragment are omitted.
func resolveSnippetLines(positions, lines, rawFragments []string) []SnippetLine {
	out := make([]SnippetLine, 0, len(lines))

	for i, line := range lines {
		var ranges []HighlightRange

		for _, frag := range rawFragments {
			if r := highlightRangesInLine(frag, line); len(r) > 0 {
				ranges = r
				break
			}
		}

		if len(ranges) == 0 {
			continue
		}

		position := ""
		if i < len(positions) {
			position = positions[i]
		}

		out = append(out, SnippetLine{Position: position, Line: line, Ranges: ranges})
	}

	return out
}

func stringSliceField(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))

		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

func buildScopeQuery(scope []string) bleveQuery.Query {
	terms := make([]bleveQuery.Query, 0, len(scope))

	for _, path := range scope {
		q := bleve.NewTermQuery(path)
		q.SetField(fieldPath)
		terms = append(terms, q)
	}

	return bleve.NewDisjunctionQuery(terms...)
}

// queryTerm is a single parsed search term; phrase marks a double-quoted run.
type queryTerm struct {
	text   string
	phrase bool
}

// queryScanner walks a query string left to right, peeling off one term per
// call to next(): a double-quoted run starting a token becomes a phrase
// term, anything else runs to the next whitespace as a bare term.
type queryScanner struct {
	input string
	pos   int
}

// next returns the next term and true, or a zero term and false once the
// scanner is exhausted. Empty phrases (e.g. a bare `""`) are skipped rather
// than returned, since they carry no query content.
func (s *queryScanner) next() (queryTerm, bool) {
	for {
		for s.pos < len(s.input) && (s.input[s.pos] == ' ' || s.input[s.pos] == '\t') {
			s.pos++
		}

		if s.pos >= len(s.input) {
			return queryTerm{}, false
		}

		if s.input[s.pos] != '"' {
			start := s.pos

			if rel := strings.IndexAny(s.input[s.pos:], " \t"); rel == -1 {
				s.pos = len(s.input)
			} else {
				s.pos += rel
			}

			return queryTerm{text: s.input[start:s.pos]}, true
		}

		contentStart := s.pos + 1

		closeRel := strings.IndexByte(s.input[contentStart:], '"')
		if closeRel == -1 {
			text := strings.TrimSpace(s.input[contentStart:])
			s.pos = len(s.input)

			if text == "" {
				return queryTerm{}, false
			}

			return queryTerm{text: text, phrase: true}, true
		}

		text := strings.TrimSpace(s.input[contentStart : contentStart+closeRel])
		s.pos = contentStart + closeRel + 1

		if text != "" {
			return queryTerm{text: text, phrase: true}, true
		}
	}
}

// splitQueryTerms parses user input into individual search terms.
// Double-quoted substrings are phrase terms; unquoted words split on
// whitespace.
func splitQueryTerms(input string) []queryTerm {
	scanner := &queryScanner{input: strings.TrimSpace(input)}

	var terms []queryTerm

	for {
		term, ok := scanner.next()
		if !ok {
			break
		}

		terms = append(terms, term)
	}

	return terms
}

const (
	minFuzzyTermLength = 4
	longTermThreshold  = 7
)

// buildSearchQuery constructs a hybrid query against the line field: each
// term becomes a disjunction of match/prefix/fuzzy sub-queries (or a phrase
// query for quoted terms), terms are conjoined.
func buildSearchQuery(userQuery string) bleveQuery.Query {
	terms := splitQueryTerms(userQuery)
	if len(terms) == 0 {
		return bleve.NewMatchNoneQuery()
	}

	termQueries := make([]bleveQuery.Query, 0, len(terms))

	for _, term := range terms {
		if term.phrase {
			termQueries = append(termQueries, buildPhraseQuery(term.text))
		} else {
			termQueries = append(termQueries, buildTermQuery(term.text))
		}
	}

	if len(termQueries) == 1 {
		return termQueries[0]
	}

	return bleve.NewConjunctionQuery(termQueries...)
}

func buildPhraseQuery(phrase string) bleveQuery.Query {
	q := bleve.NewMatchPhraseQuery(phrase)
	q.SetField(fieldLine)

	return q
}

func buildTermQuery(term string) bleveQuery.Query {
	subQueries := make([]bleveQuery.Query, 0, 3)

	match := bleve.NewMatchQuery(term)
	match.SetField(fieldLine)
	match.SetBoost(3.0)
	subQueries = append(subQueries, match)

	lowered := strings.ToLower(term)

	prefix := bleve.NewPrefixQuery(lowered)
	prefix.SetField(fieldLine)
	prefix.SetBoost(1.5)
	subQueries = append(subQueries, prefix)

	if len(term) >= minFuzzyTermLength {
		fuzziness := 1
		if len(term) >= longTermThreshold {
			fuzziness = 2
		}

		fuzzy := bleve.NewFuzzyQuery(lowered)
		fuzzy.SetField(fieldLine)
		fuzzy.SetFuzziness(fuzziness)
		fuzzy.SetBoost(0.5)
		subQueries = append(subQueries, fuzzy)
	}

	return bleve.NewDisjunctionQuery(subQueries...)
}
