package searcher

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// defaultFragmentSize documents the snippet fragment length sgrep is tuned
// for; Bleve's SimpleFragmenter does not expose a per-request size knob, so
// this is informational only: nothing reads it and it is not wired into a
// Bleve option.
const defaultFragmentSize = 128

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
	ellipsis  = "…"
)

var markTagRE = regexp.MustCompile(`</?mark>`)

// stripMarkTags removes every <mark>/</mark> tag from a Bleve highlight
// fragment, returning the plain text that was actually indexed.
func stripMarkTags(fragment string) string {
	return markTagRE.ReplaceAllString(fragment, "")
}

// fragSegment is one piece of a Bleve highlight fragment split at <mark>
// boundaries.
type fragSegment struct {
	text   string
	marked bool
}

// splitMarkedSegments parses a raw Bleve highlight fragment (HTML style,
// <mark>...</mark> spans) into an ordered sequence of marked/unmarked text
// runs.
func splitMarkedSegments(frag string) []fragSegment {
	var segs []fragSegment

	rest := frag

	for {
		openIdx := strings.Index(rest, markOpen)
		if openIdx < 0 {
			if rest != "" {
				segs = append(segs, fragSegment{text: rest})
			}

			break
		}

		if openIdx > 0 {
			segs = append(segs, fragSegment{text: rest[:openIdx]})
		}

		rest = rest[openIdx+len(markOpen):]

		closeIdx := strings.Index(rest, markClose)
		if closeIdx < 0 {
			segs = append(segs, fragSegment{text: rest})
			break
		}

		segs = append(segs, fragSegment{text: rest[:closeIdx], marked: true})
		rest = rest[closeIdx+len(markClose):]
	}

	return segs
}

// cleanSegments strips a leading ellipsis (and the mid-word cut Bleve's
// SimpleFragmenter leaves right after it) from the first unmarked segment,
// and a trailing ellipsis from the last unmarked segment, so the segments'
// concatenation matches a literal substring of the original line.
func cleanSegments(segs []fragSegment) []fragSegment {
	if len(segs) == 0 {
		return segs
	}

	if !segs[0].marked {
		t := strings.TrimPrefix(segs[0].text, ellipsis)
		if t != segs[0].text {
			t = skipPartialLeadingWord(t)
		}

		segs[0].text = t
	}

	last := len(segs) - 1
	if !segs[last].marked {
		segs[last].text = strings.TrimSuffix(segs[last].text, ellipsis)
	}

	return segs
}

// skipPartialLeadingWord advances s past its first line (or, when s has no
// newline, past its first word) when s starts with a lowercase ASCII letter,
// the tell-tale sign that Bleve cut the fragment mid-word immediately after
// an ellipsis (e.g. "…ntroduction"). Anything else
// at the start (uppercase, digit, whitespace) means s already begins at a
// word boundary.
func skipPartialLeadingWord(s string) string {
	if s == "" {
		return s
	}

	if s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r' {
		return s
	}

	if s[0] < 'a' || s[0] > 'z' {
		return s
	}

	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}

	if idx := strings.IndexAny(s, " \t\r"); idx > 0 {
		return s[idx+1:]
	}

	return s
}

// caseInsensitiveIndex returns the byte offset of the first case-insensitive
// occurrence of substr in s, advancing rune by rune so the result is always a
// valid byte offset. Returns -1 if not found or substr is empty.
func caseInsensitiveIndex(s, substr string) int {
	if substr == "" {
		return -1
	}

	n := len(substr)

	for i := 0; i+n <= len(s); {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}

		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}

	return -1
}

// locateFragment finds the byte offset of segs' concatenated text within
// line, falling back to a case-insensitive search.
func locateFragment(segs []fragSegment, line string) (int, bool) {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.text)
	}

	locator := sb.String()
	if locator == "" {
		return 0, false
	}

	if idx := strings.Index(line, locator); idx >= 0 {
		return idx, true
	}

	if idx := caseInsensitiveIndex(line, locator); idx >= 0 {
		return idx, true
	}

	return 0, false
}

// segmentRanges walks segs, reconstructing each marked segment's absolute
// byte range in line given the byte offset where the fragment begins.
func segmentRanges(segs []fragSegment, offset int) []HighlightRange {
	var ranges []HighlightRange

	cursor := offset

	for _, s := range segs {
		n := len(s.text)
		if s.marked && n > 0 {
			ranges = append(ranges, HighlightRange{Start: cursor, End: cursor + n})
		}

		cursor += n
	}

	return ranges
}

// highlightRangesInLine locates every <mark>-ed span from a raw Bleve
// highlight fragment within line, returning their byte ranges in line.
// Returns nil if the fragment cannot be located in line (for instance,
// because it belongs to a different stored line value of the same
// document).
func highlightRangesInLine(rawFrag, line string) []HighlightRange {
	segs := splitMarkedSegments(rawFrag)
	if len(segs) == 0 {
		return nil
	}

	segs = cleanSegments(segs)

	offset, ok := locateFragment(segs, line)
	if !ok {
		return nil
	}

	return segmentRanges(segs, offset)
}
