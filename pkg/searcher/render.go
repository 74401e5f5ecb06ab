package searcher

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	pathColor      = color.New(color.FgMagenta)
	collectorColor = color.New(color.FgYellow, color.Italic)
	positionColor  = color.New(color.FgGreen)
	matchColor     = color.New(color.FgRed, color.Bold)
)

// renderRanges writes line to w, wrapping each byte range in ranges with a
// bold-red escape. ranges must be sorted by Start and non-overlapping, which
// both the snippet and grep resolvers already guarantee by construction.
func renderRanges(w io.Writer, line string, ranges []HighlightRange) {
	cursor := 0

	for _, r := range ranges {
		if r.Start < cursor || r.End > len(line) || r.Start >= r.End {
			continue
		}

		fmt.Fprint(w, line[cursor:r.Start])
		matchColor.Fprint(w, line[r.Start:r.End])
		cursor = r.End
	}

	fmt.Fprint(w, line[cursor:])
}

// WriteHit renders a keyword-search Hit in the CLI's "<path>(<collector>)"
// followed by one "<position>:<highlighted line>" per resolved snippet.
func WriteHit(w io.Writer, hit Hit) {
	pathColor.Fprint(w, hit.Path)
	fmt.Fprint(w, "(")
	collectorColor.Fprint(w, hit.Collector)
	fmt.Fprintln(w, ")")

	for _, l := range hit.Lines {
		positionColor.Fprintf(w, "%s", l.Position)
		fmt.Fprint(w, ":")
		renderRanges(w, l.Line, l.Ranges)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}

// WriteGrepHit renders a GrepHit in the same "<path>(<collector>)" /
// "<position>:<highlighted line>" shape as WriteHit.
func WriteGrepHit(w io.Writer, hit GrepHit) {
	pathColor.Fprint(w, hit.Path)
	fmt.Fprint(w, "(")
	collectorColor.Fprint(w, hit.Collector)
	fmt.Fprintln(w, ")")

	for _, l := range hit.Lines {
		positionColor.Fprintf(w, "%s", l.Position)
		fmt.Fprint(w, ":")
		renderRanges(w, l.Line, l.Ranges)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}
