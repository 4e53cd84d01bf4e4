// Package report aggregates the outcome of a catalog resolution run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Group holds the result counts for one named collection of tracks.
type Group struct {
	Name    string
	Total   int
	Matched int
	Skipped int

	// Unmatched lists a short description of each track left unresolved.
	Unmatched []string
}

// Report collects per-group results across a resolution run.
type Report struct {
	Groups []Group
}

func (r *Report) Add(g Group) {
	r.Groups = append(r.Groups, g)
}

// Totals returns the summed counts across all groups.
func (r *Report) Totals() (total, matched, skipped, unmatched int) {
	for _, g := range r.Groups {
		total += g.Total
		matched += g.Matched
		skipped += g.Skipped
		unmatched += len(g.Unmatched)
	}
	return total, matched, skipped, unmatched
}

// Render writes a human-readable summary, one line per group, followed by
// the list of unresolved tracks.
func (r *Report) Render(w io.Writer) {
	nameWidth := 0
	for _, g := range r.Groups {
		if len(g.Name) > nameWidth {
			nameWidth = len(g.Name)
		}
	}

	for _, g := range r.Groups {
		fmt.Fprintf(w, "%-*s  %s matched, %s skipped, %s unmatched of %s\n",
			nameWidth, g.Name,
			humanize.Comma(int64(g.Matched)),
			humanize.Comma(int64(g.Skipped)),
			humanize.Comma(int64(len(g.Unmatched))),
			humanize.Comma(int64(g.Total)))
	}

	total, matched, skipped, unmatched := r.Totals()
	fmt.Fprintln(w, strings.Repeat("-", nameWidth+2))
	fmt.Fprintf(w, "%-*s  %s matched, %s skipped, %s unmatched of %s\n",
		nameWidth, "total",
		humanize.Comma(int64(matched)),
		humanize.Comma(int64(skipped)),
		humanize.Comma(int64(unmatched)),
		humanize.Comma(int64(total)))

	if unmatched > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "unmatched tracks:")
		for _, g := range r.Groups {
			for _, desc := range g.Unmatched {
				fmt.Fprintf(w, "  [%s] %s\n", g.Name, desc)
			}
		}
	}
}
