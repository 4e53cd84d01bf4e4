package report

import (
	"strings"
	"testing"
)

func sampleReport() *Report {
	r := &Report{}
	r.Add(Group{Name: "OK Computer", Total: 12, Matched: 11, Unmatched: []string{"Radiohead - Fitter Happier"}})
	r.Add(Group{Name: "Absolution", Total: 14, Matched: 10, Skipped: 4})
	return r
}

func TestTotals(t *testing.T) {
	total, matched, skipped, unmatched := sampleReport().Totals()
	if total != 26 || matched != 21 || skipped != 4 || unmatched != 1 {
		t.Errorf("Totals() = %d, %d, %d, %d", total, matched, skipped, unmatched)
	}
}

func TestRender(t *testing.T) {
	var sb strings.Builder
	sampleReport().Render(&sb)
	out := sb.String()

	for _, want := range []string{
		"OK Computer",
		"11 matched",
		"4 skipped",
		"21 matched, 4 skipped, 1 unmatched of 26",
		"unmatched tracks:",
		"[OK Computer] Radiohead - Fitter Happier",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderNoUnmatched(t *testing.T) {
	r := &Report{}
	r.Add(Group{Name: "X", Total: 2, Matched: 2})

	var sb strings.Builder
	r.Render(&sb)
	if strings.Contains(sb.String(), "unmatched tracks:") {
		t.Error("Render() printed the unmatched section with nothing unmatched")
	}
}
