package app

import (
	"cmp"
	"slices"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	"github.com/corey/acmatch/internal/ports"
)

// VerifyReport compares the automaton with one reference engine.
type VerifyReport struct {
	Engine  string
	Mode    string             // "overlapping" or "leftmost-longest"
	Matches int                // automaton match count
	Missing []ports.Occurrence // reported by the engine, not by the automaton
	Extra   []ports.Occurrence // reported by the automaton, not by the engine
}

// OK reports whether both sides found the same occurrences.
func (r VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

// Verify cross-checks matching of text against every reference engine.
// Occurrences are compared by pattern and span; values play no part.
func Verify(au *Automaton, text []byte) ([]VerifyReport, error) {
	var pats []string
	for p := range au.Find("") {
		pats = append(pats, p)
	}

	overlapping, err := au.Match(string(text))
	if err != nil {
		return nil, err
	}
	leftmost, err := au.MatchLeftmostLongest(string(text))
	if err != nil {
		return nil, err
	}
	mine := occurrences(text, overlapping)

	petar := ahocorasick.NewPetar(pats)
	engines := []ports.ReferenceMatcher{petar, ahocorasick.NewBobu(pats)}

	reports := make([]VerifyReport, 0, len(engines)+1)
	for _, e := range engines {
		r := VerifyReport{Engine: e.Name(), Mode: "overlapping", Matches: len(mine)}
		r.Missing, r.Extra = diff(e.Overlapping(text), mine)
		reports = append(reports, r)
	}

	var lm ports.LeftmostMatcher = petar
	r := VerifyReport{Engine: lm.Name(), Mode: "leftmost-longest", Matches: len(leftmost)}
	r.Missing, r.Extra = diff(lm.LeftmostLongest(text), occurrences(text, leftmost))
	reports = append(reports, r)
	return reports, nil
}

func occurrences(text []byte, ms []Match) []ports.Occurrence {
	out := make([]ports.Occurrence, len(ms))
	for i, m := range ms {
		out[i] = ports.Occurrence{Pattern: string(text[m.Start:m.End]), Start: m.Start, End: m.End}
	}
	return out
}

// diff returns the multiset differences want−got and got−want, sorted by
// span.
func diff(want, got []ports.Occurrence) (missing, extra []ports.Occurrence) {
	counts := make(map[ports.Occurrence]int, len(want))
	for _, o := range want {
		counts[o]++
	}
	for _, o := range got {
		if counts[o] > 0 {
			counts[o]--
			continue
		}
		extra = append(extra, o)
	}
	for o, n := range counts {
		for range n {
			missing = append(missing, o)
		}
	}
	sortOccurrences(missing)
	sortOccurrences(extra)
	return missing, extra
}

func sortOccurrences(occ []ports.Occurrence) {
	slices.SortFunc(occ, func(a, b ports.Occurrence) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End), cmp.Compare(a.Pattern, b.Pattern))
	})
}
