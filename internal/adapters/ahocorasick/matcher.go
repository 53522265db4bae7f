// Package ahocorasick provides reference multi-pattern matchers backed by
// third-party Aho-Corasick libraries. They are used to cross-check the
// automaton in `acmatch verify` and in tests; both report byte offsets so
// their output compares directly with automaton matches.
package ahocorasick

import (
	"cmp"
	"slices"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/acmatch/internal/ports"
)

// Petar wraps the petar-dambovaliev/aho-corasick library. It keeps two
// automata: a standard one for overlapping iteration and a leftmost-longest
// one for non-overlapping resolution.
type Petar struct {
	overlapping aho.AhoCorasick
	leftmost    aho.AhoCorasick
	patterns    []string
}

var _ ports.LeftmostMatcher = (*Petar)(nil)

// NewPetar builds both automata from patterns. Empty and duplicate
// patterns are dropped.
func NewPetar(patterns []string) *Petar {
	p := cleanPatterns(patterns)
	overlapping := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	leftmost := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA:       true,
		MatchKind: aho.LeftMostLongestMatch,
	})
	return &Petar{
		overlapping: overlapping.Build(p),
		leftmost:    leftmost.Build(p),
		patterns:    p,
	}
}

// Name implements ports.ReferenceMatcher.
func (m *Petar) Name() string { return "petar-dambovaliev/aho-corasick" }

// Overlapping returns every occurrence in text.
func (m *Petar) Overlapping(text []byte) []ports.Occurrence {
	if len(m.patterns) == 0 {
		return nil
	}
	iter := m.overlapping.IterOverlappingByte(text)
	var out []ports.Occurrence
	for next := iter.Next(); next != nil; next = iter.Next() {
		match := *next
		out = append(out, ports.Occurrence{
			Pattern: m.patterns[match.Pattern()],
			Start:   match.Start(),
			End:     match.End(),
		})
	}
	return out
}

// LeftmostLongest returns the leftmost-longest non-overlapping occurrences
// in text order.
//
// FindAll in leftmost-longest mode still reports occurrences that start
// inside an earlier one, so the result is swept down to a non-overlapping
// run: among occurrences sorted by start, then length descending, one is
// kept only if it starts at or after the end of the last kept one.
func (m *Petar) LeftmostLongest(text []byte) []ports.Occurrence {
	if len(m.patterns) == 0 {
		return nil
	}
	matches := m.leftmost.FindAll(string(text))
	if len(matches) == 0 {
		return nil
	}
	all := make([]ports.Occurrence, len(matches))
	for i := range matches {
		all[i] = ports.Occurrence{
			Pattern: m.patterns[matches[i].Pattern()],
			Start:   matches[i].Start(),
			End:     matches[i].End(),
		}
	}
	slices.SortStableFunc(all, func(a, b ports.Occurrence) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})

	var out []ports.Occurrence
	lastEnd := 0
	for _, o := range all {
		if o.Start < lastEnd {
			continue
		}
		out = append(out, o)
		lastEnd = o.End
	}
	return out
}

// PatternCount returns the number of distinct patterns in the automata.
func (m *Petar) PatternCount() int {
	return len(m.patterns)
}

// cleanPatterns drops empty and duplicate patterns, keeping first
// occurrence order.
func cleanPatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
