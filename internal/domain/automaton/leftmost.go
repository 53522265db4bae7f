package automaton

import (
	"cmp"
	"slices"
)

// MatchLeftmostLongest returns a non-overlapping cover of text: scanning left
// to right, it keeps the longest occurrence at the earliest free position.
func (a *Automaton[V]) MatchLeftmostLongest(text string) ([]Match[V], error) {
	all, err := a.Match(text)
	if err != nil {
		return nil, err
	}
	return LeftmostLongest(all), nil
}

// LeftmostLongest reduces matches to a leftmost-longest cover ordered by
// Start. The input slice is not modified.
func LeftmostLongest[V any](matches []Match[V]) []Match[V] {
	sorted := slices.Clone(matches)
	slices.SortStableFunc(sorted, func(x, y Match[V]) int {
		if c := cmp.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return cmp.Compare(y.Length, x.Length)
	})

	var kept []Match[V]
	nextPossible := 0
	for _, m := range sorted {
		if m.Start >= nextPossible {
			kept = append(kept, m)
			nextPossible = m.End
		}
	}
	return kept
}
