package automaton

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Leftmost-longest resolver
// Expectation: greedy non-overlapping cover, longest match at the earliest
// free position, ordered by start.
// =============================================================================

func TestLeftmostLongest_QuickBrownFox(t *testing.T) {
	a := built(t,
		"the", "the quick", "the quick brown", "quick brown fox",
		"brown fox", "fox", "lazy dog", "dog",
	)
	ms, err := a.MatchLeftmostLongest("the quick brown fox jumped over the lazy dog")
	require.NoError(t, err)
	assert.Equal(t, []span{
		{"the quick brown", 0, 15},
		{"fox", 16, 19},
		{"the", 32, 35},
		{"lazy dog", 36, 44},
	}, spans(ms))
}

func TestLeftmostLongest_DoesNotMutateInput(t *testing.T) {
	in := []Match[int]{
		{Value: 1, Start: 2, End: 3, Length: 1},
		{Value: 2, Start: 0, End: 1, Length: 1},
	}
	out := LeftmostLongest(in)
	assert.Equal(t, 1, in[0].Value)
	assert.Equal(t, []int{2, 1}, []int{out[0].Value, out[1].Value})
}

func TestLeftmostLongest_Empty(t *testing.T) {
	assert.Empty(t, LeftmostLongest[string](nil))
}

func TestLeftmostLongest_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	gen := func(maxLen int) string {
		var sb strings.Builder
		for range rng.IntN(maxLen) + 1 {
			sb.WriteByte("ab"[rng.IntN(2)])
		}
		return sb.String()
	}

	for round := range 200 {
		patterns := make([]string, rng.IntN(6)+1)
		for i := range patterns {
			patterns[i] = gen(4)
		}
		text := gen(30)
		a := built(t, patterns...)

		all, err := a.Match(text)
		require.NoError(t, err)
		kept, err := a.MatchLeftmostLongest(text)
		require.NoError(t, err)

		prevEnd := 0
		for _, k := range kept {
			require.GreaterOrEqual(t, k.Start, prevEnd, "round %d: overlapping or unordered", round)
			for _, m := range all {
				// nothing usable was skipped in the gap before k
				require.False(t, m.Start >= prevEnd && m.Start < k.Start,
					"round %d: %v starts in gap before %v", round, m, k)
				// k is the longest at its start
				if m.Start == k.Start {
					require.LessOrEqual(t, m.Length, k.Length, "round %d", round)
				}
			}
			prevEnd = k.End
		}
		for _, m := range all {
			require.False(t, m.Start >= prevEnd, "round %d: %v after last kept match", round, m)
		}
	}
}
