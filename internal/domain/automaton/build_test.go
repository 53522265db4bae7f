package automaton

import (
	"context"
	"testing"
	"time"

	"github.com/corey/acmatch/internal/domain/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Builder: BFS suffix/output links, idempotence, cooperative slicing
// Expectation: links follow the classical construction, and sliced, resumed
// or restarted builds all converge on the same automaton.
// =============================================================================

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func mustLocate(t *testing.T, a *Automaton[string], p string) int32 {
	t.Helper()
	idx, ok := a.locate(p)
	require.True(t, ok, "pattern path %q", p)
	return idx
}

func TestBuild_SuffixAndOutputLinks(t *testing.T) {
	a := newStore("he", "she", "his", "hers")
	require.NoError(t, a.Build(t.Context()))

	cases := []struct {
		node, suffix string
		output       string // "" means no output link
	}{
		{"h", "", ""},
		{"s", "", ""},
		{"sh", "h", ""},
		{"she", "he", "he"},
		{"hi", "", ""},
		{"his", "s", ""},
		{"her", "", ""},
		{"hers", "s", ""},
	}
	for _, tc := range cases {
		n := a.nodes[mustLocate(t, a, tc.node)]
		assert.Equal(t, mustLocate(t, a, tc.suffix), n.suffix, "suffix of %q", tc.node)
		if tc.output == "" {
			assert.Equal(t, none, n.output, "output of %q", tc.node)
		} else {
			assert.Equal(t, mustLocate(t, a, tc.output), n.output, "output of %q", tc.node)
		}
	}

	root := a.nodes[rootIndex]
	assert.Equal(t, none, root.suffix)
	assert.Equal(t, none, root.output)
}

func TestBuild_OutputLinkSkipsValuelessSuffix(t *testing.T) {
	// "abcd" -> suffix "bcd" (no value) -> its output is "cd".
	a := newStore("abcd", "bcd", "cd")
	a.Delete("bcd")
	a.Set("bcdx", "bcdx") // keep the "bcd" path alive without a value
	require.NoError(t, a.Build(t.Context()))

	abcd := a.nodes[mustLocate(t, a, "abcd")]
	assert.Equal(t, mustLocate(t, a, "bcd"), abcd.suffix)
	assert.Equal(t, mustLocate(t, a, "cd"), abcd.output)
}

func TestBuild_LinksPointShallower(t *testing.T) {
	a := newStore("aaa", "aab", "abab", "baba", "b")
	require.NoError(t, a.Build(t.Context()))

	for i := range a.nodes {
		n := a.nodes[i]
		if int32(i) == rootIndex {
			continue
		}
		assert.Less(t, a.nodes[n.suffix].depth, n.depth)
		if n.output != none {
			assert.Less(t, a.nodes[n.output].depth, n.depth)
			assert.True(t, a.nodes[n.output].hasValue)
		}
	}
}

func TestBuild_EmptyPatternNeverOutput(t *testing.T) {
	a := newStore("", "ab")
	require.NoError(t, a.Build(t.Context()))
	assert.Equal(t, none, a.nodes[mustLocate(t, a, "a")].output)
	assert.Equal(t, none, a.nodes[mustLocate(t, a, "ab")].output)
}

func TestBuild_Idempotent(t *testing.T) {
	a := newStore("i", "in", "tin", "sting")
	require.NoError(t, a.Build(t.Context()))
	first := a.Serialize()

	var st scheduler.Stats
	require.NoError(t, a.Build(t.Context(), scheduler.WithStats(&st)))
	assert.Zero(t, st.Units, "second build does no work")
	assert.Equal(t, first, a.Serialize())
}

func TestBuild_OneUnitPerNode(t *testing.T) {
	a := newStore("abc", "abd", "x")
	var st scheduler.Stats
	require.NoError(t, a.Build(t.Context(), scheduler.WithStats(&st)))
	assert.Equal(t, a.NodeCount(), st.Units)
	assert.Equal(t, 1, st.Slices)
}

func TestBuild_CooperativeMatchesSync(t *testing.T) {
	patterns := []string{"the", "then", "hen", "he", "en", "n", "quick", "ick", "k"}

	sync := newStore(patterns...)
	require.NoError(t, sync.Build(t.Context()))

	coop := newStore(patterns...)
	yields := 0
	var st scheduler.Stats
	err := coop.Build(t.Context(),
		scheduler.WithCooperative(3*time.Millisecond),
		scheduler.WithClock(fakeClock(time.Millisecond)),
		scheduler.WithYielder(scheduler.YieldFunc(func(ctx context.Context) error {
			yields++
			return ctx.Err()
		})),
		scheduler.WithStats(&st),
	)
	require.NoError(t, err)

	assert.True(t, coop.UpToDate())
	assert.Greater(t, st.Slices, 1)
	assert.Equal(t, st.Slices-1, yields)
	assert.Equal(t, sync.Serialize(), coop.Serialize())
}

func TestBuild_CancelledLeavesNotBuilt(t *testing.T) {
	a := newStore("alpha", "beta", "gamma", "delta")
	ctx, cancel := context.WithCancel(t.Context())

	err := a.Build(ctx,
		scheduler.WithCooperative(time.Millisecond),
		scheduler.WithClock(fakeClock(time.Millisecond)),
		scheduler.WithYielder(scheduler.YieldFunc(func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		})),
	)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.UpToDate())

	_, err = a.Match("alphabet")
	assert.ErrorIs(t, err, ErrNotBuilt)

	// Retry from scratch converges on a clean build.
	require.NoError(t, a.Build(t.Context()))
	fresh := newStore("alpha", "beta", "gamma", "delta")
	require.NoError(t, fresh.Build(t.Context()))
	assert.Equal(t, fresh.Serialize(), a.Serialize())
}

func TestBuild_MutationDuringSuspendedBuild(t *testing.T) {
	a := newStore("one", "two", "three")
	mutated := false

	err := a.Build(t.Context(),
		scheduler.WithCooperative(time.Millisecond),
		scheduler.WithClock(fakeClock(time.Millisecond)),
		scheduler.WithYielder(scheduler.YieldFunc(func(ctx context.Context) error {
			if !mutated {
				mutated = true
				a.Set("four", "four")
			}
			return nil
		})),
	)
	require.ErrorIs(t, err, ErrModifiedDuringBuild)
	assert.False(t, a.UpToDate())

	require.NoError(t, a.Build(t.Context()))
	ms, err := a.Match("fourtwo")
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}

func TestBuildAsync(t *testing.T) {
	a := newStore("async", "sync", "nc")
	job := a.BuildAsync(t.Context(), scheduler.WithCooperative(time.Microsecond))
	require.NoError(t, job.Wait())
	assert.True(t, a.UpToDate())

	again := a.BuildAsync(t.Context())
	select {
	case <-again.Done():
	default:
		t.Fatal("build of an up-to-date automaton should complete immediately")
	}
	assert.NoError(t, again.Wait())
}

func TestSetAll_CooperativeMatchesSync(t *testing.T) {
	entries := []Entry[int]{
		{Pattern: "red", Value: 1},
		{Pattern: "green", Value: 2},
		{Pattern: "blue", Value: 3},
		{Pattern: "red", Value: 4},
	}

	sync := New[int]()
	require.NoError(t, sync.SetAll(t.Context(), entries))

	coop := New[int]()
	var st scheduler.Stats
	require.NoError(t, coop.SetAll(t.Context(), entries,
		scheduler.WithCooperative(2*time.Millisecond),
		scheduler.WithClock(fakeClock(time.Millisecond)),
		scheduler.WithStats(&st),
	))
	assert.Equal(t, 4, st.Units)
	assert.Equal(t, 2, st.Slices)

	assert.Equal(t, 3, coop.Len())
	v, _ := coop.Get("red")
	assert.Equal(t, 4, v, "later entries win")
	assert.Equal(t, sync.Serialize(), coop.Serialize())
}

func TestSetAll_Empty(t *testing.T) {
	a := New[int]()
	require.NoError(t, a.SetAll(t.Context(), nil))
	assert.Zero(t, a.Len())
}

func TestSetAllAsync_ThenBuild(t *testing.T) {
	a := New[string]()
	entries := []Entry[string]{{Pattern: "x", Value: "x"}, {Pattern: "xy", Value: "xy"}}
	require.NoError(t, a.SetAllAsync(t.Context(), entries, scheduler.WithCooperative(0)).Wait())
	require.NoError(t, a.BuildAsync(t.Context()).Wait())

	ms, err := a.Match("xy")
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}
