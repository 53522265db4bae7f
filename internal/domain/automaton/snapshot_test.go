package automaton

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Snapshot: serialize / deserialize
// Expectation: a post-build snapshot restores a matching automaton without
// rebuilding; malformed snapshots are rejected with ErrMalformedSnapshot.
// =============================================================================

func ptr[T any](v T) *T { return &v }

func TestSnapshot_RoundTripMatchesIdentically(t *testing.T) {
	a := built(t, "he", "she", "his", "hers", "", "s")
	snap := a.Serialize()
	assert.True(t, snap.UpToDate)
	assert.Equal(t, 6, snap.Size)

	b, err := Deserialize(snap)
	require.NoError(t, err)
	assert.True(t, b.UpToDate())
	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, a.NodeCount(), b.NodeCount())

	for _, text := range []string{"ushers", "this is his hershey", "", "sssshe"} {
		want, err := a.Match(text)
		require.NoError(t, err)
		got, err := b.Match(text)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
	assert.Equal(t, snap, b.Serialize())
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	a := built(t, "abc", "bc", "c")
	data, err := json.Marshal(a.Serialize())
	require.NoError(t, err)

	var snap Snapshot[string]
	require.NoError(t, json.Unmarshal(data, &snap))
	b, err := Deserialize(&snap)
	require.NoError(t, err)

	ms, err := b.Match("abcabc")
	require.NoError(t, err)
	assert.Len(t, ms, 6)
}

func TestSnapshot_ParentsRebuilt(t *testing.T) {
	b, err := Deserialize(built(t, "xyz").Serialize())
	require.NoError(t, err)
	idx := mustLocate(t, b, "xyz")
	assert.Equal(t, mustLocate(t, b, "xy"), b.nodes[idx].parent)
	assert.Equal(t, none, b.nodes[rootIndex].parent)
}

func TestSnapshot_CompactsAfterDelete(t *testing.T) {
	a := built(t, "abc", "xyz")
	a.Delete("abc")
	require.NoError(t, a.Build(t.Context()))

	snap := a.Serialize()
	assert.Len(t, snap.Nodes, 4)
	b, err := Deserialize(snap)
	require.NoError(t, err)
	ms, err := b.Match("abcxyz")
	require.NoError(t, err)
	assert.Equal(t, []span{{"xyz", 3, 6}}, spans(ms))
}

func TestSnapshot_NotBuiltOmitsLinks(t *testing.T) {
	a := newStore("ab")
	snap := a.Serialize()
	assert.False(t, snap.UpToDate)
	for _, n := range snap.Nodes {
		assert.Nil(t, n.Suffix)
		assert.Nil(t, n.Output)
	}

	b, err := Deserialize(snap)
	require.NoError(t, err)
	_, err = b.Match("ab")
	assert.ErrorIs(t, err, ErrNotBuilt)
	require.NoError(t, b.Build(t.Context()))
	ms, err := b.Match("ab")
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestDeserialize_Malformed(t *testing.T) {
	// base: root -a-> 1 -b-> 3, root -b-> 2; values on "b" and "ab".
	base := func() *Snapshot[string] {
		return built(t, "ab", "b").Serialize()
	}

	cases := []struct {
		name   string
		mutate func(s *Snapshot[string]) *Snapshot[string]
	}{
		{"nil", func(*Snapshot[string]) *Snapshot[string] { return nil }},
		{"no nodes", func(s *Snapshot[string]) *Snapshot[string] { s.Nodes = nil; return s }},
		{"root depth", func(s *Snapshot[string]) *Snapshot[string] { s.Nodes[0].Depth = 1; return s }},
		{"edge out of range", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[1].Edges[0].Child = 9
			return s
		}},
		{"edge to root", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[1].Edges[0].Child = 0
			return s
		}},
		{"two parents", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[1].Edges = append(s.Nodes[1].Edges, Edge{Symbol: 'z', Child: 2})
			return s
		}},
		{"duplicate edge", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[0].Edges[1].Symbol = 'a'
			return s
		}},
		{"depth mismatch", func(s *Snapshot[string]) *Snapshot[string] { s.Nodes[3].Depth = 5; return s }},
		{"unreachable", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes = append(s.Nodes, SnapshotNode[string]{Depth: 1, Suffix: ptr[int32](0)})
			return s
		}},
		{"size mismatch", func(s *Snapshot[string]) *Snapshot[string] { s.Size = 7; return s }},
		{"missing suffix", func(s *Snapshot[string]) *Snapshot[string] { s.Nodes[3].Suffix = nil; return s }},
		{"suffix not shallower", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[2].Suffix = ptr[int32](1)
			return s
		}},
		{"suffix out of range", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[3].Suffix = ptr[int32](-4)
			return s
		}},
		{"output without value", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[3].Output = ptr[int32](1)
			return s
		}},
		{"root links", func(s *Snapshot[string]) *Snapshot[string] {
			s.Nodes[0].Suffix = ptr[int32](0)
			return s
		}},
	}

	require.NotPanics(t, func() {
		_, err := Deserialize(base())
		require.NoError(t, err)
	})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deserialize(tc.mutate(base()))
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}
