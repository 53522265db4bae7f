package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compiled(t *testing.T, pairs ...string) *automaton.Snapshot[string] {
	t.Helper()
	a := automaton.New[string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	require.NoError(t, a.Build(t.Context()))
	return a.Serialize()
}

func TestGenerate_Basic(t *testing.T) {
	snap := compiled(t,
		"he", "pronoun",
		"she", "pronoun",
		"his", "pronoun",
		"hers", "possessive",
	)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	data := Generate("english", "words.txt", snap, at)
	assert.Equal(t, "english", data.Name)
	assert.Equal(t, "words.txt", data.Source)
	assert.Equal(t, 4, data.Patterns)
	assert.Equal(t, len(snap.Nodes), data.Nodes)
	assert.Equal(t, 4, data.MaxDepth)
	assert.True(t, data.UpToDate)
	assert.Equal(t, []string{"pronoun", "possessive"}, data.TopValues)
	assert.Equal(t, time.UTC, data.CompiledAt.Location())
}

func TestGenerate_TopValuesLimit(t *testing.T) {
	snap := compiled(t,
		"a", "x", "b", "x", "c", "y", "d", "y", "e", "w", "f", "z",
	)
	data := Generate("s", "", snap, time.Now())
	assert.Equal(t, []string{"x", "y", "w"}, data.TopValues)
}

func TestGenerate_NilSnapshot(t *testing.T) {
	data := Generate("empty", "", nil, time.Now())
	assert.Zero(t, data.Patterns)
	assert.Nil(t, data.TopValues)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "set.json")

	data := Generate("set", "p.txt", compiled(t, "ab", "v"), time.Unix(1700000000, 0))
	require.NoError(t, WriteJSON(path, data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "set", m["name"])
	assert.Equal(t, float64(1), m["patterns"])
	assert.Equal(t, true, m["up_to_date"])

	back, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, data.Name, back.Name)
	assert.Equal(t, data.Nodes, back.Nodes)
	assert.True(t, data.CompiledAt.Equal(back.CompiledAt))
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadJSON(filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = ReadJSON(bad)
	assert.ErrorContains(t, err, "decode status")
}
