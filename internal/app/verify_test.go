package app

import (
	"testing"

	"github.com/corey/acmatch/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_Agrees(t *testing.T) {
	a := newTestApp(t)
	au := compiledSet(t, a, "i\nin\ntin\nsting\n")

	reports, err := Verify(au, []byte("sting is tinsel in tins"))
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.True(t, r.OK(), "%s %s: missing=%v extra=%v", r.Engine, r.Mode, r.Missing, r.Extra)
		assert.Positive(t, r.Matches)
	}
	assert.Equal(t, "leftmost-longest", reports[2].Mode)
}

func TestVerify_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		patterns string
		text     string
		leftmost int
	}{
		{"sting", "i\nin\ntin\nsting\n", "sting", 1},
		{"string", "i\nin\ntin\nsting\n", "string", 1},
		{"quick brown fox",
			"the\nthe quick\nthe quick brown\nquick brown fox\nbrown fox\nfox\nlazy dog\ndog\n",
			"the quick brown fox jumped over the lazy dog", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			au := compiledSet(t, a, tt.patterns)

			reports, err := Verify(au, []byte(tt.text))
			require.NoError(t, err)
			require.Len(t, reports, 3)
			for _, r := range reports {
				assert.True(t, r.OK(), "%s %s: missing=%v extra=%v", r.Engine, r.Mode, r.Missing, r.Extra)
			}
			assert.Equal(t, tt.leftmost, reports[2].Matches)
		})
	}
}

func TestVerify_NotBuilt(t *testing.T) {
	a := newTestApp(t)
	au := compiledSet(t, a, "ab\n")
	au.Set("b", "b")
	_, err := Verify(au, []byte("ab"))
	assert.Error(t, err)
}

func TestDiff_Multiset(t *testing.T) {
	o := func(p string, s int) ports.Occurrence { return ports.Occurrence{Pattern: p, Start: s, End: s + len(p)} }
	missing, extra := diff(
		[]ports.Occurrence{o("a", 0), o("a", 0), o("b", 1)},
		[]ports.Occurrence{o("a", 0), o("c", 2)},
	)
	assert.Equal(t, []ports.Occurrence{o("a", 0), o("b", 1)}, missing)
	assert.Equal(t, []ports.Occurrence{o("c", 2)}, extra)

	missing, extra = diff(nil, nil)
	assert.Empty(t, missing)
	assert.Empty(t, extra)
}
