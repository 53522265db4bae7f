package ahocorasick

import (
	bobu "github.com/BobuSumisu/aho-corasick"

	"github.com/corey/acmatch/internal/ports"
)

// Bobu wraps the BobuSumisu/aho-corasick double-array trie.
type Bobu struct {
	trie     *bobu.Trie
	patterns int
}

var _ ports.ReferenceMatcher = (*Bobu)(nil)

// NewBobu builds a trie from patterns. Empty and duplicate patterns are
// dropped.
func NewBobu(patterns []string) *Bobu {
	p := cleanPatterns(patterns)
	return &Bobu{
		trie:     bobu.NewTrieBuilder().AddStrings(p).Build(),
		patterns: len(p),
	}
}

// Name implements ports.ReferenceMatcher.
func (m *Bobu) Name() string { return "BobuSumisu/aho-corasick" }

// Overlapping returns every occurrence in text.
func (m *Bobu) Overlapping(text []byte) []ports.Occurrence {
	if m.patterns == 0 {
		return nil
	}
	matches := m.trie.Match(text)
	if len(matches) == 0 {
		return nil
	}
	out := make([]ports.Occurrence, len(matches))
	for i, match := range matches {
		start := int(match.Pos())
		word := match.Match()
		out[i] = ports.Occurrence{
			Pattern: string(word),
			Start:   start,
			End:     start + len(word),
		}
	}
	return out
}
