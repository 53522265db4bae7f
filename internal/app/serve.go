package app

import (
	"errors"

	"github.com/corey/acmatch/internal/adapters/socket"
)

// errNotServing is returned before the first compile completes.
var errNotServing = errors.New("no automaton in service yet")

// LiveBackend answers socket requests from a watched set.
type LiveBackend struct {
	Name string
	Live *Live
}

var _ socket.Backend = LiveBackend{}

// Match scans text with the automaton currently in service.
func (b LiveBackend) Match(text []byte, leftmost, decode bool) ([]socket.MatchHit, string, error) {
	au := b.Live.Current()
	if au == nil {
		return nil, "", errNotServing
	}
	ms, charset, err := ScanBytes(au, text, ScanOptions{Leftmost: leftmost, Decode: decode})
	if err != nil {
		return nil, charset, err
	}
	hits := make([]socket.MatchHit, len(ms))
	for i, m := range ms {
		hits[i] = socket.MatchHit{Start: m.Start, End: m.End, Value: m.Value}
	}
	return hits, charset, nil
}

// Info describes the set in service.
func (b LiveBackend) Info() (set string, patterns, nodes, reloads int) {
	if au := b.Live.Current(); au != nil {
		patterns, nodes = au.Len(), au.NodeCount()
	}
	return b.Name, patterns, nodes, b.Live.Reloads()
}
