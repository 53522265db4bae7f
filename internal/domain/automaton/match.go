package automaton

import (
	"context"
	"errors"
	"io"
	"iter"
)

// Match is one pattern occurrence. Start is inclusive, End exclusive, and
// Length == End - Start.
type Match[V any] struct {
	Value  V   `json:"value"`
	Start  int `json:"start"`
	End    int `json:"end"`
	Length int `json:"length"`
}

// Match returns every occurrence of every pattern in text, overlapping ones
// included, ordered by increasing End and, within one End, longest first.
func (a *Automaton[V]) Match(text string) ([]Match[V], error) {
	s, err := a.NewScanner()
	if err != nil {
		return nil, err
	}
	var out []Match[V]
	scan(s, text, func(m Match[V]) bool {
		out = append(out, m)
		return true
	})
	return out, nil
}

// All is the lazy form of Match. The automaton must stay unmutated while the
// sequence is consumed; a sequence ranged over after a mutation yields
// nothing.
func (a *Automaton[V]) All(text string) (iter.Seq[Match[V]], error) {
	if !a.upToDate {
		return nil, ErrNotBuilt
	}
	gen := a.generation
	return func(yield func(Match[V]) bool) {
		s := &Scanner[V]{a: a, generation: gen}
		if s.check() != nil {
			return
		}
		scan(s, text, yield)
	}, nil
}

// Scanner matches a text delivered in chunks. It carries the automaton state
// and the absolute offset across Feed calls, so occurrences spanning a chunk
// boundary are reported with offsets relative to the whole stream.
type Scanner[V any] struct {
	a          *Automaton[V]
	generation uint64

	state  int32
	depth  int
	start  int
	offset int
}

// NewScanner returns a scanner positioned at offset 0.
func (a *Automaton[V]) NewScanner() (*Scanner[V], error) {
	if !a.upToDate {
		return nil, ErrNotBuilt
	}
	return &Scanner[V]{a: a, generation: a.generation}, nil
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner[V]) Offset() int { return s.offset }

// Reset rewinds the scanner to offset 0.
func (s *Scanner[V]) Reset() {
	s.state, s.depth, s.start, s.offset = rootIndex, 0, 0, 0
}

// Feed scans chunk and calls emit for every occurrence ending inside it.
// It fails with ErrNotBuilt if the automaton was mutated after the scanner
// was created.
func (s *Scanner[V]) Feed(chunk []byte, emit func(Match[V])) error {
	if err := s.check(); err != nil {
		return err
	}
	scan(s, chunk, func(m Match[V]) bool {
		emit(m)
		return true
	})
	return nil
}

// FeedString is Feed for string chunks.
func (s *Scanner[V]) FeedString(chunk string, emit func(Match[V])) error {
	if err := s.check(); err != nil {
		return err
	}
	scan(s, chunk, func(m Match[V]) bool {
		emit(m)
		return true
	})
	return nil
}

func (s *Scanner[V]) check() error {
	if !s.a.upToDate || s.a.generation != s.generation {
		return ErrNotBuilt
	}
	return nil
}

// readChunk is the read size used by MatchReader.
const readChunk = 32 * 1024

// MatchReader streams r through a scanner and calls emit for every
// occurrence. The context is checked between reads; an error returned by
// emit stops the scan and is returned as is.
func (a *Automaton[V]) MatchReader(ctx context.Context, r io.Reader, emit func(Match[V]) error) error {
	s, err := a.NewScanner()
	if err != nil {
		return err
	}

	buf := make([]byte, readChunk)
	var emitErr error
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			scan(s, buf[:n], func(m Match[V]) bool {
				emitErr = emit(m)
				return emitErr == nil
			})
			if emitErr != nil {
				return emitErr
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// scan feeds every byte of text to s and stops early when emit returns false.
func scan[V any, T ~string | ~[]byte](s *Scanner[V], text T, emit func(Match[V]) bool) bool {
	for i := 0; i < len(text); i++ {
		if !s.step(text[i], emit) {
			return false
		}
	}
	return true
}

// step advances the scanner by one symbol.
//
// s.start is the offset where the currently matched suffix begins, so the
// invariant s.start == s.offset - s.depth holds between steps. Falling back
// along a suffix link shortens the match window by the depth difference;
// every output-link hop shortens it again by that hop's depth difference.
func (s *Scanner[V]) step(sym byte, emit func(Match[V]) bool) bool {
	nodes := s.a.nodes
	end := s.offset + 1
	s.offset = end

	for s.state != rootIndex {
		if _, ok := nodes[s.state].children[sym]; ok {
			break
		}
		s.state = nodes[s.state].suffix
		d := int(nodes[s.state].depth)
		s.start += s.depth - d
		s.depth = d
	}

	next, ok := nodes[s.state].children[sym]
	if !ok {
		s.start++
		return true
	}
	s.state = next
	s.depth++

	n := &nodes[next]
	if n.hasValue {
		if !emit(Match[V]{Value: n.value, Start: s.start, End: end, Length: end - s.start}) {
			return false
		}
	}

	outStart, outDepth := s.start, s.depth
	for out := n.output; out != none; {
		o := &nodes[out]
		d := int(o.depth)
		outStart += outDepth - d
		outDepth = d
		if !emit(Match[V]{Value: o.value, Start: outStart, End: end, Length: end - outStart}) {
			return false
		}
		out = o.output
	}
	return true
}
