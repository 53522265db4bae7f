// Package automaton implements a multi-pattern Aho-Corasick matcher.
//
// Patterns are byte strings, each bound to a value of type V. They are indexed
// into a trie, Build decorates every trie node with a suffix (failure) link and
// an output link, and Match scans a text once to report every occurrence of
// every pattern, overlapping occurrences included. Offsets are byte offsets:
// for every reported match, text[m.Start:m.End] is the matched pattern.
//
// Nodes live in an arena addressed by int32 indices. Child edges are the only
// ownership relation; parent, suffix and output are plain indices.
//
// An Automaton is not safe for concurrent mutation. Once built and left
// unmutated, any number of goroutines may match against it concurrently.
package automaton

import (
	"errors"
	"iter"
	"slices"
)

var (
	// ErrNotBuilt is returned by matching operations while patterns have been
	// added or removed since the last completed Build.
	ErrNotBuilt = errors.New("automaton has not been built")

	// ErrModifiedDuringBuild is returned by a suspended cooperative build that
	// observes a mutation when it resumes.
	ErrModifiedDuringBuild = errors.New("automaton modified during build")

	// ErrMalformedSnapshot is wrapped by every Deserialize validation failure.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

const (
	none      int32 = -1
	rootIndex int32 = 0
)

type node[V any] struct {
	children map[byte]int32
	value    V
	hasValue bool
	parent   int32
	depth    int32
	suffix   int32
	output   int32
}

// Entry is one pattern/value pair for bulk insertion.
type Entry[V any] struct {
	Pattern string
	Value   V
}

// Automaton is an Aho-Corasick automaton over byte patterns bound to values of type V.
// The zero value is not usable; call New.
type Automaton[V any] struct {
	nodes    []node[V]
	free     []int32
	size     int
	upToDate bool

	// generation increments on every mutation so suspended builds and
	// long-lived scanners can detect that the trie changed under them.
	generation uint64
}

// New returns an empty automaton. It is not up to date until Build runs.
func New[V any]() *Automaton[V] {
	return &Automaton[V]{
		nodes: []node[V]{{parent: none, suffix: none, output: none}},
	}
}

// Len returns the number of stored patterns.
func (a *Automaton[V]) Len() int { return a.size }

// UpToDate reports whether the automaton has been built since the last mutation.
func (a *Automaton[V]) UpToDate() bool { return a.upToDate }

// NodeCount returns the number of live trie nodes, root included.
func (a *Automaton[V]) NodeCount() int { return len(a.nodes) - len(a.free) }

func (a *Automaton[V]) touch() {
	a.upToDate = false
	a.generation++
}

func (a *Automaton[V]) alloc(parent, depth int32) int32 {
	n := node[V]{parent: parent, depth: depth, suffix: none, output: none}
	if k := len(a.free); k > 0 {
		idx := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[idx] = n
		return idx
	}
	a.nodes = append(a.nodes, n)
	return int32(len(a.nodes) - 1)
}

// release returns the subtree rooted at idx to the free list.
func (a *Automaton[V]) release(idx int32) {
	stack := []int32{idx}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range a.nodes[cur].children {
			stack = append(stack, child)
		}
		a.nodes[cur] = node[V]{parent: none, suffix: none, output: none}
		a.free = append(a.free, cur)
	}
}

// locate walks pattern from the root and returns the node it ends on.
func (a *Automaton[V]) locate(pattern string) (int32, bool) {
	cur := rootIndex
	for i := 0; i < len(pattern); i++ {
		next, ok := a.nodes[cur].children[pattern[i]]
		if !ok {
			return none, false
		}
		cur = next
	}
	return cur, true
}

// Set binds pattern to value, overwriting any previous value.
// The empty pattern binds the root: Get("") and Find see it, but matching
// never reports it, since the root is never an output link target.
// Set invalidates the last build.
func (a *Automaton[V]) Set(pattern string, value V) {
	cur := rootIndex
	for i := 0; i < len(pattern); i++ {
		sym := pattern[i]
		next, ok := a.nodes[cur].children[sym]
		if !ok {
			next = a.alloc(cur, a.nodes[cur].depth+1)
			if a.nodes[cur].children == nil {
				a.nodes[cur].children = make(map[byte]int32, 1)
			}
			a.nodes[cur].children[sym] = next
		}
		cur = next
	}

	n := &a.nodes[cur]
	if !n.hasValue {
		a.size++
	}
	n.value = value
	n.hasValue = true
	a.touch()
}

// Get returns the value bound to pattern.
func (a *Automaton[V]) Get(pattern string) (V, bool) {
	idx, ok := a.locate(pattern)
	if !ok || !a.nodes[idx].hasValue {
		var zero V
		return zero, false
	}
	return a.nodes[idx].value, true
}

// Has reports whether pattern is stored.
func (a *Automaton[V]) Has(pattern string) bool {
	idx, ok := a.locate(pattern)
	return ok && a.nodes[idx].hasValue
}

// Delete removes pattern and reports whether it was stored.
//
// When the pattern's terminal node is left childless, the longest trailing run
// of nodes that carry no value and lead only to the deleted pattern is cut
// from its nearest surviving ancestor in one step. Patterns that extend the
// deleted one are kept.
func (a *Automaton[V]) Delete(pattern string) bool {
	cur := rootIndex
	pruneParent, pruneSym := none, byte(0)

	for i := 0; i < len(pattern); i++ {
		sym := pattern[i]
		next, ok := a.nodes[cur].children[sym]
		if !ok {
			return false
		}

		n := &a.nodes[next]
		var prunable bool
		if i == len(pattern)-1 {
			prunable = len(n.children) == 0
		} else {
			prunable = !n.hasValue && len(n.children) == 1
		}
		switch {
		case !prunable:
			pruneParent = none
		case pruneParent == none:
			pruneParent, pruneSym = cur, sym
		}
		cur = next
	}

	n := &a.nodes[cur]
	if !n.hasValue {
		return false
	}
	var zero V
	n.value = zero
	n.hasValue = false
	a.size--

	if pruneParent != none {
		child := a.nodes[pruneParent].children[pruneSym]
		delete(a.nodes[pruneParent].children, pruneSym)
		a.release(child)
	}
	a.touch()
	return true
}

// Find returns every stored (pattern, value) pair whose pattern starts with
// prefix, in lexicographic byte order. The sequence is lazy and each range
// over it walks the trie afresh; a prefix that leaves the trie yields nothing.
func (a *Automaton[V]) Find(prefix string) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		start, ok := a.locate(prefix)
		if !ok {
			return
		}

		type frame struct {
			idx int32
			key string
		}
		stack := []frame{{idx: start, key: prefix}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			n := &a.nodes[f.idx]
			if n.hasValue && !yield(f.key, n.value) {
				return
			}

			syms := sortedSymbols(n.children)
			for i := len(syms) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					idx: n.children[syms[i]],
					key: f.key + string([]byte{syms[i]}),
				})
			}
		}
	}
}

// FindValues is Find without the keys.
func (a *Automaton[V]) FindValues(prefix string) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range a.Find(prefix) {
			if !yield(v) {
				return
			}
		}
	}
}

// sortedSymbols returns the edge symbols of children in ascending order.
func sortedSymbols(children map[byte]int32) []byte {
	if len(children) == 0 {
		return nil
	}
	syms := make([]byte, 0, len(children))
	for sym := range children {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}
