package automaton

import (
	"context"

	"github.com/corey/acmatch/internal/domain/scheduler"
)

// Build computes suffix and output links for every node and marks the
// automaton up to date. It does nothing when the automaton is already up to
// date. Each processed BFS queue entry is one scheduler unit, so passing
// scheduler.WithCooperative spreads the traversal over several slices.
//
// Every Build starts a fresh traversal from the root and never reads links a
// previous, possibly cancelled, build left behind. If ctx is cancelled the
// automaton stays not up to date and the context error is returned.
func (a *Automaton[V]) Build(ctx context.Context, opts ...scheduler.Option) error {
	if a.upToDate {
		return nil
	}
	return scheduler.Run(ctx, a.newBuildTask(), opts...)
}

// BuildAsync runs Build on its own goroutine. The automaton must not be
// used until the returned job is done.
func (a *Automaton[V]) BuildAsync(ctx context.Context, opts ...scheduler.Option) *scheduler.Job {
	if a.upToDate {
		return scheduler.Completed(nil)
	}
	return scheduler.Start(ctx, a.newBuildTask(), opts...)
}

// SetAll inserts entries in order, one scheduler unit per entry.
// Later entries win over earlier ones with the same pattern.
func (a *Automaton[V]) SetAll(ctx context.Context, entries []Entry[V], opts ...scheduler.Option) error {
	return scheduler.Run(ctx, &insertTask[V]{a: a, entries: entries}, opts...)
}

// SetAllAsync runs SetAll on its own goroutine.
func (a *Automaton[V]) SetAllAsync(ctx context.Context, entries []Entry[V], opts ...scheduler.Option) *scheduler.Job {
	return scheduler.Start(ctx, &insertTask[V]{a: a, entries: entries}, opts...)
}

type insertTask[V any] struct {
	a       *Automaton[V]
	entries []Entry[V]
	next    int
}

func (t *insertTask[V]) Step() (bool, error) {
	if t.next < len(t.entries) {
		e := t.entries[t.next]
		t.a.Set(e.Pattern, e.Value)
		t.next++
	}
	return t.next >= len(t.entries), nil
}

type queued struct {
	idx int32
	sym byte
}

type buildTask[V any] struct {
	a          *Automaton[V]
	queue      []queued
	head       int
	generation uint64
}

func (a *Automaton[V]) newBuildTask() *buildTask[V] {
	return &buildTask[V]{
		a:          a,
		queue:      []queued{{idx: rootIndex}},
		generation: a.generation,
	}
}

// Step links one dequeued node and enqueues its children in symbol order.
func (t *buildTask[V]) Step() (bool, error) {
	if t.a.generation != t.generation {
		return true, ErrModifiedDuringBuild
	}

	q := t.queue[t.head]
	t.head++
	t.a.link(q.idx, q.sym)

	children := t.a.nodes[q.idx].children
	for _, sym := range sortedSymbols(children) {
		t.queue = append(t.queue, queued{idx: children[sym], sym: sym})
	}

	if t.head < len(t.queue) {
		return false, nil
	}
	t.queue = nil
	t.a.upToDate = true
	return true, nil
}

// link sets the suffix and output links of v, reached from its parent by sym.
// The parent's suffix link and the output links of all shallower nodes must
// already be final, which BFS order guarantees.
func (a *Automaton[V]) link(v int32, sym byte) {
	n := &a.nodes[v]
	if v == rootIndex {
		n.suffix = none
		n.output = none
		return
	}

	if n.parent == rootIndex {
		n.suffix = rootIndex
	} else {
		x := a.nodes[n.parent].suffix
		for {
			if c, ok := a.nodes[x].children[sym]; ok {
				n.suffix = c
				break
			}
			if x == rootIndex {
				n.suffix = rootIndex
				break
			}
			x = a.nodes[x].suffix
		}
	}

	// The root is never an output target: the empty pattern is not reported.
	u := &a.nodes[n.suffix]
	if n.suffix != rootIndex && u.hasValue {
		n.output = n.suffix
	} else {
		n.output = u.output
	}
}
