package automaton

import "fmt"

// Snapshot is a self-contained copy of an automaton's node graph.
//
// Nodes are numbered in BFS order from the root (index 0), children in
// ascending symbol order. Parent links are implied by Edges. Suffix and
// Output are only present when UpToDate is set; nil means "no link".
type Snapshot[V any] struct {
	Nodes    []SnapshotNode[V] `json:"nodes"`
	Size     int               `json:"size"`
	UpToDate bool              `json:"up_to_date"`
}

// SnapshotNode is one node record of a Snapshot.
type SnapshotNode[V any] struct {
	Depth  int32  `json:"depth"`
	Edges  []Edge `json:"edges,omitempty"`
	Value  *V     `json:"value,omitempty"`
	Suffix *int32 `json:"suffix,omitempty"`
	Output *int32 `json:"output,omitempty"`
}

// Edge is a child edge labelled by one symbol.
type Edge struct {
	Symbol byte  `json:"symbol"`
	Child  int32 `json:"child"`
}

// Serialize captures the automaton. Deserializing a snapshot taken after
// Build yields an automaton that matches without rebuilding.
func (a *Automaton[V]) Serialize() *Snapshot[V] {
	renum := make([]int32, len(a.nodes))
	for i := range renum {
		renum[i] = none
	}
	order := make([]int32, 0, a.NodeCount())
	order = append(order, rootIndex)
	renum[rootIndex] = 0
	for head := 0; head < len(order); head++ {
		children := a.nodes[order[head]].children
		for _, sym := range sortedSymbols(children) {
			c := children[sym]
			renum[c] = int32(len(order))
			order = append(order, c)
		}
	}

	snap := &Snapshot[V]{
		Nodes:    make([]SnapshotNode[V], len(order)),
		Size:     a.size,
		UpToDate: a.upToDate,
	}
	link := func(idx int32) *int32 {
		if idx == none {
			return nil
		}
		v := renum[idx]
		return &v
	}

	for i, old := range order {
		n := &a.nodes[old]
		sn := &snap.Nodes[i]
		sn.Depth = n.depth
		if n.hasValue {
			v := n.value
			sn.Value = &v
		}
		if len(n.children) > 0 {
			sn.Edges = make([]Edge, 0, len(n.children))
			for _, sym := range sortedSymbols(n.children) {
				sn.Edges = append(sn.Edges, Edge{Symbol: sym, Child: renum[n.children[sym]]})
			}
		}
		if a.upToDate {
			sn.Suffix = link(n.suffix)
			sn.Output = link(n.output)
		}
	}
	return snap
}

// Deserialize reconstructs an automaton from s, validating the tree shape,
// depths, pattern count and, for up-to-date snapshots, every link. All
// failures wrap ErrMalformedSnapshot.
func Deserialize[V any](s *Snapshot[V]) (*Automaton[V], error) {
	if s == nil || len(s.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no root node", ErrMalformedSnapshot)
	}
	if s.Nodes[0].Depth != 0 {
		return nil, fmt.Errorf("%w: root depth %d", ErrMalformedSnapshot, s.Nodes[0].Depth)
	}

	count := int32(len(s.Nodes))
	a := &Automaton[V]{
		nodes:    make([]node[V], count),
		size:     s.Size,
		upToDate: s.UpToDate,
	}
	for i := range a.nodes {
		a.nodes[i] = node[V]{parent: none, suffix: none, output: none}
	}

	values := 0
	reached := make([]bool, count)
	reached[0] = true
	queue := []int32{0}
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		sn := &s.Nodes[idx]
		n := &a.nodes[idx]
		n.depth = sn.Depth
		if sn.Value != nil {
			n.value = *sn.Value
			n.hasValue = true
			values++
		}
		if len(sn.Edges) == 0 {
			continue
		}
		n.children = make(map[byte]int32, len(sn.Edges))
		for _, e := range sn.Edges {
			if e.Child <= 0 || e.Child >= count {
				return nil, fmt.Errorf("%w: node %d: edge %q to out-of-range node %d", ErrMalformedSnapshot, idx, e.Symbol, e.Child)
			}
			if _, dup := n.children[e.Symbol]; dup {
				return nil, fmt.Errorf("%w: node %d: duplicate edge %q", ErrMalformedSnapshot, idx, e.Symbol)
			}
			if reached[e.Child] {
				return nil, fmt.Errorf("%w: node %d has more than one parent", ErrMalformedSnapshot, e.Child)
			}
			if got, want := s.Nodes[e.Child].Depth, sn.Depth+1; got != want {
				return nil, fmt.Errorf("%w: node %d: depth %d, want %d", ErrMalformedSnapshot, e.Child, got, want)
			}
			reached[e.Child] = true
			n.children[e.Symbol] = e.Child
			a.nodes[e.Child].parent = idx
			queue = append(queue, e.Child)
		}
	}
	if int32(len(queue)) != count {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from root", ErrMalformedSnapshot, count-int32(len(queue)), count)
	}
	if values != s.Size {
		return nil, fmt.Errorf("%w: size %d, but %d nodes carry values", ErrMalformedSnapshot, s.Size, values)
	}

	if !s.UpToDate {
		return a, nil
	}
	root := &s.Nodes[0]
	if root.Suffix != nil || root.Output != nil {
		return nil, fmt.Errorf("%w: root carries links", ErrMalformedSnapshot)
	}
	for i := int32(1); i < count; i++ {
		sn := &s.Nodes[i]
		if sn.Suffix == nil {
			return nil, fmt.Errorf("%w: node %d: missing suffix link", ErrMalformedSnapshot, i)
		}
		suf := *sn.Suffix
		if suf < 0 || suf >= count || s.Nodes[suf].Depth >= sn.Depth {
			return nil, fmt.Errorf("%w: node %d: invalid suffix link %d", ErrMalformedSnapshot, i, suf)
		}
		a.nodes[i].suffix = suf
		if sn.Output != nil {
			out := *sn.Output
			if out <= 0 || out >= count || s.Nodes[out].Depth >= sn.Depth || s.Nodes[out].Value == nil {
				return nil, fmt.Errorf("%w: node %d: invalid output link %d", ErrMalformedSnapshot, i, out)
			}
			a.nodes[i].output = out
		}
	}
	return a, nil
}
