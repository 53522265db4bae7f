package ports

// ReferenceMatcher is an independent multi-pattern matcher used to
// cross-check the automaton. Implementations wrap third-party Aho-Corasick
// libraries; results are reported in the same byte-offset terms as the
// automaton so they can be compared directly.
type ReferenceMatcher interface {
	// Name identifies the engine in verify reports.
	Name() string

	// Overlapping returns every occurrence of every pattern in text,
	// including overlapping ones. Order is unspecified.
	Overlapping(text []byte) []Occurrence
}

// LeftmostMatcher is implemented by engines that can resolve
// leftmost-longest non-overlapping matches natively.
type LeftmostMatcher interface {
	ReferenceMatcher
	LeftmostLongest(text []byte) []Occurrence
}

// Occurrence is one pattern occurrence at text[Start:End].
type Occurrence struct {
	Pattern string
	Start   int
	End     int
}
