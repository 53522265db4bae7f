// Package status generates status data for compiled pattern sets.
//
// Every compile writes a JSON status file under .acmatch/status/ so that
// `acmatch status` and external scripts can report on a set without
// opening the store.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/corey/acmatch/internal/domain/automaton"
)

// Data describes one compiled pattern set.
type Data struct {
	Name       string    `json:"name"`
	Source     string    `json:"source,omitempty"`
	Patterns   int       `json:"patterns"`
	Nodes      int       `json:"nodes"`
	MaxDepth   int       `json:"max_depth"`
	UpToDate   bool      `json:"up_to_date"`
	TopValues  []string  `json:"top_values,omitempty"`
	CompiledAt time.Time `json:"compiled_at"`
}

// Generate produces Data from a snapshot of the set.
func Generate(name, source string, snap *automaton.Snapshot[string], compiledAt time.Time) *Data {
	d := &Data{
		Name:       name,
		Source:     source,
		CompiledAt: compiledAt.UTC(),
	}
	if snap == nil {
		return d
	}
	d.Patterns = snap.Size
	d.Nodes = len(snap.Nodes)
	d.UpToDate = snap.UpToDate
	for _, n := range snap.Nodes {
		if int(n.Depth) > d.MaxDepth {
			d.MaxDepth = int(n.Depth)
		}
	}
	d.TopValues = topValues(snap, 3)
	return d
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *Data) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON reads a status file written by WriteJSON.
func ReadJSON(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &d, nil
}

// topValues returns the N values bound to the most patterns.
func topValues(snap *automaton.Snapshot[string], n int) []string {
	counts := make(map[string]int)
	for _, node := range snap.Nodes {
		if node.Value != nil {
			counts[*node.Value]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	type vc struct {
		value string
		count int
	}

	values := make([]vc, 0, len(counts))
	for v, c := range counts {
		values = append(values, vc{v, c})
	}

	sort.Slice(values, func(i, j int) bool {
		if values[i].count != values[j].count {
			return values[i].count > values[j].count
		}
		return values[i].value < values[j].value
	})

	limit := min(n, len(values))
	result := make([]string, limit)
	for i := 0; i < limit; i++ {
		result[i] = values[i].value
	}
	return result
}
