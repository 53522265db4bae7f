package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/corey/acmatch/internal/domain/automaton"
)

// Export writes the named set's snapshot as indented JSON.
func (a *App) Export(ctx context.Context, name string, w io.Writer) error {
	_, rec, err := a.Load(ctx, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec.Snapshot); err != nil {
		return fmt.Errorf("export %q: %w", name, err)
	}
	return nil
}

// Import reads a JSON snapshot, validates it, builds it if needed and
// stores it under name. source is recorded as the set's origin.
func (a *App) Import(ctx context.Context, name, source string, r io.Reader) (*CompileResult, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	began := a.now()

	var snap automaton.Snapshot[string]
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("import %q: decode: %w", name, err)
	}
	au, err := automaton.Deserialize(&snap)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", name, err)
	}
	if err := au.Build(ctx, a.Settings.BuildOptions()...); err != nil {
		return nil, fmt.Errorf("import %q: build: %w", name, err)
	}
	if err := a.save(name, source, au); err != nil {
		return nil, err
	}
	return &CompileResult{
		Name:     name,
		Source:   source,
		Patterns: au.Len(),
		Nodes:    au.NodeCount(),
		Elapsed:  a.now().Sub(began),
	}, nil
}
