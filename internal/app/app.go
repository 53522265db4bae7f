// Package app wires together all adapters and domain logic.
// It owns the snapshot store and turns CLI requests into compile, load,
// scan and watch operations on named pattern sets.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/corey/acmatch/internal/adapters/bbolt"
	"github.com/corey/acmatch/internal/config"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/domain/patterns"
	"github.com/corey/acmatch/internal/domain/scheduler"
	"github.com/corey/acmatch/internal/domain/status"
	"github.com/corey/acmatch/internal/logging"
	"github.com/corey/acmatch/internal/ports"
)

var (
	// ErrNotFound is returned when a named set is not in the store.
	ErrNotFound = errors.New("pattern set not found")

	// ErrInvalidName is returned for set names that cannot be stored.
	ErrInvalidName = errors.New("invalid set name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Automaton is the concrete automaton type every set compiles to.
type Automaton = automaton.Automaton[string]

// App is the top-level container wiring all components together.
type App struct {
	Root     string
	Paths    *config.Paths
	Settings *config.Config
	Store    ports.SnapshotStore

	closeStore func() error
	now        func() time.Time
}

// Config holds initialization parameters for the App.
type Config struct {
	Root     string         // project root; .acmatch/ lives here
	Settings *config.Config // optional: defaults for Root when nil
}

// New creates an App with the store opened. Callers must Close it.
func New(cfg Config) (*App, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("project root required")
	}
	settings := cfg.Settings
	if settings == nil {
		var err error
		settings, err = config.Load(config.New(cfg.Root), cfg.Root, "")
		if err != nil {
			return nil, err
		}
	}

	paths := config.NewPaths(cfg.Root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}

	store, err := bbolt.NewStore(settings.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &App{
		Root:       cfg.Root,
		Paths:      paths,
		Settings:   settings,
		Store:      store,
		closeStore: store.Close,
		now:        time.Now,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// CompileResult describes one compile.
type CompileResult struct {
	Name     string
	Source   string
	Patterns int
	Nodes    int
	Build    scheduler.Stats
	Elapsed  time.Duration
}

// Compile loads the pattern file at source, builds it and stores the
// snapshot under name.
func (a *App) Compile(ctx context.Context, name, source string) (*CompileResult, error) {
	_, res, err := a.compileFile(ctx, name, source)
	return res, err
}

func (a *App) compileFile(ctx context.Context, name, source string) (*Automaton, *CompileResult, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	entries, err := patterns.Load(source)
	if err != nil {
		return nil, nil, err
	}
	return a.CompileEntries(ctx, name, source, entries)
}

// CompileEntries builds entries into a new automaton and stores it.
func (a *App) CompileEntries(ctx context.Context, name, source string, entries []patterns.Entry) (*Automaton, *CompileResult, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	began := a.now()

	au := automaton.New[string]()
	if err := au.SetAll(ctx, entries, a.Settings.BuildOptions()...); err != nil {
		return nil, nil, fmt.Errorf("insert patterns: %w", err)
	}
	var stats scheduler.Stats
	opts := append(a.Settings.BuildOptions(), scheduler.WithStats(&stats))
	if err := au.Build(ctx, opts...); err != nil {
		return nil, nil, fmt.Errorf("build automaton: %w", err)
	}

	if err := a.save(name, source, au); err != nil {
		return nil, nil, err
	}

	res := &CompileResult{
		Name:     name,
		Source:   source,
		Patterns: au.Len(),
		Nodes:    au.NodeCount(),
		Build:    stats,
		Elapsed:  a.now().Sub(began),
	}
	logging.Info().
		Str("set", name).
		Int("patterns", res.Patterns).
		Int("nodes", res.Nodes).
		Int("units", stats.Units).
		Int("slices", stats.Slices).
		Dur("elapsed", res.Elapsed).
		Msg("compiled pattern set")
	return au, res, nil
}

func (a *App) save(name, source string, au *Automaton) error {
	rec := &ports.SnapshotRecord{
		Snapshot:   au.Serialize(),
		Source:     source,
		CompiledAt: a.now().UTC(),
	}
	if err := a.Store.Save(name, rec); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	a.writeStatus(name, rec)
	return nil
}

// writeStatus refreshes the status file. Failures are logged, not returned:
// the store is the source of truth.
func (a *App) writeStatus(name string, rec *ports.SnapshotRecord) {
	data := status.Generate(name, rec.Source, rec.Snapshot, rec.CompiledAt)
	if err := status.WriteJSON(a.Paths.StatusFile(name), data); err != nil {
		logging.Warn().Err(err).Str("set", name).Msg("could not write status file")
	}
}

// Load restores the named set, rebuilding it if the stored snapshot was
// not built.
func (a *App) Load(ctx context.Context, name string) (*Automaton, *ports.SnapshotRecord, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	rec, err := a.Store.Load(name)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q: %w", name, err)
	}
	if rec == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	au, err := automaton.Deserialize(rec.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q: %w", name, err)
	}
	if !au.UpToDate() {
		logging.Debug().Str("set", name).Msg("stored snapshot not built; building")
		if err := au.Build(ctx, a.Settings.BuildOptions()...); err != nil {
			return nil, nil, fmt.Errorf("build %q: %w", name, err)
		}
	}
	return au, rec, nil
}

// Remove deletes the named set and its status file.
func (a *App) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	rec, err := a.Store.Load(name)
	if err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := a.Store.Delete(name); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	if err := os.Remove(a.Paths.StatusFile(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Str("set", name).Msg("could not remove status file")
	}
	return nil
}

// List describes every stored set.
func (a *App) List() ([]ports.SnapshotInfo, error) {
	return a.Store.List()
}

// Find returns the entries of the named set whose pattern starts with
// prefix, in lexicographic byte order.
func (a *App) Find(ctx context.Context, name, prefix string) ([]patterns.Entry, error) {
	au, _, err := a.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	var out []patterns.Entry
	for p, v := range au.Find(prefix) {
		out = append(out, patterns.Entry{Pattern: p, Value: v})
	}
	return out, nil
}

// Status returns the named set's status, regenerating it from the store
// when the status file is missing or unreadable.
func (a *App) Status(name string) (*status.Data, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if data, err := status.ReadJSON(a.Paths.StatusFile(name)); err == nil {
		return data, nil
	}
	rec, err := a.Store.Load(name)
	if err != nil {
		return nil, fmt.Errorf("status %q: %w", name, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	a.writeStatus(name, rec)
	return status.Generate(name, rec.Source, rec.Snapshot, rec.CompiledAt), nil
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
