package config

import (
	"os"
	"path/filepath"
)

// Dir is the per-project state directory.
const Dir = ".acmatch"

// Paths holds all resolved filesystem paths for the .acmatch/ directory.
type Paths struct {
	Root      string // .acmatch/
	DB        string // .acmatch/acmatch.db
	StatusDir string // .acmatch/status/
	PIDFile   string // .acmatch/watch.pid
	Config    string // acmatch.toml next to .acmatch/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, Dir)
	return &Paths{
		Root:      root,
		DB:        filepath.Join(root, "acmatch.db"),
		StatusDir: filepath.Join(root, "status"),
		PIDFile:   filepath.Join(root, "watch.pid"),
		Config:    filepath.Join(projectRoot, "acmatch.toml"),
	}
}

// StatusFile is the status JSON path of the named set.
func (p *Paths) StatusFile(name string) string {
	return filepath.Join(p.StatusDir, name+".json")
}

// EnsureDirs creates all subdirectories under .acmatch/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.StatusDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
