package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	fsw "github.com/corey/acmatch/internal/adapters/fsnotify"
	"github.com/corey/acmatch/internal/logging"
)

// Live holds the current automaton of a watched set. Readers always see a
// fully built automaton; recompiles replace it whole.
type Live struct {
	mu      sync.RWMutex
	au      *Automaton
	reloads int
}

// Current returns the automaton in service.
func (l *Live) Current() *Automaton {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.au
}

// Reloads counts successful swaps since the first compile.
func (l *Live) Reloads() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reloads
}

func (l *Live) swap(au *Automaton, initial bool) {
	l.mu.Lock()
	l.au = au
	if !initial {
		l.reloads++
	}
	l.mu.Unlock()
}

// Watch compiles source into name, then recompiles it every time the file
// changes until ctx is done. A failed recompile keeps the previous
// automaton in service. onReload, if non-nil, sees every recompile
// attempt. live, if non-nil, tracks the automaton in service.
func (a *App) Watch(ctx context.Context, name, source string, live *Live, onReload func(*CompileResult, error)) error {
	abs, err := filepath.Abs(source)
	if err != nil {
		return err
	}
	au, res, err := a.compileFile(ctx, name, abs)
	if err != nil {
		return err
	}
	if live == nil {
		live = &Live{}
	}
	live.swap(au, true)
	if onReload != nil {
		onReload(res, nil)
	}

	watcher, err := fsw.NewWatcher(0)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()

	// Serializes recompiles; the debounce keeps them rare.
	var compileMu sync.Mutex
	err = watcher.Watch([]string{abs}, func(path string) {
		compileMu.Lock()
		defer compileMu.Unlock()
		if ctx.Err() != nil {
			return
		}

		logging.Debug().Str("set", name).Str("path", path).Msg("pattern file changed")
		au, res, err := a.compileFile(ctx, name, path)
		if err != nil {
			logging.Warn().Err(err).Str("set", name).Msg("recompile failed; keeping previous automaton")
		} else {
			live.swap(au, false)
		}
		if onReload != nil {
			onReload(res, err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	logging.Info().Str("set", name).Str("path", abs).Msg("watching pattern file")

	<-ctx.Done()
	return nil
}
