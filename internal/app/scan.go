package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/semgroup"

	"github.com/corey/acmatch/internal/adapters/textdecode"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/logging"
)

// Match is a match of a string-valued set.
type Match = automaton.Match[string]

// FileResult is the outcome of scanning one file. Offsets index the text
// after charset decoding.
type FileResult struct {
	Path    string
	Charset string
	Matches []Match
	Err     error
}

// ScanOptions controls how text is matched.
type ScanOptions struct {
	Leftmost bool // reduce to leftmost-longest non-overlapping matches
	Decode   bool // detect the charset and decode to UTF-8 first
}

// DefaultScanOptions returns the configured scan settings.
func (a *App) DefaultScanOptions() ScanOptions {
	return ScanOptions{Leftmost: a.Settings.Scan.Leftmost, Decode: a.Settings.Scan.Decode}
}

// ScanFiles matches every file against au, at most scan.workers at a time.
// Per-file failures are reported in the result, not returned. Results are
// in the order of paths.
func (a *App) ScanFiles(ctx context.Context, au *Automaton, paths []string, opts ScanOptions) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	g := semgroup.NewGroup(ctx, int64(a.Settings.Scan.Workers))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = scanFile(au, path, opts)
			if err := results[i].Err; err != nil {
				logging.Warn().Err(err).Str("path", path).Msg("scan failed")
			} else {
				logging.Debug().
					Str("path", path).
					Str("charset", results[i].Charset).
					Int("matches", len(results[i].Matches)).
					Msg("scanned")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanFile(au *Automaton, path string, opts ScanOptions) FileResult {
	res := FileResult{Path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	res.Matches, res.Charset, res.Err = ScanBytes(au, raw, opts)
	return res
}

// ScanBytes matches raw against au, decoding it first if asked.
func ScanBytes(au *Automaton, raw []byte, opts ScanOptions) ([]Match, string, error) {
	text, charset := raw, textdecode.UTF8
	if opts.Decode {
		var err error
		text, charset, err = textdecode.Decode(raw)
		if err != nil {
			return nil, charset, err
		}
	}
	var ms []Match
	var err error
	if opts.Leftmost {
		ms, err = au.MatchLeftmostLongest(string(text))
	} else {
		ms, err = au.Match(string(text))
	}
	return ms, charset, err
}

// ScanReader matches a stream. Overlapping scans without decoding run
// incrementally through MatchReader; otherwise the stream is read whole.
func (a *App) ScanReader(ctx context.Context, au *Automaton, r io.Reader, opts ScanOptions, emit func(Match) error) error {
	if !opts.Leftmost && !opts.Decode {
		return au.MatchReader(ctx, r, emit)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	ms, _, err := ScanBytes(au, raw, opts)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if err := emit(m); err != nil {
			return err
		}
	}
	return nil
}
