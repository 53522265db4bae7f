package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/logging"
)

var (
	matchText   string
	matchAsJSON bool
	matchCount  bool
)

var matchCmd = &cobra.Command{
	Use:   "match <name> [files...]",
	Short: "Report every occurrence of a stored set's patterns",
	Long: "Scans files, --text, or stdin with the named set. Each match prints as\n" +
		"file:start-end: value with byte offsets. Exits 1 when nothing matched.",
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVarP(&matchText, "text", "t", "", "Match this text instead of files or stdin")
	f.BoolVar(&matchAsJSON, "json", false, "Print one JSON object per match")
	f.BoolVarP(&matchCount, "count", "c", false, "Print match counts only")
	f.Bool("leftmost", false, "Report leftmost-longest non-overlapping matches")
	f.Bool("decode", false, "Detect the input charset and decode to UTF-8 first")
	f.Int("workers", 0, "Files scanned in parallel (default: scan.workers)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	opts := app.ScanOptions{Leftmost: settings.Scan.Leftmost, Decode: settings.Scan.Decode}
	w := matchWriter{
		out:   bufio.NewWriter(cmd.OutOrStdout()),
		p:     painter(resolveColor(cmd.OutOrStdout(), colorFlag, noColor)),
		json:  matchAsJSON,
		count: matchCount,
		label: len(args) > 2,
	}
	defer w.out.Flush()

	var total int
	if client := liveClient(root, args[0]); client != nil {
		logging.Debug().Str("set", args[0]).Msg("matching through running watcher")
		total, err = matchLive(cmd, client, w, args[1:], opts)
	} else {
		total, err = matchStored(cmd, args[0], w, args[1:], opts)
	}
	if err != nil {
		return err
	}

	if matchCount && !w.label {
		fmt.Fprintf(w.out, "%d\n", total)
	}
	if total == 0 {
		return exitError{1}
	}
	return nil
}

// liveClient returns a client for the running watcher when it serves set.
func liveClient(root, set string) *socket.Client {
	client := socket.NewClient(socket.SocketPath(root))
	if !client.Ping() {
		return nil
	}
	health, err := client.Health()
	if err != nil || health.Set != set {
		return nil
	}
	return client
}

// matchStored scans with the set loaded from the store.
func matchStored(cmd *cobra.Command, name string, w matchWriter, files []string, opts app.ScanOptions) (int, error) {
	a, err := openApp()
	if err != nil {
		return 0, err
	}
	defer a.Close()

	ctx := cmd.Context()
	au, _, err := a.Load(ctx, name)
	if err != nil {
		return 0, err
	}

	switch {
	case matchText != "":
		return w.emitAll("", func(emit func(app.Match) error) error {
			return a.ScanReader(ctx, au, strings.NewReader(matchText), opts, emit)
		})
	case len(files) == 0:
		return w.emitAll("", func(emit func(app.Match) error) error {
			return a.ScanReader(ctx, au, cmd.InOrStdin(), opts, emit)
		})
	}

	results, err := a.ScanFiles(ctx, au, files, opts)
	if err != nil {
		return 0, err
	}
	total, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "acmatch: %v\n", r.Err)
			failed++
			continue
		}
		n, err := w.emitAll(w.labelFor(r.Path), emitSlice(r.Matches))
		if err != nil {
			return total, err
		}
		total += n
	}
	if failed == len(results) {
		return 0, exitError{2}
	}
	return total, nil
}

// matchLive sends each input to the watcher serving the set.
func matchLive(cmd *cobra.Command, client *socket.Client, w matchWriter, files []string, opts app.ScanOptions) (int, error) {
	type input struct {
		label string
		text  []byte
	}
	var inputs []input
	switch {
	case matchText != "":
		inputs = append(inputs, input{text: []byte(matchText)})
	case len(files) == 0:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return 0, fmt.Errorf("read input: %w", err)
		}
		inputs = append(inputs, input{text: data})
	default:
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "acmatch: read %s: %v\n", path, err)
				continue
			}
			inputs = append(inputs, input{label: w.labelFor(path), text: data})
		}
		if len(inputs) == 0 {
			return 0, exitError{2}
		}
	}

	total := 0
	for _, in := range inputs {
		res, err := client.Match(in.text, opts.Leftmost, opts.Decode)
		if err != nil {
			return total, err
		}
		ms := make([]app.Match, len(res.Hits))
		for i, h := range res.Hits {
			ms[i] = app.Match{Value: h.Value, Start: h.Start, End: h.End, Length: h.End - h.Start}
		}
		n, err := w.emitAll(in.label, emitSlice(ms))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func emitSlice(ms []app.Match) func(emit func(app.Match) error) error {
	return func(emit func(app.Match) error) error {
		for _, m := range ms {
			if err := emit(m); err != nil {
				return err
			}
		}
		return nil
	}
}

// matchWriter prints matches in the selected format.
type matchWriter struct {
	out   *bufio.Writer
	p     painter
	json  bool
	count bool
	label bool // prefix matches with the file name
}

func (w matchWriter) labelFor(path string) string {
	if w.label {
		return path
	}
	return ""
}

// emitAll runs scan, printing each match unless counting. In count mode
// with labels, it prints the per-file count.
func (w matchWriter) emitAll(label string, scan func(emit func(app.Match) error) error) (int, error) {
	n := 0
	err := scan(func(m app.Match) error {
		n++
		if w.count {
			return nil
		}
		var line string
		if w.json {
			var err error
			if line, err = formatMatchJSON(label, m); err != nil {
				return err
			}
		} else {
			line = formatMatch(w.p, label, m)
		}
		_, err := io.WriteString(w.out, line)
		return err
	})
	if err != nil {
		return n, err
	}
	if w.count && w.label {
		fmt.Fprintf(w.out, "%s:%d\n", w.p.paint(colorCyan, label), n)
	}
	return n, nil
}
